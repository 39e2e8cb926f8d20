// Package messages holds the user-facing texts of the upload pipeline in
// English and Russian.
//
// Texts are looked up by key through a Printer bound to one language:
//
//	p := messages.NewPrinter("ru")
//	p.Sprintf(messages.EmptyFile, "plan.pdf") // "Файл plan.pdf пуст."
//
// Unknown or empty locales fall back to English.
package messages

import (
	"math"
	"strconv"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	EmptyFile         = "empty_file"
	FileTooLarge      = "file_too_large"
	InvalidType       = "invalid_type"
	TotalSizeExceeded = "total_size_exceeded"
	MaxFilesExceeded  = "max_files_exceeded"
	RejectedByInput   = "rejected_by_input"
	UploadFailed      = "upload_failed"
	UploadCancelled   = "upload_cancelled"

	sizeBytes     = "size_bytes"
	sizeKilobytes = "size_kilobytes"
	sizeMegabytes = "size_megabytes"
	sizeGigabytes = "size_gigabytes"
)

var supported = []language.Tag{language.English, language.Russian}

var texts = map[string][2]string{
	EmptyFile:         {"File %s is empty.", "Файл %s пуст."},
	FileTooLarge:      {"File %s is too large. Maximum size is %s.", "Файл %s слишком большой. Максимальный размер: %s."},
	InvalidType:       {"File type of %s is not supported.", "Тип файла %s не поддерживается."},
	TotalSizeExceeded: {"Total size of selected files exceeds %s.", "Общий размер выбранных файлов превышает %s."},
	MaxFilesExceeded:  {"You can upload at most %d files.", "Можно загрузить не более %d файлов."},
	RejectedByInput:   {"File %s was rejected: %s", "Файл %s отклонён: %s"},
	UploadFailed:      {"Upload failed.", "Ошибка загрузки."},
	UploadCancelled:   {"Upload cancelled.", "Загрузка отменена."},
	sizeBytes:         {"%s B", "%s Б"},
	sizeKilobytes:     {"%s KB", "%s КБ"},
	sizeMegabytes:     {"%s MB", "%s МБ"},
	sizeGigabytes:     {"%s GB", "%s ГБ"},
}

var buildCatalog = sync.OnceValue(func() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, t := range texts {
		for i, tag := range supported {
			// SetString only fails on malformed messages; the table above is static.
			_ = b.SetString(tag, key, t[i])
		}
	}
	return b
})

var matcher = language.NewMatcher(supported)

// Printer renders message keys in one language.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// NewPrinter returns a printer for the best supported match of locale.
func NewPrinter(locale string) *Printer {
	tag := language.English
	if locale != "" {
		if t, err := language.Parse(locale); err == nil {
			_, idx, _ := matcher.Match(t)
			tag = supported[idx]
		}
	}
	return &Printer{tag: tag, p: message.NewPrinter(tag, message.Catalog(buildCatalog()))}
}

// Language returns the language the printer renders.
func (p *Printer) Language() language.Tag {
	return p.tag
}

// Sprintf formats the text stored under key.
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}

// Size renders a byte count with a binary unit, e.g. "10 MB" or "1.5 KB".
func (p *Printer) Size(n int64) string {
	const unit = 1024
	switch {
	case n < unit:
		return p.Sprintf(sizeBytes, strconv.FormatInt(n, 10))
	case n < unit*unit:
		return p.Sprintf(sizeKilobytes, trimFloat(float64(n)/unit))
	case n < unit*unit*unit:
		return p.Sprintf(sizeMegabytes, trimFloat(float64(n)/(unit*unit)))
	default:
		return p.Sprintf(sizeGigabytes, trimFloat(float64(n)/(unit*unit*unit)))
	}
}

// trimFloat keeps at most one decimal and drops a trailing ".0".
func trimFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
