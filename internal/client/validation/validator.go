// Package validation decides whether a single file or a whole selection may
// be uploaded.
//
// Checks are pure: they only look at the file name, declared MIME type and
// size, never at the content. A batch is accepted or rejected as a whole.
package validation

import (
	"mime"
	"strings"

	"github.com/dmitrijs2005/gophupload/internal/client/messages"
	"github.com/dmitrijs2005/gophupload/internal/client/models"
)

// Default limits.
const (
	MaxFileSize     int64 = 10 << 20
	MaxImageSize    int64 = 5 << 20
	MaxTotalSize    int64 = 50 << 20
	DefaultMaxFiles       = 10
)

// FileOptions limits a single file.
type FileOptions struct {
	MaxSizeBytes int64
	Categories   []Category
}

// BatchOptions limits a selection of files.
type BatchOptions struct {
	MaxFiles          int
	MaxTotalSizeBytes int64
	FileOptions
}

// DefaultFileOptions allows every category up to MaxFileSize.
func DefaultFileOptions() FileOptions {
	return FileOptions{MaxSizeBytes: MaxFileSize, Categories: AllCategories}
}

// DefaultBatchOptions applies the default per-batch limits.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		MaxFiles:          DefaultMaxFiles,
		MaxTotalSizeBytes: MaxTotalSize,
		FileOptions:       DefaultFileOptions(),
	}
}

// AvatarOptions is the preset for profile pictures: images only, 5 MB.
func AvatarOptions() FileOptions {
	return FileOptions{MaxSizeBytes: MaxImageSize, Categories: []Category{CategoryImages}}
}

// FileCheck validates one file. Validator.FileCheck may be replaced to
// observe or decorate the per-file checks of a batch.
type FileCheck func(f models.FileHandle, opts FileOptions) Result

// Validator applies a TypeTable and renders messages with a Printer.
type Validator struct {
	types   *TypeTable
	printer *messages.Printer

	// FileCheck is used by ValidateBatch for per-file checks. Defaults to
	// ValidateFile.
	FileCheck FileCheck
}

// NewValidator returns a validator over types. A nil table means
// DefaultTypeTable, a nil printer means English.
func NewValidator(types *TypeTable, printer *messages.Printer) *Validator {
	if types == nil {
		types = DefaultTypeTable()
	}
	if printer == nil {
		printer = messages.NewPrinter("")
	}
	v := &Validator{types: types, printer: printer}
	v.FileCheck = v.ValidateFile
	return v
}

// ValidateFile checks one file. The first failing check wins:
//
//  1. empty content
//  2. larger than opts.MaxSizeBytes
//  3. extension outside the allowed categories
//  4. declared MIME type present, not generic and not allowed
//
// The extension is authoritative when the MIME type is missing or generic.
func (v *Validator) ValidateFile(f models.FileHandle, opts FileOptions) Result {
	if f.Size == 0 {
		return v.fail(CodeEmptyFile, v.printer.Sprintf(messages.EmptyFile, f.Name))
	}

	if f.Size > opts.MaxSizeBytes {
		return v.fail(CodeFileTooLarge, v.printer.Sprintf(messages.FileTooLarge, f.Name, v.printer.Size(opts.MaxSizeBytes)))
	}

	if !v.types.AllowsExtension(Extension(f.Name), opts.Categories) {
		return v.fail(CodeInvalidType, v.printer.Sprintf(messages.InvalidType, f.Name))
	}

	mt := normalizeMIME(f.MIMEType)
	if mt != "" && !isGeneric(mt) && !v.types.AllowsMIMEType(mt, opts.Categories) {
		return v.fail(CodeInvalidType, v.printer.Sprintf(messages.InvalidType, f.Name))
	}

	return Valid()
}

// ValidateBatch checks a selection. The count and total size limits are
// evaluated before any per-file check; if either fails no file is looked at.
// Otherwise the first failing file decides the result for the whole batch.
func (v *Validator) ValidateBatch(files []models.FileHandle, opts BatchOptions) Result {
	if len(files) > opts.MaxFiles {
		return v.fail(CodeMaxFilesExceeded, v.printer.Sprintf(messages.MaxFilesExceeded, opts.MaxFiles))
	}

	var total int64
	for _, f := range files {
		total += f.Size
	}
	if total > opts.MaxTotalSizeBytes {
		return v.fail(CodeTotalSizeExceeded, v.printer.Sprintf(messages.TotalSizeExceeded, v.printer.Size(opts.MaxTotalSizeBytes)))
	}

	for _, f := range files {
		if r := v.FileCheck(f, opts.FileOptions); !r.Valid {
			return r
		}
	}

	return Valid()
}

// Printer returns the printer used for messages.
func (v *Validator) Printer() *messages.Printer {
	return v.printer
}

func (v *Validator) fail(code ErrorCode, msg string) Result {
	return Result{Valid: false, Code: code, Message: msg}
}

// normalizeMIME lower-cases a MIME type and strips parameters such as
// "; charset=utf-8".
func normalizeMIME(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}
