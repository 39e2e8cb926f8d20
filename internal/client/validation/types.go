package validation

import (
	"path/filepath"
	"strings"
)

// Category groups file types that a caller may allow together.
type Category string

const (
	CategoryDocuments   Category = "documents"
	CategoryImages      Category = "images"
	CategoryArchives    Category = "archives"
	CategoryEngineering Category = "engineering"
)

// AllCategories lists every known category in display order.
var AllCategories = []Category{CategoryDocuments, CategoryImages, CategoryArchives, CategoryEngineering}

// genericMIMETypes are placeholders reported when the real type is unknown.
var genericMIMETypes = map[string]struct{}{
	"application/octet-stream": {},
	"binary/octet-stream":      {},
}

type typeSet struct {
	extensions map[string]struct{}
	mimeTypes  map[string]struct{}
}

// TypeTable is the immutable table of allowed extensions and MIME types per
// category. Build it with DefaultTypeTable or NewTypeTable; it is safe for
// concurrent use.
type TypeTable struct {
	sets map[Category]typeSet
}

// TypeSpec describes one category for NewTypeTable.
type TypeSpec struct {
	Extensions []string
	MIMETypes  []string
}

// NewTypeTable copies specs into a new table. Extensions are normalized to
// lower case with a leading dot, MIME types to lower case.
func NewTypeTable(specs map[Category]TypeSpec) *TypeTable {
	t := &TypeTable{sets: make(map[Category]typeSet, len(specs))}
	for c, spec := range specs {
		s := typeSet{
			extensions: make(map[string]struct{}, len(spec.Extensions)),
			mimeTypes:  make(map[string]struct{}, len(spec.MIMETypes)),
		}
		for _, e := range spec.Extensions {
			e = strings.ToLower(e)
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			s.extensions[e] = struct{}{}
		}
		for _, m := range spec.MIMETypes {
			s.mimeTypes[strings.ToLower(m)] = struct{}{}
		}
		t.sets[c] = s
	}
	return t
}

// DefaultTypeTable returns the table for documents, images, archives and
// engineering drawings.
func DefaultTypeTable() *TypeTable {
	return NewTypeTable(map[Category]TypeSpec{
		CategoryDocuments: {
			Extensions: []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".txt", ".csv"},
			MIMETypes: []string{
				"application/pdf",
				"application/msword",
				"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				"application/vnd.ms-excel",
				"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
				"application/vnd.ms-powerpoint",
				"application/vnd.openxmlformats-officedocument.presentationml.presentation",
				"text/plain",
				"text/csv",
			},
		},
		CategoryImages: {
			Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"},
			MIMETypes:  []string{"image/jpeg", "image/png", "image/gif", "image/bmp", "image/webp"},
		},
		CategoryArchives: {
			Extensions: []string{".zip", ".rar", ".7z"},
			MIMETypes: []string{
				"application/zip",
				"application/x-zip-compressed",
				"application/vnd.rar",
				"application/x-rar-compressed",
				"application/x-7z-compressed",
			},
		},
		CategoryEngineering: {
			Extensions: []string{".dwg", ".dxf"},
			MIMETypes: []string{
				"application/acad",
				"application/x-acad",
				"application/autocad_dwg",
				"image/vnd.dwg",
				"image/x-dwg",
				"application/dxf",
				"image/vnd.dxf",
				"image/x-dxf",
			},
		},
	})
}

// AllowsExtension reports whether ext (".pdf", "PDF", ...) belongs to any of
// the given categories.
func (t *TypeTable) AllowsExtension(ext string, categories []Category) bool {
	ext = strings.ToLower(ext)
	if ext == "" {
		return false
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, c := range categories {
		if _, ok := t.sets[c].extensions[ext]; ok {
			return true
		}
	}
	return false
}

// AllowsMIMEType reports whether a normalized MIME type belongs to any of the
// given categories.
func (t *TypeTable) AllowsMIMEType(mimeType string, categories []Category) bool {
	for _, c := range categories {
		if _, ok := t.sets[c].mimeTypes[mimeType]; ok {
			return true
		}
	}
	return false
}

// Extensions returns the allowed extensions of a category in no particular
// order. The returned slice is a copy.
func (t *TypeTable) Extensions(c Category) []string {
	out := make([]string, 0, len(t.sets[c].extensions))
	for e := range t.sets[c].extensions {
		out = append(out, e)
	}
	return out
}

// Extension returns the lower-cased extension of name including the dot.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsImage classifies a file as an image by its declared MIME type, falling
// back to the extension when the MIME type is absent or generic.
func IsImage(name, mimeType string) bool {
	ext := Extension(name)
	// Drawings are often declared as image/vnd.dwg but cannot be rendered.
	if imageTypes.AllowsExtension(ext, []Category{CategoryEngineering}) {
		return false
	}
	mt := normalizeMIME(mimeType)
	if mt != "" && !isGeneric(mt) {
		return strings.HasPrefix(mt, "image/")
	}
	return imageTypes.AllowsExtension(ext, []Category{CategoryImages})
}

var imageTypes = DefaultTypeTable()

func isGeneric(mt string) bool {
	_, ok := genericMIMETypes[mt]
	return ok
}
