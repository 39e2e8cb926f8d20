package models

import (
	"fmt"
	"time"
)

// ResourceKind names the domain resource a file is attached to.
type ResourceKind string

const (
	KindProjectAttachment     ResourceKind = "project_attachment"
	KindCertificationDocument ResourceKind = "certification_document"
	KindPortfolioImage        ResourceKind = "portfolio_image"
)

// ParseResourceKind converts a user supplied string into a ResourceKind.
func ParseResourceKind(s string) (ResourceKind, error) {
	switch k := ResourceKind(s); k {
	case KindProjectAttachment, KindCertificationDocument, KindPortfolioImage:
		return k, nil
	default:
		return "", fmt.Errorf("unknown resource kind %q", s)
	}
}

// MetadataField is a single string form field sent along with the file.
type MetadataField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Metadata keeps optional upload fields in insertion order.
type Metadata []MetadataField

// Set adds or replaces a field.
func (m *Metadata) Set(name, value string) {
	for i := range *m {
		if (*m)[i].Name == name {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, MetadataField{Name: name, Value: value})
}

// SetDate stores t as a calendar date (YYYY-MM-DD). Zero times are skipped.
func (m *Metadata) SetDate(name string, t time.Time) {
	if t.IsZero() {
		return
	}
	m.Set(name, t.Format(time.DateOnly))
}

// Get returns the value of a field and whether it is present.
func (m Metadata) Get(name string) (string, bool) {
	for _, f := range m {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}
