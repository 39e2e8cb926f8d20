// Package preview hands out revocable in-memory URLs for image thumbnails.
//
// A URL has the form "blob:<uuid>" and stays valid until Revoke is called.
// The owner of a URL must revoke it exactly once; revoking twice or using a
// revoked URL is a caller bug and is not reported.
package preview

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/client/validation"
	"github.com/google/uuid"
)

// Scheme prefixes every preview URL.
const Scheme = "blob:"

// DefaultMaxBufferedBytes is the largest image kept in memory. Bigger images
// are streamed from the file handle when served.
const DefaultMaxBufferedBytes int64 = 5 << 20

type blob struct {
	name     string
	mimeType string
	data     []byte
	open     func() (io.ReadCloser, error)
}

// Stats counts URLs handed out and released.
type Stats struct {
	Created int
	Revoked int
}

// Live is the number of URLs not yet revoked.
func (s Stats) Live() int {
	return s.Created - s.Revoked
}

// Manager creates and revokes preview URLs. It is safe for concurrent use.
type Manager struct {
	mu    sync.Mutex
	blobs map[string]*blob
	stats Stats

	// MaxBufferedBytes bounds the in-memory copy of one image.
	MaxBufferedBytes int64
}

func NewManager() *Manager {
	return &Manager{blobs: make(map[string]*blob), MaxBufferedBytes: DefaultMaxBufferedBytes}
}

// Create returns a preview URL for images and "" for everything else.
func (m *Manager) Create(f models.FileHandle) (string, error) {
	if !validation.IsImage(f.Name, f.MIMEType) {
		return "", nil
	}

	b := &blob{name: f.Name, mimeType: f.MIMEType, open: f.Open}
	if f.Open != nil && f.Size <= m.MaxBufferedBytes {
		data, err := readAll(f)
		if err != nil {
			return "", fmt.Errorf("read preview %s: %w", f.Name, err)
		}
		b.data = data
	}

	url := Scheme + uuid.NewString()

	m.mu.Lock()
	m.blobs[url] = b
	m.stats.Created++
	m.mu.Unlock()

	return url, nil
}

// Revoke releases the memory behind url.
func (m *Manager) Revoke(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, url)
	m.stats.Revoked++
}

// Stats returns a snapshot of the counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// ServeHTTP serves a live preview at "/<url>", e.g. "/blob:0f3c...".
// Revoked or unknown URLs answer 404.
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimPrefix(r.URL.Path, "/")

	m.mu.Lock()
	b, ok := m.blobs[url]
	m.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if b.mimeType != "" {
		w.Header().Set("Content-Type", b.mimeType)
	}
	w.Header().Set("Cache-Control", "no-store")

	if b.data != nil {
		_, _ = w.Write(b.data)
		return
	}

	if b.open == nil {
		http.NotFound(w, r)
		return
	}

	rc, err := b.open()
	if err != nil {
		http.Error(w, "preview unavailable", http.StatusInternalServerError)
		return
	}
	defer rc.Close()
	_, _ = io.Copy(w, rc)
}

func readAll(f models.FileHandle) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
