package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"slices"
	"strings"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/common"
)

// Endpoint describes where and how one resource kind is uploaded.
type Endpoint struct {
	// PathFormat is joined to the base URL; %s is replaced by the escaped
	// parent id.
	PathFormat string

	// FileField is the multipart field carrying the binary content.
	FileField string
}

// DefaultEndpoints maps each resource kind to its upload endpoint.
func DefaultEndpoints() map[models.ResourceKind]Endpoint {
	return map[models.ResourceKind]Endpoint{
		models.KindProjectAttachment:     {PathFormat: "/projects/%s/attachments/", FileField: "file"},
		models.KindCertificationDocument: {PathFormat: "/certifications/%s/documents/", FileField: "document"},
		models.KindPortfolioImage:        {PathFormat: "/portfolios/%s/images/", FileField: "file"},
	}
}

// HTTPStore uploads files as multipart/form-data requests.
type HTTPStore struct {
	baseURL   string
	client    *http.Client
	endpoints map[models.ResourceKind]Endpoint
	token     string
}

// HTTPOption configures an HTTPStore.
type HTTPOption func(*HTTPStore)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPStore) { s.client = c }
}

// WithAccessToken sends "Authorization: Bearer <token>" on every request.
func WithAccessToken(token string) HTTPOption {
	return func(s *HTTPStore) { s.token = token }
}

// WithEndpoint overrides the endpoint of one kind.
func WithEndpoint(kind models.ResourceKind, e Endpoint) HTTPOption {
	return func(s *HTTPStore) { s.endpoints[kind] = e }
}

func NewHTTPStore(baseURL string, opts ...HTTPOption) *HTTPStore {
	s := &HTTPStore{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    http.DefaultClient,
		endpoints: DefaultEndpoints(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Upload streams the file in a multipart body. The request is bound to ctx,
// so cancelling ctx aborts the transfer.
func (s *HTTPStore) Upload(ctx context.Context, kind models.ResourceKind, parentID string, file models.FileHandle, md models.Metadata) (*models.RemoteAttachment, error) {
	ep, ok := s.endpoints[kind]
	if !ok {
		return nil, fmt.Errorf("no endpoint for %s", kind)
	}
	if file.Open == nil {
		return nil, fmt.Errorf("file %s has no content", file.Name)
	}

	content, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Name, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer content.Close()
		pw.CloseWithError(writeForm(mw, ep.FileField, file, content, md))
	}()

	target := s.baseURL + fmt.Sprintf(ep.PathFormat, url.PathEscape(parentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		return nil, fmt.Errorf("upload %s: %w", file.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{StatusCode: resp.StatusCode, Message: extractMessage(body, resp.StatusCode)}
	}

	var att models.RemoteAttachment
	if err := json.Unmarshal(body, &att); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &att, nil
}

func writeForm(mw *multipart.Writer, field string, file models.FileHandle, content io.Reader, md models.Metadata) error {
	for _, f := range md {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(file.Name)))
	ct := file.MIMEType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// extractMessage pulls a readable message out of an error body. It knows the
// common shapes {"detail": ...}, {"message": ...}, {"error": ...},
// {"non_field_errors": [...]} and per-field lists {"file": ["..."]}; with
// several field errors the first field in key order wins.
func extractMessage(body []byte, status int) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"detail", "message", "error", "non_field_errors"} {
			if msg := firstString(payload[key]); msg != "" {
				return msg
			}
		}
		for _, key := range slices.Sorted(maps.Keys(payload)) {
			if msg := firstString(payload[key]); msg != "" {
				return msg
			}
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "<") && len(text) < 200 {
		return text
	}
	return http.StatusText(status)
}

func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, x := range t {
			if s := firstString(x); s != "" {
				return s
			}
		}
	case map[string]any:
		if s, ok := t["message"].(string); ok {
			return s
		}
	}
	return ""
}
