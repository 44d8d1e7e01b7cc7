package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/brettbedarf/previewfs"
	"github.com/brettbedarf/previewfs/internal/util"
)

// maxSnapshotBytes caps a downloaded snapshot
const maxSnapshotBytes = 32 << 20

type HTTPMethod = string

const (
	HTTPMethodGet  HTTPMethod = "GET"
	HTTPMethodPost HTTPMethod = "POST"
)

// HTTPClient is the part of *http.Client the adapter uses
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPProvider creates sources for http and https snapshot URLs
type HTTPProvider struct {
	client  HTTPClient
	headers map[string]string
}

// RegisterHTTP registers an HTTP provider using client, or
// http.DefaultClient when nil
func RegisterHTTP(r *Registry, client HTTPClient) {
	if client == nil {
		client = http.DefaultClient
	}
	r.Register(HTTPAdapterType, &HTTPProvider{client: client})
}

// NewHTTPProvider returns a provider sending headers with every request
func NewHTTPProvider(client HTTPClient, headers map[string]string) *HTTPProvider {
	return &HTTPProvider{client: client, headers: headers}
}

func (p *HTTPProvider) NewSource(location string) (previewfs.ProjectSource, error) {
	raw := strings.TrimSpace(location)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot URL %q: %w", location, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("snapshot URL %q has no host", location)
	}
	if u.User != nil {
		return nil, fmt.Errorf("snapshot URL must not carry credentials, use headers")
	}
	return &HTTPSource{URL: u.String(), Headers: p.headers, client: p.client}, nil
}

// HTTPSource contains http-specific source request fields
type HTTPSource struct {
	URL     string            `json:"url"`
	Method  *HTTPMethod       `json:"method,omitempty"` // Default is GET
	Headers map[string]string `json:"headers,omitempty"`

	client HTTPClient
}

func (s *HTTPSource) Location() string {
	return s.URL
}

// Load downloads the snapshot. The format comes from the response
// Content-Type, falling back to the URL's extension and then JSON.
func (s *HTTPSource) Load(ctx context.Context) (previewfs.Snapshot, error) {
	logger := util.GetLogger("HTTPSource.Load")

	req, err := http.NewRequestWithContext(ctx, s.getMethod(), s.URL, nil)
	if err != nil {
		return previewfs.Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	client := s.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return previewfs.Snapshot{}, fmt.Errorf("failed to fetch snapshot %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return previewfs.Snapshot{}, fmt.Errorf("failed to fetch snapshot %s: %s", s.URL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes+1))
	if err != nil {
		return previewfs.Snapshot{}, fmt.Errorf("failed to read snapshot %s: %w", s.URL, err)
	}
	if len(data) > maxSnapshotBytes {
		return previewfs.Snapshot{}, fmt.Errorf("snapshot %s exceeds %d bytes", s.URL, maxSnapshotBytes)
	}

	f, ok := formatOfMediaType(resp.Header.Get("Content-Type"))
	if !ok {
		if f, err = FormatOf(urlPath(s.URL)); err != nil {
			f = FormatJSON
		}
	}
	logger.Debug().Str("url", s.URL).Str("format", string(f)).Int("bytes", len(data)).Msg("Fetched snapshot")

	snap, err := Decode(data, f)
	if err != nil {
		return snap, fmt.Errorf("failed to unmarshal snapshot %s: %w", s.URL, err)
	}
	return snap, nil
}

func (s *HTTPSource) getMethod() HTTPMethod {
	if s.Method != nil {
		return *s.Method
	}
	return HTTPMethodGet
}

func urlPath(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		return u.Path
	}
	return raw
}
