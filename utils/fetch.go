package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/h2non/filetype"
)

// ErrNotImage is returned when the fetched content is not a known image type.
var ErrNotImage = errors.New("the fetched content is not a valid image type")

// Fetcher retrieves the raw bytes stored behind an URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// HTTPFetcher fetches remote (http, https) and local (file) resources through a single http.Client.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher whose transport also understands the file:// scheme.
func NewHTTPFetcher() *HTTPFetcher {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	return &HTTPFetcher{
		Client: &http.Client{Transport: t},
	}
}

// Fetch retrieves the uri and returns the response body.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request for %s: %w", uri, err)
	}

	res, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch %s: %w", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("unable to fetch %s, status %v", uri, res.Status)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}
	return data, nil
}

// FileURL converts a local path into an absolute file:// URL.
// Values which are already well formed URLs are returned unchanged.
func FileURL(path string) (string, error) {
	if IsValidUrl(path) {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// IsValidUrl tests a string to determine if it is a well-structured url or not.
func IsValidUrl(uri string) bool {
	u, err := url.ParseRequestURI(uri)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "file":
		return u.Path != ""
	case "http", "https":
		return u.Host != ""
	}
	return false
}

// DetectContentType detects the MIME type of the content by inspecting its magic numbers.
func DetectContentType(data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", err
	}
	if kind == filetype.Unknown {
		return "", ErrNotImage
	}
	if !filetype.IsImage(data) {
		return kind.MIME.Value, ErrNotImage
	}
	return kind.MIME.Value, nil
}
