// pattern: Imperative Shell

package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"meowdash/internal/catalog"
)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; meowdash)"
	defaultMaxBytes  = 4 << 20
)

// LoadError describes a fetch that produced no usable document.
type LoadError struct {
	Address string
	Status  int
	Header  http.Header
	Err     error
}

func (e *LoadError) Error() string {
	switch {
	case e.Status != 0 && e.Err == nil:
		return fmt.Sprintf("load %s: HTTP %d", e.Address, e.Status)
	case e.Status != 0:
		return fmt.Sprintf("load %s: HTTP %d: %v", e.Address, e.Status, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Address, e.Err)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

// Fetcher loads addresses for the terminal host. External addresses are
// fetched over HTTP; everything else is read from the asset directory, then
// from the built-in assets.
type Fetcher struct {
	client    *http.Client
	assetDir  string
	assets    fs.FS
	userAgent string
	maxBytes  int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithAssetDir resolves local addresses against dir before the built-in assets.
func WithAssetDir(dir string) FetcherOption {
	return func(f *Fetcher) { f.assetDir = dir }
}

// WithAssets sets the built-in asset filesystem.
func WithAssets(fsys fs.FS) FetcherOption {
	return func(f *Fetcher) { f.assets = fsys }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) { f.userAgent = ua }
}

func NewFetcher(timeout time.Duration, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		maxBytes:  defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch loads address and converts it to a Document. Failures are returned
// as *LoadError.
func (f *Fetcher) Fetch(ctx context.Context, address string) (*Document, error) {
	address = strings.TrimSpace(address)
	if catalog.IsExternal(address) {
		return f.fetchHTTP(ctx, address)
	}
	return f.fetchLocal(address)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, address string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, &LoadError{Address: address, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &LoadError{Address: address, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &LoadError{Address: address, Status: resp.StatusCode, Header: resp.Header}
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBytes), contentType)
	if err != nil {
		return nil, &LoadError{Address: address, Status: resp.StatusCode, Header: resp.Header, Err: err}
	}
	doc, err := parse(body, contentType, address)
	if err != nil {
		return nil, &LoadError{Address: address, Status: resp.StatusCode, Header: resp.Header, Err: err}
	}
	return doc, nil
}

func (f *Fetcher) fetchLocal(address string) (*Document, error) {
	name := address
	if u, err := url.Parse(address); err == nil && strings.EqualFold(u.Scheme, "file") {
		name = u.Path
	}
	if name == "" {
		return nil, &LoadError{Address: address, Err: fs.ErrNotExist}
	}

	r, err := f.openLocal(name)
	if err != nil {
		return nil, &LoadError{Address: address, Err: err}
	}
	defer r.Close()

	doc, err := parse(io.LimitReader(r, f.maxBytes), localContentType(name), address)
	if err != nil {
		return nil, &LoadError{Address: address, Err: err}
	}
	return doc, nil
}

func (f *Fetcher) openLocal(name string) (io.ReadCloser, error) {
	if filepath.IsAbs(name) {
		return os.Open(name)
	}
	if f.assetDir != "" {
		file, err := os.Open(filepath.Join(f.assetDir, filepath.FromSlash(name)))
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if f.assets != nil {
		clean := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(name)), "/")
		return f.assets.Open(clean)
	}
	return nil, fmt.Errorf("open %s: %w", name, fs.ErrNotExist)
}

func localContentType(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".txt", ".md", ".log":
		return "text/plain"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "text/html"
	}
}

func parse(r io.Reader, contentType, address string) (*Document, error) {
	var (
		doc *Document
		err error
	)
	media, _, _ := mime.ParseMediaType(contentType)
	if media == "text/plain" {
		doc, err = ParseText(r)
	} else {
		doc, err = ParseHTML(r)
	}
	if doc != nil {
		doc.Address = address
	}
	return doc, err
}
