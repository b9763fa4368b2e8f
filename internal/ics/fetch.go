package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	appLog "icsexport/internal/log"
)

const defaultFetchTimeout = 15 * time.Second

// cacheEntry holds HTTP cache metadata for a single ICS URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher loads calendar sources. Local paths are read directly; http(s)
// URLs are fetched with ETag / Last-Modified revalidation against a disk
// cache, falling back to the cached body when the server is unreachable.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// NewFetcher creates a Fetcher. cacheDir holds one subdirectory per URL.
func NewFetcher(cacheDir string, timeout time.Duration) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/ics-cache"
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		cacheDir: cacheDir,
	}
}

// Open returns the raw ICS document at location. Every failure wraps
// ErrSourceUnreadable.
func (f *Fetcher) Open(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty source", ErrSourceUnreadable)
	}
	if !isURL(location) {
		body, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
		}
		return body, nil
	}

	body, err := f.fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, redactURL(location), err)
	}
	return body, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	cachePath := f.cachePathForURL(url)
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return nil, err
	}

	meta, _ := loadCacheMeta(cachePath)
	cachedBody, _ := os.ReadFile(filepath.Join(cachePath, "body.ics"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Debug("ics fetch start", "url", redactURL(url))

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 {
			appLog.Error("ics fetch network error, using cached body", err, "url", redactURL(url))
			return cachedBody, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		newMeta := cacheEntry{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := saveCache(cachePath, newMeta, body); err != nil {
			// The fresh body is still usable.
			appLog.Error("ics cache save failed", err, "url", redactURL(url))
		}
		appLog.Info("ics fetch success", "url", redactURL(url), "bytes", len(body))
		return body, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return nil, errors.New("received 304 Not Modified but no cached body available")
		}
		appLog.Info("ics fetch not modified; using cache", "url", redactURL(url))
		return cachedBody, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("ics fetch non-OK, using cached body", errors.New(resp.Status), "url", redactURL(url), "status", resp.StatusCode)
			return cachedBody, nil
		}
		return nil, errors.New(resp.Status)
	}
}

func (f *Fetcher) cachePathForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.ics"), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

func isURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// redactURL keeps only scheme and host of a URL, since calendar feed
// URLs often embed private tokens. Plain paths are returned unchanged.
func redactURL(u string) string {
	i := strings.Index(u, "://")
	if i == -1 {
		return u
	}
	rest := u[i+3:]
	if j := strings.IndexByte(rest, '/'); j != -1 {
		rest = rest[:j]
	}
	return u[:i+3] + rest + "/...(redacted)"
}
