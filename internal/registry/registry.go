package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/coffeeauras/coffeeupdate/internal/addon"
	"github.com/coffeeauras/coffeeupdate/internal/buildinfo"
	"github.com/coffeeauras/coffeeupdate/internal/config"
	"github.com/coffeeauras/coffeeupdate/internal/httputil"
	"github.com/coffeeauras/coffeeupdate/internal/log"
)

const (
	// manifestPath is the manifest location relative to the base URL.
	manifestPath = "manifest.json"

	// maxManifestSize bounds how much of a manifest response is read.
	maxManifestSize = 1 << 20
)

// ManifestSource fetches the published manifest.
type ManifestSource interface {
	FetchManifest(ctx context.Context) (*addon.Manifest, error)
}

// BundleSource fetches the archive for one add-on version.
type BundleSource interface {
	FetchBundle(ctx context.Context, meta addon.Metadata) (*addon.Bundle, error)
}

// Registry fetches the manifest and add-on bundles from the CDN. It performs
// no retries; every non-200 response is an error.
type Registry struct {
	BaseURL string
	client  *http.Client
	logger  log.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithHTTPClient replaces the default hardened client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) {
		r.client = c
	}
}

// WithLogger sets the registry logger.
func WithLogger(l log.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// New creates a Registry for baseURL. An empty baseURL uses
// config.GetRegistryURL.
func New(baseURL string, opts ...Option) *Registry {
	if baseURL == "" {
		baseURL = config.GetRegistryURL()
	}

	r := &Registry{BaseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = httputil.NewSecureClient(httputil.ClientOptions{
			Timeout:   config.GetAPITimeout(),
			UserAgent: buildinfo.UserAgent(),
		})
	}
	r.logger = log.OrDefault(r.logger)
	return r
}

// ManifestURL returns the URL of manifest.json.
func (r *Registry) ManifestURL() string {
	return r.BaseURL + "/" + manifestPath
}

// BundleURL returns the URL of the archive for meta:
// {base}/addons/{Name}-{Version}.zip
func (r *Registry) BundleURL(meta addon.Metadata) string {
	return fmt.Sprintf("%s/addons/%s", r.BaseURL, url.PathEscape(meta.Name+"-"+meta.Version+".zip"))
}

// FetchManifest downloads and decodes the manifest.
func (r *Registry) FetchManifest(ctx context.Context) (*addon.Manifest, error) {
	resp, err := r.get(ctx, r.ManifestURL(), "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize+1))
	if err != nil {
		return nil, WrapNetworkError(err, "", "failed to read manifest")
	}
	if len(data) > maxManifestSize {
		return nil, &RegistryError{
			Type:    ErrTypeValidation,
			Message: fmt.Sprintf("manifest exceeds %d bytes", maxManifestSize),
		}
	}

	manifest, err := parseManifest(data)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("fetched manifest", "url", r.ManifestURL(), "addons", len(manifest.AddOns))
	return manifest, nil
}

// FetchBundle starts the download of the archive for meta. The returned
// bundle streams the response body; the caller must close Data.
func (r *Registry) FetchBundle(ctx context.Context, meta addon.Metadata) (*addon.Bundle, error) {
	bundleURL := r.BundleURL(meta)
	resp, err := r.get(ctx, bundleURL, meta.Name)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("downloading bundle", "addon", meta.Name, "version", meta.Version, "url", bundleURL, "size", resp.ContentLength)
	return &addon.Bundle{
		Metadata: meta,
		Data:     resp.Body,
		Size:     resp.ContentLength,
	}, nil
}

// get issues a GET and returns the response when the status is 200. On any
// other outcome the body is closed and a *RegistryError is returned.
func (r *Registry) get(ctx context.Context, target, addOnName string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, WrapNetworkError(err, addOnName, fmt.Sprintf("failed to fetch %s", target))
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		r.logger.Debug("registry request failed", "url", target, "status", resp.StatusCode)
		return nil, statusError(resp.StatusCode, addOnName, target)
	}

	return resp, nil
}
