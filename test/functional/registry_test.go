package functional

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/coffeeauras/coffeeupdate/internal/addon"
)

// fakeRegistry serves manifest.json and addons/*.zip like the CDN does.
type fakeRegistry struct {
	server *httptest.Server

	mu               sync.Mutex
	noManifest       bool
	manifest         addon.Manifest
	bundles          map[string][]byte // keyed by "{Name}-{Version}.zip"
	bundleRequests   int
	manifestRequests int
}

func newFakeRegistry() *fakeRegistry {
	r := &fakeRegistry{bundles: make(map[string][]byte)}
	r.server = httptest.NewServer(http.HandlerFunc(r.serve))
	return r
}

func (r *fakeRegistry) URL() string {
	return r.server.URL
}

func (r *fakeRegistry) Close() {
	r.server.Close()
}

func (r *fakeRegistry) publish(meta addon.Metadata, bundle []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifest.AddOns = append(r.manifest.AddOns, meta)
	if bundle != nil {
		r.bundles[meta.Name+"-"+meta.Version+".zip"] = bundle
	}
}

func (r *fakeRegistry) served() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bundleRequests
}

func (r *fakeRegistry) manifestsServed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.manifestRequests
}

func (r *fakeRegistry) serve(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case req.URL.Path == "/manifest.json":
		r.manifestRequests++
		if r.noManifest {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(r.manifest)

	case strings.HasPrefix(req.URL.Path, "/addons/"):
		r.bundleRequests++
		data, ok := r.bundles[strings.TrimPrefix(req.URL.Path, "/addons/")]
		if !ok {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(data)

	default:
		http.NotFound(w, req)
	}
}
