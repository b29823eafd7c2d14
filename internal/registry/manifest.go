package registry

import (
	"encoding/json"

	"github.com/coffeeauras/coffeeupdate/internal/addon"
)

// parseManifest decodes manifest JSON. Entries are not checked here: a bad
// entry fails on its own during an update pass and never hides its siblings.
func parseManifest(data []byte) (*addon.Manifest, error) {
	var manifest addon.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, &RegistryError{Type: ErrTypeParsing, Message: "failed to parse manifest JSON", Err: err}
	}
	return &manifest, nil
}
