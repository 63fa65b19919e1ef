package manifest

import (
	_ "embed"
	"maps"
)

const (
	// DefaultRepositoryURL is the URL of the built-in template repository
	DefaultRepositoryURL = "https://raw.githubusercontent.com/codewind-resources/codewind-templates/master/devfiles/index.json"

	// DefaultRepositoryDescription describes the built-in template repository
	DefaultRepositoryDescription = "Standard Codewind templates."
)

//go:embed data/codewind-index.json
var codewindIndex []byte

var bundled = map[string][]byte{
	DefaultRepositoryURL: codewindIndex,
}

// BundledManifests returns a copy of the manifests shipped with the binary,
// keyed by repository URL.
func BundledManifests() map[string][]byte {
	return maps.Clone(bundled)
}
