package manifest

import "errors"

var (
	// ErrInvalidURL is returned when a repository URL is not an absolute http(s) URL
	ErrInvalidURL = errors.New("invalid URL")
	// ErrUnreachableOrNonJSON is returned when a manifest cannot be downloaded or is not JSON
	ErrUnreachableOrNonJSON = errors.New("manifest unreachable or not JSON")
	// ErrMalformedManifest is returned when a JSON document does not match the manifest shape
	ErrMalformedManifest = errors.New("malformed manifest")
)
