package templates

import "errors"

var (
	// ErrMissingURL is returned for a repository without a URL
	ErrMissingURL = errors.New("repository must have a URL")
	// ErrMissingRepositoryList is returned when no repository list was given
	ErrMissingRepositoryList = errors.New("repository list is required")
)
