package repository

import "errors"

var (
	// ErrDuplicateRepository is returned when a URL is already in the list
	ErrDuplicateRepository = errors.New("already a template repository")
	// ErrRepositoryNotFound is returned when no repository has the given URL
	ErrRepositoryNotFound = errors.New("no repository found")
)
