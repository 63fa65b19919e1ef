// Package manifest fetches, validates and normalizes template repository
// manifests.
//
// A manifest is the JSON document served at a template repository URL. Two
// index formats are recognized:
//
//   - styled index: an object mapping a project style name to an array of
//     template descriptors, e.g. {"Appsody": [{...}, {...}]}
//   - flat index: an array of template descriptors, each carrying its own
//     optional projectStyle (DefaultProjectStyle when absent)
//
// Both formats are validated against one embedded JSON Schema before they are
// parsed. Manifests for the built-in default repositories are bundled into the
// binary and served without network access.
package manifest
