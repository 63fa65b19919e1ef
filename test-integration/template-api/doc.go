// Package integration provides integration tests for the template registry server.
// These tests run the complete server and exercise the repository list, the
// template aggregation and every provider type (File, API, Git).
package integration
