package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed data/manifest.schema.json
var manifestSchema []byte

// SchemaURL is the identifier the embedded manifest schema is registered under
const SchemaURL = "https://schemas.stacklok.dev/template-registry/manifest.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(manifestSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(SchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add manifest schema resource: %w", err)
	}
	return c.Compile(SchemaURL)
})

// Validate checks that data is JSON and matches one of the recognized index
// formats. It returns ErrUnreachableOrNonJSON or ErrMalformedManifest.
func Validate(data []byte) error {
	if !json.Valid(data) {
		return ErrUnreachableOrNonJSON
	}

	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachableOrNonJSON, err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedManifest, err)
	}
	return nil
}
