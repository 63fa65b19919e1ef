package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Parse validates data and decodes it into a Manifest.
// Styled index keys keep their document order.
func Parse(data []byte) (*Manifest, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var descriptors []Descriptor
		if err := json.Unmarshal(trimmed, &descriptors); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedManifest, err)
		}
		return &Manifest{Groups: []Group{{Descriptors: descriptors}}}, nil
	}

	groups, err := decodeStyledIndex(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedManifest, err)
	}
	return &Manifest{Groups: groups}, nil
}

// decodeStyledIndex walks the top-level object token by token because a Go
// map would lose the key order.
func decodeStyledIndex(data []byte) ([]Group, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var groups []Group
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		style, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var descriptors []Descriptor
		if err := dec.Decode(&descriptors); err != nil {
			return nil, fmt.Errorf("style %q: %w", style, err)
		}
		groups = append(groups, Group{Style: style, Descriptors: descriptors})
	}

	return groups, nil
}
