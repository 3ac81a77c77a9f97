package kvstore

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SchemaVersion is the envelope version written by Encode.
const SchemaVersion = 1

type envelope struct {
	Schema  string          `json:"schema"`
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Encode wraps v in a versioned envelope tagged with schema.
func Encode(schema string, v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", schema, err)
	}
	return json.Marshal(envelope{Schema: schema, Version: SchemaVersion, Data: data})
}

// Decode unwraps raw into v and returns the schema version it was stored
// with. A bare JSON array is accepted as version 0, the layout the browser
// wrote before envelopes existed.
func Decode(raw []byte, schema string, v interface{}) (int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, fmt.Errorf("%w: empty %s value", ErrCorrupt, schema)
	}

	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, v); err != nil {
			return 0, fmt.Errorf("%w: legacy %s: %v", ErrCorrupt, schema, err)
		}
		return 0, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return 0, fmt.Errorf("%w: %s envelope: %v", ErrCorrupt, schema, err)
	}
	if env.Schema != schema {
		return 0, fmt.Errorf("%w: expected schema %q, found %q", ErrCorrupt, schema, env.Schema)
	}
	if env.Version < 1 || env.Version > SchemaVersion {
		return 0, fmt.Errorf("%w: unsupported %s version %d", ErrCorrupt, schema, env.Version)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return 0, fmt.Errorf("%w: %s data: %v", ErrCorrupt, schema, err)
	}
	return env.Version, nil
}
