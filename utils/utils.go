package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AsJSON flattens v into a JSON object so that envelope fields can be merged
// next to the payload's own fields. Numbers are kept as json.Number so that
// integers survive the round trip exactly.
func AsJSON(v any) (map[string]any, error) {
	vJsonRaw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(vJsonRaw))
	dec.UseNumber()
	var vJson map[string]any
	if err := dec.Decode(&vJson); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	if vJson == nil {
		vJson = make(map[string]any)
	}
	return vJson, nil
}

// Decode unmarshals raw into a fresh T.
func Decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return *new(T), err
	}
	return v, nil
}
