package domain

import (
	"encoding/json"
	"errors"

	jsoniter "github.com/json-iterator/go"
)

var ErrMalformedPayload = errors.New("malformed event payload")

// decodePayload unmarshals raw event-log JSON into a typed payload.
func decodePayload[T any](payload []byte) (T, error) {
	var p T

	if err := jsoniter.ConfigFastest.Unmarshal(payload, &p); err != nil {
		return p, errors.Join(ErrMalformedPayload, err)
	}

	return p, nil
}

// marshalJSON uses the stdlib encoder: payloads are written once and read
// many times, and the stdlib encoder honors omitzero.
func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

// EncodePayload renders a typed payload as event-log JSON.
func EncodePayload(p any) ([]byte, error) {
	return marshalJSON(p)
}
