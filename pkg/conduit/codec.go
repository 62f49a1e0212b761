package conduit

import "encoding/json"

// Codec serializes handler results and deserializes structured request
// bodies. The pipeline consumes it through this narrow interface; JSON is
// the default.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	ContentType() string
}

// DefaultCodec is the codec used by plans that do not override it
var DefaultCodec Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) ContentType() string {
	return "application/json"
}
