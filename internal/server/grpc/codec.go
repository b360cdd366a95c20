package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content-subtype of the JSON codec.
const CodecName = "json"

// jsonCodec carries plain Go structs as JSON on the wire. The server forces
// it for every call; clients pass grpc.ForceCodec(Codec()).
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return CodecName }

// Codec returns the codec shared by the server and its clients.
func Codec() encoding.Codec { return jsonCodec{} }
