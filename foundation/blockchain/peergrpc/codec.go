// Package peergrpc provides a gRPC transport between nodes, using cramberry
// for the binary serialization of the peer messages.
//
// No protobuf code generation is required. The messages are plain structs
// with cramberry tags and the service is described by hand.
package peergrpc

import (
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"google.golang.org/grpc/encoding"
)

const codecName = "cramberry"

// Codec implements grpc/encoding.Codec using cramberry.
type Codec struct{}

// Marshal implements the encoding.Codec interface.
func (Codec) Marshal(v any) ([]byte, error) {
	data, err := cramberry.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cramberry marshal: %w", err)
	}
	return data, nil
}

// Unmarshal implements the encoding.Codec interface.
func (Codec) Unmarshal(data []byte, v any) error {
	if err := cramberry.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cramberry unmarshal: %w", err)
	}
	return nil
}

// Name implements the encoding.Codec interface.
func (Codec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(Codec{})
}
