package server

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
	"github.com/fxamacker/cbor/v2"
)

// The service speaks plain Go structs, so it registers its own codecs in
// place of connect's protobuf ones. Clients pick one with connect.WithCodec;
// the content type is application/<name>.

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (jsonCodec) Unmarshal(data []byte, msg any) error { return json.Unmarshal(data, msg) }

// cborCodec uses canonical encoding so equal messages encode to equal bytes.
type cborCodec struct {
	enc cbor.EncMode
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("server: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

func (cborCodec) Name() string { return "cbor" }

func (c cborCodec) Marshal(msg any) ([]byte, error) { return c.enc.Marshal(msg) }

func (cborCodec) Unmarshal(data []byte, msg any) error { return cbor.Unmarshal(data, msg) }

// JSONCodec returns the codec for application/json.
func JSONCodec() connect.Codec { return jsonCodec{} }

// CBORCodec returns the codec for application/cbor.
func CBORCodec() connect.Codec { return cborCodec{enc: cborEncMode} }
