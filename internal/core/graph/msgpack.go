package graph

import (
	"github.com/vmihailenco/msgpack/v5"
)

// EncodeMsgpack stores a node as its editor JSON so the kind-specific data
// bag survives binary encodings.
func (n *Node) EncodeMsgpack(enc *msgpack.Encoder) error {
	b, err := n.MarshalJSON()
	if err != nil {
		return err
	}
	return enc.EncodeBytes(b)
}

// DecodeMsgpack restores a node written by EncodeMsgpack.
func (n *Node) DecodeMsgpack(dec *msgpack.Decoder) error {
	b, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	return n.UnmarshalJSON(b)
}

// EncodeMsgpack stores an edge as its editor JSON so styling keys survive.
func (e *Edge) EncodeMsgpack(enc *msgpack.Encoder) error {
	b, err := e.MarshalJSON()
	if err != nil {
		return err
	}
	return enc.EncodeBytes(b)
}

// DecodeMsgpack restores an edge written by EncodeMsgpack.
func (e *Edge) DecodeMsgpack(dec *msgpack.Decoder) error {
	b, err := dec.DecodeBytes()
	if err != nil {
		return err
	}
	return e.UnmarshalJSON(b)
}
