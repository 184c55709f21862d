package websocket

import (
	xws "golang.org/x/net/websocket"
)

// frame is a received message together with its payload type.
type frame struct {
	payloadType byte
	data        []byte
}

// frameCodec sends strings as text frames and byte slices as binary
// frames, and records the payload type of received frames.
var frameCodec = xws.Codec{Marshal: marshalFrame, Unmarshal: unmarshalFrame}

func marshalFrame(v any) ([]byte, byte, error) {
	switch x := v.(type) {
	case string:
		return []byte(x), xws.TextFrame, nil
	case []byte:
		return x, xws.BinaryFrame, nil
	}
	return nil, xws.UnknownFrame, xws.ErrNotSupported
}

func unmarshalFrame(data []byte, payloadType byte, v any) error {
	f, ok := v.(*frame)
	if !ok {
		return xws.ErrNotSupported
	}
	f.payloadType = payloadType
	f.data = data
	return nil
}
