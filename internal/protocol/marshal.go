package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
)

// Pool of buffers to avoid allocation and ensure thread safety
var bufferPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

// Marshal serializes an envelope to JSON
func Marshal(env *Envelope) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(env); err != nil {
		return nil, err
	}

	// Copy since the buffer goes back to the pool
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Unmarshal decodes an envelope, rejecting envelopes without a type
func Unmarshal(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		return nil, fmt.Errorf("envelope has no type")
	}
	return &env, nil
}

// DecodeData decodes the envelope payload into v
func (e *Envelope) DecodeData(v interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%s envelope has no data", e.Type)
	}
	return json.Unmarshal(e.Data, v)
}
