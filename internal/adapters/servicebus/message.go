package servicebus

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"github.com/manthysbr/auleServe/internal/core/domain"
)

const contentTypeJSON = "application/json"

// newMessage encodes env as a JSON message body. Non-ASCII and tag
// characters are written as-is. The message id is the envelope request id.
func newMessage(env domain.Envelope) (*azservicebus.Message, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}

	msg := &azservicebus.Message{
		Body:        bytes.TrimRight(buf.Bytes(), "\n"),
		ContentType: to.Ptr(contentTypeJSON),
	}
	if env.RequestID != nil && *env.RequestID != "" {
		msg.MessageID = to.Ptr(*env.RequestID)
	}
	return msg, nil
}

// decodeBody parses a received message body as JSON.
func decodeBody(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}
