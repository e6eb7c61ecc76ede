package domain

// Channel names a logical output destination.
type Channel string

const (
	ChannelWeb   Channel = "web"
	ChannelAzure Channel = "azure"
)

// Envelope type tags.
const (
	EnvelopeTypeWeb   = "web_result"
	EnvelopeTypeAzure = "azure_result"
)

// Envelope wraps tool data published to a channel. Timestamp is always null
// on the wire.
type Envelope struct {
	Type      string  `json:"type"`
	Timestamp *string `json:"timestamp"`
	RequestID *string `json:"requestId"`
	Data      any     `json:"data"`
}

// NewEnvelope builds an envelope; an empty requestID is encoded as null.
func NewEnvelope(typ, requestID string, data any) Envelope {
	env := Envelope{Type: typ, Data: data}
	if requestID != "" {
		env.RequestID = &requestID
	}
	return env
}
