package domain

// ChatMessage is one message of a chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Usage is token accounting reported by the backend. Nil fields were not
// reported.
type Usage struct {
	PromptTokens     *int `json:"promptTokens"`
	CompletionTokens *int `json:"completionTokens"`
	TotalTokens      *int `json:"totalTokens"`
}

// ChatCompletion is the first choice of a completion plus its metadata.
type ChatCompletion struct {
	Model        string
	Role         string
	Content      string
	FinishReason *string
	Usage        Usage
}

// ServeResult is the printed outcome of one inference run.
type ServeResult struct {
	Model        string     `json:"model"`
	Role         string     `json:"role"`
	Content      string     `json:"content"`
	Reasoning    *string    `json:"reasoning"`
	Solution     *string    `json:"solution"`
	ToolCalls    []ToolCall `json:"toolCalls"`
	HasTools     bool       `json:"hasTools"`
	ValidTools   []ToolCall `json:"validTools"`
	InvalidTools []ToolCall `json:"invalidTools"`
	Usage        Usage      `json:"usage"`
	FinishReason *string    `json:"finishReason"`
	RequestID    string     `json:"requestId"`

	Dispatch *DispatchReport `json:"dispatch,omitempty"`
}

// NewServeResult merges completion metadata with the parsed record.
// Content is the cleaned content, not the raw completion text.
func NewServeResult(requestID string, completion ChatCompletion, record ResponseRecord) ServeResult {
	rec := record.toJSON()
	return ServeResult{
		Model:        completion.Model,
		Role:         completion.Role,
		Content:      rec.Content,
		Reasoning:    rec.Reasoning,
		Solution:     rec.Solution,
		ToolCalls:    rec.ToolCalls,
		HasTools:     rec.HasTools,
		ValidTools:   rec.ValidTools,
		InvalidTools: rec.InvalidTools,
		Usage:        completion.Usage,
		FinishReason: completion.FinishReason,
		RequestID:    requestID,
	}
}

// ReceivedMessage is one message drained from a channel queue.
type ReceivedMessage struct {
	Data          any    `json:"data"`
	MessageID     string `json:"messageId"`
	DeliveryCount uint32 `json:"deliveryCount"`
}
