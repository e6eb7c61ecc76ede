package domain

// ToolKind identifies a tool invocation tag embedded in model output.
type ToolKind string

const (
	ToolKindUnknown ToolKind = ""
	ToolKindWeb     ToolKind = "web"
	ToolKindCode    ToolKind = "code"
	ToolKindAzure   ToolKind = "azure"
)

// ToolKinds lists the recognized kinds in scan order. Scanner output is
// grouped by kind following this order.
var ToolKinds = []ToolKind{ToolKindWeb, ToolKindCode, ToolKindAzure}

// ParseToolKind maps a tag name to its kind. Tag names are case-sensitive.
func ParseToolKind(name string) (ToolKind, bool) {
	switch ToolKind(name) {
	case ToolKindWeb, ToolKindCode, ToolKindAzure:
		return ToolKind(name), true
	default:
		return ToolKindUnknown, false
	}
}

// RequiredFields returns the payload keys a kind must carry to be valid.
func (k ToolKind) RequiredFields() []string {
	switch k {
	case ToolKindWeb:
		return []string{"q", "k"}
	case ToolKindCode:
		return []string{"cmd", "cwd", "timeout_s"}
	case ToolKindAzure:
		return []string{"args"}
	default:
		return nil
	}
}

// MissingFields reports which required keys are absent from payload. A
// non-object payload is missing all of them.
func MissingFields(kind ToolKind, payload any) []string {
	obj, _ := payload.(map[string]any)
	var missing []string
	for _, field := range kind.RequiredFields() {
		if _, ok := obj[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

// ToolCall is one scanned tool invocation. Payload holds the decoded JSON
// value, or a {"rawContent": ...} wrapper when the text was not valid JSON.
type ToolCall struct {
	Kind       ToolKind `json:"kind"`
	RawContent string   `json:"rawContent"`
	Payload    any      `json:"payload"`
	IsValid    bool     `json:"isValid"`
}
