package domain

// ToolArgs is the validated, kind-specific view of a tool payload.
// Implementations: WebArgs, CodeArgs, AzureArgs.
type ToolArgs interface {
	Kind() ToolKind
	// ChannelData returns exactly the fields forwarded to the channel.
	ChannelData() map[string]any
}

// WebArgs carries a web search request. Values are kept as decoded JSON so
// that any value type is accepted once the key is present.
type WebArgs struct {
	Q any
	K any
}

func (WebArgs) Kind() ToolKind { return ToolKindWeb }

func (a WebArgs) ChannelData() map[string]any {
	return map[string]any{"q": a.Q, "k": a.K}
}

// CodeArgs carries a code execution request.
type CodeArgs struct {
	Cmd      any
	Cwd      any
	TimeoutS any
}

func (CodeArgs) Kind() ToolKind { return ToolKindCode }

func (a CodeArgs) ChannelData() map[string]any {
	return map[string]any{"cmd": a.Cmd, "cwd": a.Cwd, "timeout_s": a.TimeoutS}
}

// AzureArgs carries a CLI argument list for the azure channel.
type AzureArgs struct {
	Args []any
}

func (AzureArgs) Kind() ToolKind { return ToolKindAzure }

func (a AzureArgs) ChannelData() map[string]any {
	return map[string]any{"args": a.Args}
}

// ParseToolArgs narrows a decoded payload into the args variant for kind.
// It reports false for non-object payloads, missing required keys, a
// non-array "args", and unknown kinds. The payload is never modified.
func ParseToolArgs(kind ToolKind, payload any) (ToolArgs, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}

	switch kind {
	case ToolKindWeb:
		q, okQ := obj["q"]
		k, okK := obj["k"]
		if !okQ || !okK {
			return nil, false
		}
		return WebArgs{Q: q, K: k}, true
	case ToolKindCode:
		cmd, okCmd := obj["cmd"]
		cwd, okCwd := obj["cwd"]
		timeout, okTimeout := obj["timeout_s"]
		if !okCmd || !okCwd || !okTimeout {
			return nil, false
		}
		return CodeArgs{Cmd: cmd, Cwd: cwd, TimeoutS: timeout}, true
	case ToolKindAzure:
		args, ok := obj["args"].([]any)
		if !ok {
			return nil, false
		}
		return AzureArgs{Args: args}, true
	default:
		return nil, false
	}
}
