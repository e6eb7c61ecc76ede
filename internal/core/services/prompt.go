package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/manthysbr/auleServe/internal/core/domain"
)

// Documented payload shapes, used only to render schemas for the model.
// Validation accepts any value type once the keys are present.
type webToolInput struct {
	Q string `json:"q" jsonschema:"search query"`
	K int    `json:"k" jsonschema:"number of results to return"`
}

type codeToolInput struct {
	Cmd      string `json:"cmd" jsonschema:"shell command to run"`
	Cwd      string `json:"cwd" jsonschema:"working directory for the command"`
	TimeoutS int    `json:"timeout_s" jsonschema:"timeout in seconds"`
}

type azureToolInput struct {
	Args []string `json:"args" jsonschema:"arguments passed to the az CLI, without the leading az"`
}

type toolDoc struct {
	kind        domain.ToolKind
	description string
	schema      func() (*jsonschema.Schema, error)
}

var toolDocs = []toolDoc{
	{domain.ToolKindWeb, "search the web", func() (*jsonschema.Schema, error) { return jsonschema.For[webToolInput](nil) }},
	{domain.ToolKindCode, "execute a command in the sandbox", func() (*jsonschema.Schema, error) { return jsonschema.For[codeToolInput](nil) }},
	{domain.ToolKindAzure, "run an Azure CLI command", func() (*jsonschema.Schema, error) { return jsonschema.For[azureToolInput](nil) }},
}

// ToolSchema returns the JSON schema documented for kind.
func ToolSchema(kind domain.ToolKind) (*jsonschema.Schema, error) {
	for _, doc := range toolDocs {
		if doc.kind == kind {
			return doc.schema()
		}
	}
	return nil, fmt.Errorf("no schema for tool kind %q", kind)
}

// BuildToolPrompt renders the tag grammar and the payload schema of every
// tool kind. It is appended to the system prompt on request.
func BuildToolPrompt() (string, error) {
	var b strings.Builder
	b.WriteString("Think inside <think>...</think> and give the final answer inside <solution>...</solution>.\n")
	b.WriteString("To call a tool, emit its tag with a JSON object body. Available Tools:\n")

	for _, doc := range toolDocs {
		schema, err := doc.schema()
		if err != nil {
			return "", fmt.Errorf("failed to build %s schema: %w", doc.kind, err)
		}
		raw, err := json.Marshal(schema)
		if err != nil {
			return "", fmt.Errorf("failed to marshal %s schema: %w", doc.kind, err)
		}
		fmt.Fprintf(&b, "- <%s>{...}</%s>: %s | required: %s | schema: %s\n",
			doc.kind, doc.kind, doc.description,
			strings.Join(doc.kind.RequiredFields(), ", "), raw)
	}
	return b.String(), nil
}
