package domain

import "time"

// AppConfig holds the whole runtime configuration.
type AppConfig struct {
	LLM      LLMConfig     `yaml:"llm" json:"llm" validate:"required"`
	Channels ChannelConfig `yaml:"channels" json:"channels" validate:"required"`
	Log      LogConfig     `yaml:"log" json:"log"`
}

// LLMConfig configures the chat completion backend
type LLMConfig struct {
	Mode         string        `yaml:"mode" json:"mode" validate:"oneof=openai ollama"` // "openai" (vLLM and friends) or "ollama"
	BaseURL      string        `yaml:"base_url" json:"base_url" validate:"required,url"`
	APIKey       string        `yaml:"api_key" json:"api_key"` // may be "enc:" encrypted
	Model        string        `yaml:"model" json:"model" validate:"required"`
	SystemPrompt string        `yaml:"system_prompt" json:"system_prompt"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`
}

// ChannelConfig configures where valid tool calls are published
type ChannelConfig struct {
	Transport        string        `yaml:"transport" json:"transport" validate:"oneof=servicebus memory"`
	ConnectionString string        `yaml:"connection_string" json:"connection_string"` // may be "enc:" encrypted
	WebQueue         string        `yaml:"web_queue" json:"web_queue" validate:"required"`
	AzureQueue       string        `yaml:"azure_queue" json:"azure_queue" validate:"required"`
	PublishTimeout   time.Duration `yaml:"publish_timeout" json:"publish_timeout" validate:"gte=0"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=json text auto"`
}

// Queue returns the configured queue name for a channel.
func (c ChannelConfig) Queue(ch Channel) (string, bool) {
	switch ch {
	case ChannelWeb:
		return c.WebQueue, c.WebQueue != ""
	case ChannelAzure:
		return c.AzureQueue, c.AzureQueue != ""
	default:
		return "", false
	}
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		LLM: LLMConfig{
			Mode:         "openai",
			BaseURL:      "http://localhost:8000/v1",
			Model:        "qwen-lora",
			SystemPrompt: "You are a helpful AI assistant.",
			Timeout:      60 * time.Second,
		},
		Channels: ChannelConfig{
			Transport:      "servicebus",
			WebQueue:       "webqueue",
			AzureQueue:     "azurequeue",
			PublishTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
