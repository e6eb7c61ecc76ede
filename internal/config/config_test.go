package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manthysbr/auleServe/internal/core/domain"
)

// clearEnv unsets every override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvLLMMode, EnvLLMBaseURL, EnvLLMAPIKey, EnvLLMModel, EnvLLMTimeout, EnvSystemPrompt,
		EnvTransport, EnvConnectionString, EnvWebQueue, EnvAzureQueue, EnvLogLevel, EnvLogFormat,
		secretKeyEnv,
	} {
		if old, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "aule.yaml", `
llm:
  mode: ollama
  base_url: http://gpu-box:11434
  model: qwen2.5:latest
  timeout: 90s
channels:
  transport: memory
  azure_queue: results
  publish_timeout: 5s
log:
  level: debug
`)
	t.Setenv(EnvLLMModel, " qwen-lora ")
	t.Setenv(EnvSystemPrompt, "Use tags.")

	cfg, err := Load(Options{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLM.Mode)
	assert.Equal(t, "http://gpu-box:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "qwen-lora", cfg.LLM.Model)
	assert.Equal(t, "Use tags.", cfg.LLM.SystemPrompt)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "memory", cfg.Channels.Transport)
	assert.Equal(t, "results", cfg.Channels.AzureQueue)
	assert.Equal(t, "webqueue", cfg.Channels.WebQueue)
	assert.Equal(t, 5*time.Second, cfg.Channels.PublishTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "AULE_WEB_QUEUE=from-dotenv\nAULE_AZURE_QUEUE=also-dotenv\n")
	t.Setenv(EnvAzureQueue, "from-env")

	cfg, err := Load(Options{EnvFiles: []string{envFile, filepath.Join(dir, "missing.env")}})
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Channels.WebQueue)
	assert.Equal(t, "from-env", cfg.Channels.AzureQueue)
}

func TestLoad_DecryptsSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv(secretKeyEnv, "config-test-key")

	sk, err := LoadSecretKey("")
	require.NoError(t, err)
	encKey, err := sk.Encrypt("token-abc123")
	require.NoError(t, err)
	encConn, err := sk.Encrypt("Endpoint=sb://ns/;SharedAccessKey=x")
	require.NoError(t, err)

	t.Setenv(EnvLLMAPIKey, encKey)
	t.Setenv(EnvConnectionString, encConn)

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "token-abc123", cfg.LLM.APIKey)
	assert.Equal(t, "Endpoint=sb://ns/;SharedAccessKey=x", cfg.Channels.ConnectionString)

	masked := Masked(cfg)
	assert.Equal(t, "****c123", masked.LLM.APIKey)
	assert.Equal(t, "token-abc123", cfg.LLM.APIKey)
}

func TestLoad_EncryptedWithoutKey(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLLMAPIKey, "enc:AAAA")

	_, err := Load(Options{KeyPath: filepath.Join(t.TempDir(), "none.key")})
	assert.ErrorIs(t, err, ErrNoSecretKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		yaml string
	}{
		{name: "bad mode", env: map[string]string{EnvLLMMode: "bedrock"}},
		{name: "bad transport", env: map[string]string{EnvTransport: "kafka"}},
		{name: "bad url", env: map[string]string{EnvLLMBaseURL: "not a url"}},
		{name: "empty queue", env: map[string]string{EnvWebQueue: ""}},
		{name: "bad log level", env: map[string]string{EnvLogLevel: "trace"}},
		{name: "bad timeout", env: map[string]string{EnvLLMTimeout: "soon"}},
		{name: "bad yaml", yaml: "llm: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			opts := Options{}
			if tt.yaml != "" {
				opts.Path = writeFile(t, t.TempDir(), "bad.yaml", tt.yaml)
			}

			_, err := Load(opts)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(Options{Path: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.ErrorContains(t, err, "failed to read config file")
}
