package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/manthysbr/auleServe/internal/core/domain"
)

// Environment overrides, applied after the YAML file.
const (
	EnvLLMMode          = "AULE_LLM_MODE"
	EnvLLMBaseURL       = "AULE_LLM_BASE_URL"
	EnvLLMAPIKey        = "AULE_LLM_API_KEY"
	EnvLLMModel         = "AULE_LLM_MODEL"
	EnvLLMTimeout       = "AULE_LLM_TIMEOUT"
	EnvSystemPrompt     = "SYSTEM_PROMPT"
	EnvTransport        = "AULE_CHANNEL_TRANSPORT"
	EnvConnectionString = "AZURE_SERVICEBUS_CONNECTION_STRING"
	EnvWebQueue         = "AULE_WEB_QUEUE"
	EnvAzureQueue       = "AULE_AZURE_QUEUE"
	EnvLogLevel         = "AULE_LOG_LEVEL"
	EnvLogFormat        = "AULE_LOG_FORMAT"
)

// Options controls where Load looks for its inputs.
type Options struct {
	// Path is an optional YAML file. Empty skips it.
	Path string
	// EnvFiles are dotenv files loaded into the process environment before
	// overrides are read. Missing files are ignored. Existing variables win.
	EnvFiles []string
	// KeyPath locates the secret key file for "enc:" values.
	KeyPath string
}

// DefaultOptions loads ./.env and the default key path.
func DefaultOptions(path string) Options {
	return Options{Path: path, EnvFiles: []string{".env"}, KeyPath: DefaultKeyPath()}
}

// Load builds the configuration: defaults, then the YAML file, then dotenv
// files, then environment overrides, then decryption of "enc:" secrets,
// then validation.
func Load(opts Options) (*domain.AppConfig, error) {
	cfg := domain.DefaultConfig()

	if opts.Path != "" {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", opts.Path, err)
		}
	}

	for _, f := range opts.EnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := decryptSecrets(cfg, opts.KeyPath); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *domain.AppConfig) error {
	overrides := []struct {
		env string
		dst *string
	}{
		{EnvLLMMode, &cfg.LLM.Mode},
		{EnvLLMBaseURL, &cfg.LLM.BaseURL},
		{EnvLLMAPIKey, &cfg.LLM.APIKey},
		{EnvLLMModel, &cfg.LLM.Model},
		{EnvSystemPrompt, &cfg.LLM.SystemPrompt},
		{EnvTransport, &cfg.Channels.Transport},
		{EnvConnectionString, &cfg.Channels.ConnectionString},
		{EnvWebQueue, &cfg.Channels.WebQueue},
		{EnvAzureQueue, &cfg.Channels.AzureQueue},
		{EnvLogLevel, &cfg.Log.Level},
		{EnvLogFormat, &cfg.Log.Format},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok {
			*o.dst = strings.TrimSpace(v)
		}
	}

	if v, ok := os.LookupEnv(EnvLLMTimeout); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvLLMTimeout, err)
		}
		cfg.LLM.Timeout = d
	}
	return nil
}

// decryptSecrets opens "enc:" values in place. The key is only loaded when
// at least one value is encrypted.
func decryptSecrets(cfg *domain.AppConfig, keyPath string) error {
	secrets := map[string]*string{
		"llm.api_key":                &cfg.LLM.APIKey,
		"channels.connection_string": &cfg.Channels.ConnectionString,
	}

	var sk *SecretKey
	for name, value := range secrets {
		if !IsEncrypted(*value) {
			continue
		}
		if sk == nil {
			var err error
			if sk, err = LoadSecretKey(keyPath); err != nil {
				return fmt.Errorf("failed to decrypt %s: %w", name, err)
			}
		}
		plain, err := sk.Decrypt(*value)
		if err != nil {
			return fmt.Errorf("failed to decrypt %s: %w", name, err)
		}
		*value = plain
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints declared on domain.AppConfig.
func Validate(cfg *domain.AppConfig) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Masked returns a copy with secrets masked, for logging.
func Masked(cfg *domain.AppConfig) domain.AppConfig {
	cp := *cfg
	cp.LLM.APIKey = MaskSecret(cfg.LLM.APIKey)
	cp.Channels.ConnectionString = MaskSecret(cfg.Channels.ConnectionString)
	return cp
}
