package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads, interpolates and validates configuration from a YAML file.
// If a .checksums manifest exists next to the file, the file's BLAKE3 hash
// is verified against it before parsing.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", configPath)
	}

	if err := VerifyIntegrity(configPath); err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Resolve the secret reference before validation so a missing env var
	// fails loudly at startup, not on the first webhook.
	token, err := resolveSecret(cfg.Twilio.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("twilio.auth_token: %w", err)
	}
	cfg.Twilio.AuthToken = token

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// resolveSecret replaces ${VAR} with the environment variable's value.
// An unset variable is an error rather than a silent empty secret.
func resolveSecret(value string) (string, error) {
	var missing string
	resolved := envVarPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		missing = name
		return match
	})
	if missing != "" {
		return "", fmt.Errorf("environment variable %s is not set", missing)
	}
	return resolved, nil
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	if cfg.Service.Name == "" {
		return fmt.Errorf("service.name is required")
	}
	switch cfg.Service.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("service.log_format must be json or text, got %q", cfg.Service.LogFormat)
	}

	if cfg.Server.ListenPort <= 0 || cfg.Server.ListenPort > 65535 {
		return fmt.Errorf("server.listen_port must be in 1..65535, got %d", cfg.Server.ListenPort)
	}
	if cfg.Server.MaxBodySize <= 0 {
		return fmt.Errorf("server.max_body_size must be positive, got %d", cfg.Server.MaxBodySize)
	}

	if cfg.Twilio.AuthToken == "" {
		return fmt.Errorf("twilio.auth_token is required (the webhook cannot be authenticated without it)")
	}
	if cfg.Twilio.SignatureHeader == "" {
		return fmt.Errorf("twilio.signature_header is required")
	}

	if cfg.Reply.Text == "" {
		return fmt.Errorf("reply.text is required")
	}

	if cfg.Dedup.RetentionWindow.Std() <= 0 {
		return fmt.Errorf("dedup.retention_window must be positive, got %s", cfg.Dedup.RetentionWindow)
	}
	if cfg.Dedup.SweepInterval.Std() <= 0 {
		return fmt.Errorf("dedup.sweep_interval must be positive, got %s", cfg.Dedup.SweepInterval)
	}

	return nil
}
