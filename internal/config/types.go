package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses YAML strings like "5m" or "90s" into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Config represents the complete pigeon configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Server  ServerConfig  `yaml:"server"`
	Twilio  TwilioConfig  `yaml:"twilio"`
	Reply   ReplyConfig   `yaml:"reply"`
	Dedup   DedupConfig   `yaml:"dedup"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	ListenHost string `yaml:"listen_host"`
	ListenPort int    `yaml:"listen_port"`

	// MaxBodySize caps the webhook request body in bytes.
	MaxBodySize int64 `yaml:"max_body_size"`
}

// Addr returns the host:port the server binds to.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.ListenHost, strconv.Itoa(s.ListenPort))
}

// TwilioConfig defines provider authentication settings.
type TwilioConfig struct {
	// AuthToken is the account's shared secret used to verify request
	// signatures. Supports ${ENV_VAR} references so the token never has to
	// live in the file.
	AuthToken string `yaml:"auth_token"`

	// SignatureHeader is the HTTP header carrying the provider signature.
	SignatureHeader string `yaml:"signature_header"`

	// CallbackURL, when set, is the exact URL Twilio signs against. Needed
	// behind proxies/load balancers where the request URL seen by the
	// process differs from the public one. Empty means reconstruct from
	// the request.
	CallbackURL string `yaml:"callback_url,omitempty"`
}

// ReplyConfig defines the reply policy settings.
type ReplyConfig struct {
	Text string `yaml:"text"`
}

// DedupConfig defines retry-suppression settings.
type DedupConfig struct {
	RetentionWindow Duration `yaml:"retention_window"`
	SweepInterval   Duration `yaml:"sweep_interval"`
}

// Defaults returns a Config with sensible defaults. The Twilio auth token
// has no default; it must be configured.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "pigeon",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Server: ServerConfig{
			ListenHost:  "0.0.0.0",
			ListenPort:  8000,
			MaxBodySize: 65536,
		},
		Twilio: TwilioConfig{
			SignatureHeader: "X-Twilio-Signature",
		},
		Reply: ReplyConfig{
			Text: "hello world",
		},
		Dedup: DedupConfig{
			RetentionWindow: Duration(5 * time.Minute),
			SweepInterval:   Duration(time.Minute),
		},
	}
}
