package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
		checkFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "minimal valid config",
			yaml: `
twilio:
  auth_token: plain-token
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Twilio.AuthToken != "plain-token" {
					t.Error("auth_token not parsed")
				}
				// Defaults applied
				if cfg.Service.Name != "pigeon" {
					t.Error("service.name default not applied")
				}
				if cfg.Server.ListenPort != 8000 {
					t.Error("listen_port default not applied")
				}
				if cfg.Twilio.SignatureHeader != "X-Twilio-Signature" {
					t.Error("signature_header default not applied")
				}
				if cfg.Reply.Text != "hello world" {
					t.Error("reply.text default not applied")
				}
				if cfg.Dedup.RetentionWindow.Std() != 5*time.Minute {
					t.Error("retention_window default not applied")
				}
			},
		},
		{
			name: "full config with overrides",
			yaml: `
service:
  name: pigeon-staging
  log_level: debug
  log_format: text
server:
  listen_host: 127.0.0.1
  listen_port: 9001
  max_body_size: 32768
twilio:
  auth_token: tok
  signature_header: X-Custom-Signature
  callback_url: https://sms.example.com/message
reply:
  text: thanks!
dedup:
  retention_window: 10m
  sweep_interval: 30s
`,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Service.Name != "pigeon-staging" {
					t.Error("service.name not parsed")
				}
				if cfg.Server.Addr() != "127.0.0.1:9001" {
					t.Errorf("Addr() = %q", cfg.Server.Addr())
				}
				if cfg.Twilio.CallbackURL != "https://sms.example.com/message" {
					t.Error("callback_url not parsed")
				}
				if cfg.Reply.Text != "thanks!" {
					t.Error("reply.text not parsed")
				}
				if cfg.Dedup.RetentionWindow.Std() != 10*time.Minute {
					t.Error("retention_window not parsed")
				}
				if cfg.Dedup.SweepInterval.Std() != 30*time.Second {
					t.Error("sweep_interval not parsed")
				}
			},
		},
		{
			name: "auth token from environment",
			yaml: `
twilio:
  auth_token: ${PIGEON_TEST_AUTH_TOKEN}
`,
			env: map[string]string{"PIGEON_TEST_AUTH_TOKEN": "secret-from-env"},
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Twilio.AuthToken != "secret-from-env" {
					t.Errorf("auth_token = %q, want secret-from-env", cfg.Twilio.AuthToken)
				}
			},
		},
		{
			name: "unset env var fails",
			yaml: `
twilio:
  auth_token: ${PIGEON_TEST_UNSET_VAR}
`,
			wantErr: "PIGEON_TEST_UNSET_VAR is not set",
		},
		{
			name:    "missing auth token fails",
			yaml:    "service:\n  name: pigeon\n",
			wantErr: "auth_token is required",
		},
		{
			name: "invalid port fails",
			yaml: `
server:
  listen_port: 70000
twilio:
  auth_token: tok
`,
			wantErr: "listen_port",
		},
		{
			name: "invalid log format fails",
			yaml: `
service:
  log_format: xml
twilio:
  auth_token: tok
`,
			wantErr: "log_format",
		},
		{
			name: "zero retention window fails",
			yaml: `
twilio:
  auth_token: tok
dedup:
  retention_window: 0s
`,
			wantErr: "retention_window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(writeConfig(t, tt.yaml))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Load() succeeded, want error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if tt.checkFn != nil {
				tt.checkFn(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}
