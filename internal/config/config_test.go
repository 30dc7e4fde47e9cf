package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vpatelsj/comops/comclient"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "comctl.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func validConfig() *Config {
	cfg := Default()
	cfg.Endpoint = "https://us-west2-api.compute.cloud.hpe.com"
	cfg.ClientID = "id"
	cfg.ClientSecret = "secret"
	return cfg
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvEndpoint, "")
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")
	t.Setenv(EnvAPIVersion, "")
	t.Setenv(EnvTokenURL, "")

	path := writeConfig(t, `
endpoint: https://eu-central1-api.compute.cloud.hpe.com
clientId: from-file
timeout: 45s
journal: /tmp/comctl.db
poll:
  startInterval: 2s
  completionInterval: 10s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Endpoint != "https://eu-central1-api.compute.cloud.hpe.com" {
		t.Errorf("unexpected endpoint %q", cfg.Endpoint)
	}
	if cfg.ClientID != "from-file" {
		t.Errorf("unexpected client id %q", cfg.ClientID)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("unexpected timeout %s", cfg.Timeout)
	}
	if cfg.Poll.CompletionInterval != 10*time.Second {
		t.Errorf("unexpected completion interval %s", cfg.Poll.CompletionInterval)
	}
	if cfg.APIVersion != comclient.DefaultAPIVersion {
		t.Errorf("expected default api version, got %q", cfg.APIVersion)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv(EnvClientID, "from-env")
	t.Setenv(EnvClientSecret, "env-secret")
	t.Setenv(EnvEndpoint, "")
	t.Setenv(EnvAPIVersion, "v1beta1")
	t.Setenv(EnvTokenURL, "")

	path := writeConfig(t, "clientId: from-file\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ClientID != "from-env" || cfg.ClientSecret != "env-secret" {
		t.Errorf("env did not override file: %+v", cfg)
	}
	if cfg.APIVersion != "v1beta1" {
		t.Errorf("unexpected api version %q", cfg.APIVersion)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "endpoint: [unclosed")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidate_Valid(t *testing.T) {
	if errs := validConfig().Validate(); errs.HasErrors() {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{APIVersion: "beta", TokenURL: "not a url"}

	errs := cfg.Validate()

	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, want := range []string{"endpoint", "client-id", "client-secret", "api-version", "token-url"} {
		if !fields[want] {
			t.Errorf("expected error for %s, got: %v", want, errs)
		}
	}
}

func TestValidate_PollErrorsInFieldOrder(t *testing.T) {
	cfg := validConfig()
	cfg.Timeout = -time.Second
	cfg.Poll.StartInterval = -time.Second
	cfg.Poll.CompletionInterval = -time.Second
	cfg.Poll.MaxWait = -time.Second

	want := "timeout: must not be negative; " +
		"poll.startInterval: must not be negative; " +
		"poll.completionInterval: must not be negative; " +
		"poll.maxWait: must not be negative"

	// Repeat to catch any order that depends on map iteration
	for i := 0; i < 20; i++ {
		if got := cfg.Validate().Error(); got != want {
			t.Fatalf("run %d: got %q, want %q", i, got, want)
		}
	}
}

func TestValidate_Hints(t *testing.T) {
	cfg := validConfig()
	cfg.ClientID = ""

	errs := cfg.Validate()
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got: %v", errs)
	}
	if !strings.Contains(errs[0].Hint, EnvClientID) {
		t.Errorf("expected hint to mention env var, got: %s", errs[0].Hint)
	}
	if !strings.Contains(errs.Error(), "client-id: required but not provided") {
		t.Errorf("unexpected message: %s", errs.Error())
	}
}

func TestValidate_InvalidEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Endpoint = "us-west2-api.compute.cloud.hpe.com"

	errs := cfg.Validate()
	if len(errs) != 1 || errs[0].Field != "endpoint" {
		t.Errorf("expected endpoint error, got: %v", errs)
	}
}

func TestClientConfig(t *testing.T) {
	cfg := validConfig()
	cc := cfg.ClientConfig()
	if cc.Endpoint != cfg.Endpoint || cc.ClientSecret != "secret" || cc.Timeout != 30*time.Second {
		t.Errorf("unexpected client config %+v", cc)
	}
}

func TestPromptSecretSkipsWhenSet(t *testing.T) {
	cfg := validConfig()
	var out strings.Builder
	if err := cfg.PromptSecret(-1, &out); err != nil {
		t.Fatalf("PromptSecret failed: %v", err)
	}
	if out.Len() != 0 || cfg.ClientSecret != "secret" {
		t.Errorf("expected no prompt, got %q", out.String())
	}
}
