// Package config loads toolkit settings from a YAML file, the environment and
// command-line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/vpatelsj/comops/comclient"
)

// Environment variables read by ApplyEnv
const (
	EnvClientID     = "COM_CLIENT_ID"
	EnvClientSecret = "COM_CLIENT_SECRET"
	EnvEndpoint     = "COM_ENDPOINT"
	EnvAPIVersion   = "COM_API_VERSION"
	EnvTokenURL     = "COM_TOKEN_URL"
)

// Config holds all settings of a toolkit run
type Config struct {
	Endpoint     string        `yaml:"endpoint"`
	APIVersion   string        `yaml:"apiVersion"`
	TokenURL     string        `yaml:"tokenUrl"`
	ClientID     string        `yaml:"clientId"`
	ClientSecret string        `yaml:"clientSecret"`
	Timeout      time.Duration `yaml:"timeout"`

	// Journal is the path of the SQLite job journal; empty disables it
	Journal string `yaml:"journal"`

	// Poll overrides the observed polling intervals
	Poll PollConfig `yaml:"poll"`
}

// PollConfig tunes job polling.
type PollConfig struct {
	StartInterval      time.Duration `yaml:"startInterval"`
	CompletionInterval time.Duration `yaml:"completionInterval"`
	MaxWait            time.Duration `yaml:"maxWait"`
}

// Default returns a configuration with the service defaults.
func Default() *Config {
	return &Config{
		APIVersion: comclient.DefaultAPIVersion,
		TokenURL:   comclient.DefaultTokenURL,
		Timeout:    30 * time.Second,
	}
}

// Load reads path (if not empty) over the defaults and applies the
// environment on top.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides fields with the non-empty COM_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.ClientID, EnvClientID)
	set(&c.ClientSecret, EnvClientSecret)
	set(&c.Endpoint, EnvEndpoint)
	set(&c.APIVersion, EnvAPIVersion)
	set(&c.TokenURL, EnvTokenURL)
}

// ClientConfig maps the settings onto the COM client configuration.
func (c *Config) ClientConfig() comclient.Config {
	return comclient.Config{
		Endpoint:     c.Endpoint,
		APIVersion:   c.APIVersion,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
		Timeout:      c.Timeout,
	}
}

// ValidationError represents a single validation error with actionable message
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors
func (errs ValidationErrors) HasErrors() bool {
	return len(errs) > 0
}

var apiVersionPattern = regexp.MustCompile(`^v[0-9]+((alpha|beta)[0-9]+)?$`)

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.Endpoint == "" {
		errs = append(errs, ValidationError{
			Field:   "endpoint",
			Message: "required but not provided",
			Hint:    "set via --endpoint flag or " + EnvEndpoint + ", e.g. 'https://us-west2-api.compute.cloud.hpe.com'",
		})
	} else if !isValidURL(c.Endpoint) {
		errs = append(errs, ValidationError{
			Field:   "endpoint",
			Message: fmt.Sprintf("invalid URL '%s'", c.Endpoint),
			Hint:    "must be an absolute http(s) URL",
		})
	}

	if c.ClientID == "" {
		errs = append(errs, ValidationError{
			Field:   "client-id",
			Message: "required but not provided",
			Hint:    "set via --client-id flag or " + EnvClientID + " env var",
		})
	}

	if c.ClientSecret == "" {
		errs = append(errs, ValidationError{
			Field:   "client-secret",
			Message: "required but not provided",
			Hint:    "set " + EnvClientSecret + " or run interactively to be prompted",
		})
	}

	if !apiVersionPattern.MatchString(c.APIVersion) {
		errs = append(errs, ValidationError{
			Field:   "api-version",
			Message: fmt.Sprintf("invalid value '%s'", c.APIVersion),
			Hint:    "use a version like 'v1beta2'",
		})
	}

	if c.TokenURL != "" && !isValidURL(c.TokenURL) {
		errs = append(errs, ValidationError{
			Field:   "token-url",
			Message: fmt.Sprintf("invalid URL '%s'", c.TokenURL),
			Hint:    "must be an absolute http(s) URL",
		})
	}

	if c.Timeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "timeout",
			Message: "must not be negative",
		})
	}

	for _, f := range []struct {
		field string
		value time.Duration
	}{
		{"poll.startInterval", c.Poll.StartInterval},
		{"poll.completionInterval", c.Poll.CompletionInterval},
		{"poll.maxWait", c.Poll.MaxWait},
	} {
		if f.value < 0 {
			errs = append(errs, ValidationError{Field: f.field, Message: "must not be negative"})
		}
	}

	return errs
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

// PromptSecret reads the client secret from the terminal without echo when it
// is not configured. It does nothing if the secret is set or fd is not a
// terminal.
func (c *Config) PromptSecret(fd int, out io.Writer) error {
	if c.ClientSecret != "" || !term.IsTerminal(fd) {
		return nil
	}
	fmt.Fprint(out, "Client secret: ")
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("read client secret: %w", err)
	}
	c.ClientSecret = strings.TrimSpace(string(secret))
	return nil
}
