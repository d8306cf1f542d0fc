// Package config loads the connector configuration used by the CLI.
//
// A configuration file is YAML. After decoding, the values are checked
// against an embedded CUE definition (config.cue) and then against the
// rules CUE cannot express, such as Go duration syntax.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sparqlconn/internal/connector"
	"github.com/roach88/sparqlconn/internal/translate"
)

//go:embed config.cue
var constraintSource string

// Environment variables consulted by ApplyEnv.
const (
	EnvEndpoint = "SPARQLCONN_ENDPOINT"
	EnvMode     = "SPARQLCONN_MODE"
)

// DefaultTimeout bounds each endpoint request when the file sets none.
const DefaultTimeout = 30 * time.Second

// Config is the on-disk connector configuration.
type Config struct {
	// Endpoint is the SPARQL endpoint URL.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Query is the SPARQL query template.
	Query string `json:"query" yaml:"query"`

	// Schema is the column declaration as JSON text.
	Schema string `json:"schema" yaml:"schema"`

	// Mode selects row failure handling: lenient or strict.
	Mode string `json:"mode" yaml:"mode"`

	// Timeout is a Go duration string, e.g. "30s".
	Timeout string `json:"timeout" yaml:"timeout"`

	// RequestsPerSecond paces requests to the endpoint. Zero disables pacing.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	ValidateOnDescribe bool `json:"validate_on_describe" yaml:"validate_on_describe"`

	timeout time.Duration
}

// Default returns a configuration with every optional field set.
func Default() *Config {
	return &Config{
		Mode:               translate.ModeLenient.String(),
		Timeout:            DefaultTimeout.String(),
		ValidateOnDescribe: true,
		timeout:            DefaultTimeout,
	}
}

// Issue is one constraint violation.
type Issue struct {
	Field   string
	Message string
}

// ValidationError reports every constraint a configuration violates.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Field == "" {
			parts = append(parts, is.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", is.Field, is.Message))
	}
	return "invalid config: " + strings.Join(parts, "; ")
}

// Load reads, decodes, overrides from the environment and validates the
// configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode parses YAML on top of Default. It does not validate.
func Decode(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// A missing file is not an error. Variables already set are kept.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from SPARQLCONN_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvMode); v != "" {
		c.Mode = v
	}
}

// Validate checks c against the embedded CUE definition, then parses Timeout.
func (c *Config) Validate() error {
	if err := validateCUE(c); err != nil {
		return err
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return &ValidationError{Issues: []Issue{{Field: "timeout", Message: err.Error()}}}
	}
	if d < 0 {
		return &ValidationError{Issues: []Issue{{Field: "timeout", Message: "must not be negative"}}}
	}
	c.timeout = d
	return nil
}

func validateCUE(c *Config) error {
	ctx := cuecontext.New()
	def := ctx.CompileString(constraintSource).LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("compile config constraints: %w", err)
	}

	v := def.Unify(ctx.Encode(map[string]any{
		"endpoint":             c.Endpoint,
		"query":                c.Query,
		"schema":               c.Schema,
		"mode":                 c.Mode,
		"timeout":              c.Timeout,
		"requests_per_second":  c.RequestsPerSecond,
		"validate_on_describe": c.ValidateOnDescribe,
	}))
	err := v.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	verr := &ValidationError{}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		verr.Issues = append(verr.Issues, Issue{
			Field:   strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		})
	}
	if len(verr.Issues) == 0 {
		verr.Issues = append(verr.Issues, Issue{Message: err.Error()})
	}
	return verr
}

// RequestTimeout returns the parsed Timeout. Valid after Validate.
func (c *Config) RequestTimeout() time.Duration {
	return c.timeout
}

// TranslateMode returns the parsed Mode, falling back to lenient.
func (c *Config) TranslateMode() translate.Mode {
	m, err := translate.ParseMode(c.Mode)
	if err != nil {
		return translate.ModeLenient
	}
	return m
}

// Connector returns the host-facing part of the configuration.
func (c *Config) Connector() connector.Config {
	return connector.Config{
		Endpoint: c.Endpoint,
		Query:    c.Query,
		Schema:   c.Schema,
	}
}
