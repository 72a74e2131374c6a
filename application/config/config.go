// Package config loads host configuration from YAML.
//
// A document is decoded with yaml.v3, unified with the embedded CUE schema
// (which rejects unknown fields and supplies defaults) and finally checked
// with validator tags.
package config

import (
	_ "embed"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/kernelbridge/domain/errors"
)

//go:embed schema.cue
var schemaCUE string

// Config is the host configuration.
type Config struct {
	LogLevel      string           `json:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	Descriptor    DescriptorConfig `json:"descriptor" yaml:"descriptor"`
	Journal       JournalConfig    `json:"journal" yaml:"journal"`
	Crash         CrashConfig      `json:"crash" yaml:"crash"`
	FaultHandling bool             `json:"fault_handling" yaml:"fault_handling"`
}

// CrashConfig configures the crash reporter.
type CrashConfig struct {
	MaxFrames int `json:"max_frames" yaml:"max_frames" validate:"gte=1,lte=64"`
	ExitCode  int `json:"exit_code" yaml:"exit_code" validate:"gte=1,lte=255"`
}

// DescriptorConfig selects the descriptor encoding handed to journals.
type DescriptorConfig struct {
	Format string `json:"format" yaml:"format" validate:"oneof=json yaml"`
}

// JournalConfig configures the fallback journal. An empty path disables it.
type JournalConfig struct {
	Path string `json:"path" yaml:"path"`
}

// validate is a package-level singleton; building one per call is expensive.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:      "info",
		Crash:         CrashConfig{MaxFrames: 64, ExitCode: 1},
		Descriptor:    DescriptorConfig{Format: "json"},
		FaultHandling: true,
	}
}

// Load reads and parses the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document. Absent fields take their defaults.
func Parse(data []byte) (Config, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, &errors.ConfigError{Err: fmt.Errorf("invalid yaml: %w", err)}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := def.Unify(ctx.Encode(doc))
	if err := value.Validate(); err != nil {
		return Config{}, &errors.ConfigError{Err: err}
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return Config{}, &errors.ConfigError{Err: err}
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its validator tags.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if stdErrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		return &errors.ConfigError{
			Field: field,
			Err:   fmt.Errorf("failed on '%s' with value %v", fe.Tag(), fe.Value()),
		}
	}
	return &errors.ConfigError{Err: err}
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
