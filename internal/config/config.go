// Package config loads commune settings from a YAML file, an optional .env
// file and COMMUNE_* environment variables, and validates the result
// against an embedded CUE schema.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/commune/internal/engine"
	"github.com/roach88/commune/internal/logger"
)

//go:embed schema.cue
var schemaCUE string

// Environment variables that override file settings.
const (
	EnvDatabase   = "COMMUNE_DATABASE"
	EnvLogLevel   = "COMMUNE_LOG_LEVEL"
	EnvJoinFee    = "COMMUNE_JOIN_FEE"
	EnvTaxPercent = "COMMUNE_TAX_PERCENT"
	EnvUnitScale  = "COMMUNE_UNIT_SCALE"
)

// DefaultDatabase is the SQLite file used when nothing else is set.
const DefaultDatabase = "commune.db"

// Config is the full set of commune settings.
type Config struct {
	Database string               `yaml:"database" json:"database"`
	Log      logger.Configuration `yaml:"log" json:"log"`
	Genesis  engine.Params        `yaml:"genesis" json:"genesis"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database: DefaultDatabase,
		Log:      logger.Configuration{Level: logger.DefaultLevel},
		Genesis:  engine.DefaultParams(),
	}
}

// Options control where Load looks.
type Options struct {
	// Path is the YAML file. Empty means defaults only.
	Path string

	// EnvFile is a dotenv file loaded into the process environment before
	// overrides are read. A missing file is not an error. Variables already
	// set in the environment win.
	EnvFile string
}

// Load builds a Config: defaults, then the YAML file, then the environment.
func Load(opts Options) (Config, error) {
	cfg := Default()

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", opts.EnvFile, err)
		}
	}

	if opts.Path != "" {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", opts.Path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvDatabase); ok {
		cfg.Database = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.Log.Level = strings.ToLower(v)
	}

	uints := []struct {
		name string
		dst  *uint64
	}{
		{EnvJoinFee, &cfg.Genesis.JoinFee},
		{EnvTaxPercent, &cfg.Genesis.TaxPercent},
		{EnvUnitScale, &cfg.Genesis.UnitScale},
	}
	for _, u := range uints {
		v, ok := os.LookupEnv(u.name)
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return &ValidationError{Field: u.name, Message: fmt.Sprintf("not an unsigned integer: %q", v)}
		}
		*u.dst = n
	}
	return nil
}

// Validate checks cfg against the embedded CUE schema.
func Validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := def.Unify(ctx.Encode(cfg))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// ValidationError reports the first setting that failed validation.
type ValidationError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ValidationError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("config: %s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// formatCUEError keeps the first CUE error with its path and position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	ve := &ValidationError{
		Field:   strings.Join(first.Path(), "."),
		Message: first.Error(),
	}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ve.Pos = positions[0]
	}
	return ve
}
