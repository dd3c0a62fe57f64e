package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/config"
	"github.com/roach88/commune/internal/engine"
	"github.com/roach88/commune/internal/logger"
	"github.com/roach88/commune/internal/store"
)

// session bundles what a command needs to talk to the engine.
type session struct {
	ctx    context.Context
	cfg    config.Config
	log    *logger.Logger
	store  *store.Store
	engine *engine.Engine
	out    *OutputFormatter
}

func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadSettings reads the config and builds the logger. --db and --verbose
// override the file and the environment.
func loadSettings(opts *RootOptions) (config.Config, *logger.Logger, error) {
	cfg, err := config.Load(config.Options{Path: opts.Config, EnvFile: opts.EnvFile})
	if err != nil {
		return config.Config{}, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Console = true
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		return config.Config{}, nil, WrapExitError(ExitCommandError, "failed to create logger", err)
	}
	return cfg, lg, nil
}

// openSession loads settings, opens the database and starts an engine.
// The caller must Close the session.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, lg, err := loadSettings(opts)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		_ = lg.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	ctx := commandContext(cmd)
	eng, err := engine.New(ctx, st, engine.WithLogger(lg.Logger))
	if err != nil {
		_ = st.Close()
		_ = lg.Close()
		return nil, WrapExitError(ExitCommandError, "failed to start engine", err)
	}
	lg.Debug("session opened", zap.String("database", cfg.Database))

	return &session{
		ctx:    ctx,
		cfg:    cfg,
		log:    lg,
		store:  st,
		engine: eng,
		out:    formatter(opts, cmd),
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Error("error closing database", zap.Error(err))
	}
	_ = s.log.Close()
}

// parseKey parses a base58 identity flag or argument.
func parseKey(name, value string) (address.Key, error) {
	if value == "" {
		return address.Key{}, NewExitError(ExitCommandError, fmt.Sprintf("%s is required", name))
	}
	k, err := address.ParseKey(value)
	if err != nil {
		return address.Key{}, WrapExitError(ExitCommandError, fmt.Sprintf("invalid %s", name), err)
	}
	return k, nil
}

// parseID parses a decimal record ID argument.
func parseID(name, value string) (uint64, error) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid %s %q", name, value), err)
	}
	return id, nil
}

// nonceFor returns flag when it was given (0-255), otherwise the canonical
// bump of seeds.
func nonceFor(flag int, seeds [][]byte) (uint8, error) {
	if flag >= 0 {
		if flag > 255 {
			return 0, NewExitError(ExitCommandError, fmt.Sprintf("nonce %d out of range 0-255", flag))
		}
		return uint8(flag), nil
	}
	_, bump, err := address.FindAddress(seeds...)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "failed to derive address", err)
	}
	return bump, nil
}
