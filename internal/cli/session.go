package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tarachom/accountingstore/internal/config"
	"github.com/tarachom/accountingstore/internal/kernel"
	"github.com/tarachom/accountingstore/internal/metadata"
	"github.com/tarachom/accountingstore/internal/store"
)

// session is everything a data command needs: resolved config, compiled
// metadata, the open store and a kernel bound to it.
type session struct {
	cfg       config.Config
	meta      *metadata.Configuration
	store     *store.Store
	kernel    *kernel.Kernel
	logger    *slog.Logger
	formatter *OutputFormatter
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// resolveConfig loads the config file, if any, and applies flag overrides.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Metadata != "" {
		cfg.Metadata = opts.Metadata
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

// newLogger configures a text handler on the command's stderr.
func newLogger(cfg config.Config, cmd *cobra.Command) *slog.Logger {
	w := cmd.ErrOrStderr()
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))
}

// openSession resolves config, compiles metadata and opens the store.
// Errors are reported through the formatter and returned as ExitError.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	formatter := newFormatter(opts, cmd)

	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, formatter.Fail(ErrCodeConfig, "invalid configuration", err)
	}
	logger := newLogger(cfg, cmd)

	logger.Debug("loading metadata", "dir", cfg.Metadata)
	meta, err := metadata.Load(cfg.Metadata)
	if err != nil {
		return nil, formatter.Fail(ErrCodeMetadata, "failed to load metadata", err)
	}

	logger.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database, meta,
		store.WithLogger(logger),
		store.WithCacheSize(cfg.PresentationCache))
	if err != nil {
		return nil, formatter.Fail(ErrCodeDatabase, "failed to open database", err)
	}

	k, err := kernel.New(st, meta, kernel.WithLogger(logger))
	if err != nil {
		st.Close()
		return nil, formatter.Fail(ErrCodeGeneric, "failed to create kernel", err)
	}

	return &session{
		cfg:       cfg,
		meta:      meta,
		store:     st,
		kernel:    k,
		logger:    logger,
		formatter: formatter,
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}
