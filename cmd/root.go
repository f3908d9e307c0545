package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/billbatista/acasinha-splitter/config"
	"github.com/billbatista/acasinha-splitter/database"
	"github.com/billbatista/acasinha-splitter/eventlogger"
	"github.com/billbatista/acasinha-splitter/ledger"
	"github.com/billbatista/acasinha-splitter/middleware"

	"github.com/spf13/cobra"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:          "billsplit",
	Short:        "Split one shared bill between friends",
	Long:         "Track a shared bill, the partial payments made against it and what everybody owes in the end.",
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.DefaultPath(), "Config file (TOML)")
}

// app bundles the engine with the resources that back it.
type app struct {
	cfg     config.Config
	engine  *ledger.Engine
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// openApp wires storage, the audit log and the engine from the config file.
func openApp(ctx context.Context, opts ...ledger.Option) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	var store ledger.Store
	var events eventlogger.EventLogger

	switch cfg.Storage.Driver {
	case "memory":
		store = ledger.NewMemoryRepository()
		events = eventlogger.NewSlogEventLogger(nil)
	case "file":
		store = ledger.NewFileRepository(cfg.Storage.Path)
		events = eventlogger.NewSlogEventLogger(nil)
	default:
		dialect, err := database.ParseDialect(cfg.Storage.Driver)
		if err != nil {
			return nil, err
		}
		db, err := database.Open(ctx, dialect, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		store = ledger.NewRepository(db, dialect, cfg.Storage.Key)
		events = eventlogger.NewSqlEventLogger(db, dialect)
	}

	if cfg.Events.Enabled {
		worker := eventlogger.NewWorker(events, cfg.Events.BufferSize)
		worker.Start()
		a.closers = append(a.closers, worker.Shutdown)
		opts = append(opts, ledger.WithEventSink(worker))
	}

	opts = append([]ledger.Option{ledger.WithDefaultPeople(cfg.Ledger.People)}, opts...)
	a.engine = ledger.NewEngine(ctx, store, opts...)
	return a, nil
}

// commandContext tags events raised by a CLI command with its name.
func commandContext(cmd *cobra.Command) context.Context {
	return eventlogger.ContextWithMetadata(cmd.Context(), map[string]string{
		middleware.MetaSource: "cli",
		"command":             cmd.Name(),
	})
}

// userError prints the message of a rejected input and turns it into a
// plain error so cobra exits non-zero without repeating the usage.
func userError(err error) error {
	if msg, ok := ledger.IsValidation(err); ok {
		return errors.New(msg)
	}
	return err
}
