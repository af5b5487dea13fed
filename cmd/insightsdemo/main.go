package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philipp01105/insightslog/config"
	"github.com/philipp01105/insightslog/logger"
	"github.com/philipp01105/insightslog/options"
	"github.com/philipp01105/insightslog/scope"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "insightsdemo",
		Short: "insightslog demo CLI",
		Long:  "insightsdemo loads an insightslog config and emits sample telemetry records.",
	}
	rootCmd.PersistentFlags().String("config", os.Getenv(config.EnvConfigPath), "Path to a YAML config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Print diagnostics from the logging pipeline to stderr")

	emitCmd := &cobra.Command{
		Use:   "emit",
		Short: "Emit sample records through the configured sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			debug, _ := cmd.Flags().GetBool("debug")
			level, _ := cmd.Flags().GetString("level")
			category, _ := cmd.Flags().GetString("category")

			cfg, err := config.Loader{}.Load(path)
			if err != nil {
				return err
			}
			diag, err := newDiagnostics(debug)
			if err != nil {
				return err
			}
			defer diag.Sync() //nolint:errcheck

			return emit(cmd.Context(), cmd.OutOrStdout(), cfg, diag, logger.ParseLevel(level), category)
		},
	}
	emitCmd.Flags().String("level", "information", "Level of the sample trace records: trace|debug|information|warning|error|critical")
	emitCmd.Flags().String("category", "insightsdemo", "Category name of the emitting logger")
	rootCmd.AddCommand(emitCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Emit a heartbeat record on every options change until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			debug, _ := cmd.Flags().GetBool("debug")
			if path == "" {
				return errors.New("watch requires --config")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			diag, err := newDiagnostics(debug)
			if err != nil {
				return err
			}
			defer diag.Sync() //nolint:errcheck

			return watch(ctx, cmd.OutOrStdout(), path, diag)
		},
	}
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newDiagnostics(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// emit builds a provider over the configured sink and writes a fixed set of
// sample records: a scoped trace, an event-tagged warning, an exception and
// one record each through the slog and zap bridges.
func emit(ctx context.Context, out io.Writer, cfg config.Config, diag *zap.Logger, level logger.Level, category string) (err error) {
	sink, err := cfg.Transport.NewSink(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	p, err := logger.NewBuilder().
		WithSink(sink).
		WithOptions(cfg.Logging).
		WithDiagnostics(diag).
		Build()
	if err != nil {
		return err
	}
	defer p.Close()

	log := p.Logger(category)

	ctx, release := log.BeginScope(ctx, "demo")
	defer release()
	ctx, releaseUser := log.BeginScope(ctx, scope.Props(logger.String("User", "alice")))
	log.Log(ctx, level, logger.EventID{}, nil, "{User} opened cart with {Count} items", "alice", 3)
	releaseUser()

	log.Log(ctx, logger.WarningLevel, logger.EventID{ID: 1001, Name: "SlowCheckout"}, nil, "checkout took {Elapsed}", "1.2s")
	log.Error(ctx, errors.New("card declined"), "payment for order {OrderID} failed", 7781)

	slog.New(logger.NewSlogHandler(log)).InfoContext(ctx, "bridged from slog", "component", "slog")
	zap.New(logger.NewZapCore(p, zap.InfoLevel)).Named(category).Info("bridged from zap", zap.String("component", "zap"))

	return nil
}

// watch writes a heartbeat record whenever the config file's logging
// options change, until ctx is done.
func watch(ctx context.Context, out io.Writer, path string, diag *zap.Logger) (err error) {
	loader := config.Loader{}
	cfg, err := loader.Load(path)
	if err != nil {
		return err
	}
	sink, err := cfg.Transport.NewSink(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	mon := options.NewMonitor(cfg.Logging)
	p, err := logger.NewBuilder().
		WithSink(sink).
		WithOptionsSource(mon).
		WithDiagnostics(diag).
		Build()
	if err != nil {
		return err
	}
	defer p.Close()

	log := p.Logger("insightsdemo.watch")
	unsubscribe := mon.OnChange(func(o options.Options) {
		log.Info(ctx, "options changed: category={IncludeCategoryName} scopes={IncludeScopes}",
			o.IncludeCategoryName, o.IncludeScopes)
	})
	defer unsubscribe()

	w, err := config.NewWatcher(config.WatcherConfig{
		Loader:  loader,
		Path:    path,
		Monitor: mon,
		Logger:  diag,
	})
	if err != nil {
		return err
	}

	log.Info(ctx, "watching {Path}", path)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
