package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/habitd/internal/banner"
	"github.com/sandeepkv93/habitd/internal/config"
	"github.com/sandeepkv93/habitd/internal/habits"
	"github.com/sandeepkv93/habitd/internal/logging"
	"github.com/sandeepkv93/habitd/internal/notify"
	"github.com/sandeepkv93/habitd/internal/storage"
	"github.com/sandeepkv93/habitd/internal/update"
)

const shutdownTimeout = 5 * time.Second

type rootFlags struct {
	configPath string
	backend    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "habitd",
		Short:         "Daily habit tracker with reminders, in your terminal.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cfg)
		},
	}
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a TOML config file")
	cmd.PersistentFlags().StringVar(&flags.backend, "backend", "", "storage backend: file, sqlite, redis, postgres, memory")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(newMigrateCmd(flags), newVersionCmd())
	return cmd
}

// load resolves config and applies flags that were set explicitly.
func (f *rootFlags) load(cmd *cobra.Command) (config.RuntimeConfig, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.RuntimeConfig{}, err
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = f.backend
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.StateDir, "habitd.log")
	}
	return cfg, cfg.Validate()
}

func runTUI(ctx context.Context, cfg config.RuntimeConfig) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, closeLog, err := logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	gateway, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := gateway.Close(); cerr != nil {
			logger.Warn("close storage", "error", cerr)
		}
	}()

	deliverer, closeDeliverer := buildDeliverer(cfg, logger)
	defer closeDeliverer()

	notifier := notify.NewLocalGateway(notify.LocalOptions{
		Buffer:    cfg.SchedulerBuffer,
		Deliverer: deliverer,
		Logger:    logger.WithPrefix("notify"),
	})
	defer func() { _ = notifier.Close() }()
	if err := notifier.EnsureChannel(ctx, notify.DefaultChannel()); err != nil {
		return err
	}

	publisher := banner.New(cfg.BannerDelay())
	defer publisher.Close()

	store := habits.New(gateway, notifier, habits.Options{
		Location: loc,
		Logger:   logger.WithPrefix("habits"),
		Banner:   publisher,
	})
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := store.Close(closeCtx); cerr != nil {
			logger.Warn("flush habits on exit", "error", cerr)
			err = errors.Join(err, cerr)
		}
	}()
	store.Load(ctx)

	logger.Info("habitd started", "backend", cfg.Backend, "timezone", loc.String())
	program := tea.NewProgram(update.NewModel(ctx, store), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// buildDeliverer fans fired notifications out to the log and, when
// configured, the desktop and the broker.
func buildDeliverer(cfg config.RuntimeConfig, logger *log.Logger) (notify.Deliverer, func()) {
	deliverers := notify.MultiDeliverer{notify.LogDeliverer{Logger: logger}}
	closeFn := func() {}

	if cfg.DesktopNotifications {
		deliverers = append(deliverers, notify.NewDesktopDeliverer())
	}
	if cfg.AMQPURL != "" {
		publisher, err := notify.DialAMQP(cfg.AMQPURL, logger.WithPrefix("amqp"))
		if err != nil {
			logger.Warn("notification broker unavailable", "error", err)
		} else {
			deliverers = append(deliverers, publisher)
			closeFn = func() {
				if err := publisher.Close(); err != nil {
					logger.Warn("close broker", "error", err)
				}
			}
		}
	}
	return deliverers, closeFn
}
