package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/spf13/cobra"

	"github.com/maxBezel/billpad/commands"
	"github.com/maxBezel/billpad/internal/config"
	"github.com/maxBezel/billpad/internal/logging"
	"github.com/maxBezel/billpad/session"
	"github.com/maxBezel/billpad/shortcuts"
	sql "github.com/maxBezel/billpad/storage"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "billpad",
		Short:        "Billing calculator with a running total",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "config file, .yaml or .toml")
	root.PersistentFlags().String("log-level", "", "log level (env "+config.EnvLogLevel+")")

	root.AddCommand(newBotCmd(), newEvalCmd())
	return root
}

// loadConfig reads the --config file and lets --log-level override it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	return cfg, nil
}

func newBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the telegram bot",
		RunE:  runBot,
	}
	cmd.Flags().String("token", "", "token provided by @BotFather (env "+config.EnvToken+")")
	return cmd
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("token"); v != "" {
		cfg.Telegram.Token = v
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("no token given")
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Console, "billpad")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// sql
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	storage, err := sql.New(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer storage.Close()
	if err := storage.Init(ctx); err != nil {
		return fmt.Errorf("init db: %w", err)
	}

	set, err := shortcuts.Compile(cfg.Shortcuts)
	if err != nil {
		return fmt.Errorf("compile shortcuts: %w", err)
	}

	// bot
	bot, err := api.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("create bot API: %w", err)
	}
	bot.Debug = cfg.Telegram.Debug

	opts := session.Options{
		Format:        cfg.Formatter(),
		QuickDiscount: cfg.Input.QuickDiscount,
		Logger:        logger.With().Str("component", "session").Logger(),
	}
	registry := commands.NewRegistry(commands.Deps{
		Bot:          bot,
		Storage:      storage,
		Shortcuts:    set,
		Options:      opts,
		ArchiveLimit: cfg.Archive.Limit,
		Log:          logger,
	}, "calc")
	for _, c := range []commands.Command{
		commands.Start(),
		commands.Calc(),
		commands.Total(),
		commands.Clear(),
		commands.Archive(),
		commands.Quick(),
		commands.Undo(),
	} {
		registry.Register(c)
	}

	if _, err := bot.Request(api.NewSetMyCommands(registry.BotCommands()...)); err != nil {
		logger.Warn().Err(err).Msg("set bot commands")
	}

	u := api.NewUpdate(0)
	u.Timeout = cfg.Telegram.Timeout
	updates := bot.GetUpdatesChan(u)

	logger.Info().Str("bot", bot.Self.UserName).Str("db", cfg.Storage.Path).Msg("billpad started")
	deps := registry.Deps()
	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			logger.Info().Msg("billpad stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			switch {
			case update.CallbackQuery != nil:
				commands.HandleCallback(ctx, deps, update.CallbackQuery)
			case update.Message != nil:
				registry.Handle(ctx, update.Message)
			}
		}
	}
}
