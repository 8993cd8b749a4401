package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/madkingbot/officialgames/internal/api"
	"github.com/madkingbot/officialgames/internal/config"
	"github.com/madkingbot/officialgames/internal/dependencies/clock"
	"github.com/madkingbot/officialgames/internal/dependencies/random"
	"github.com/madkingbot/officialgames/internal/games"
	"github.com/madkingbot/officialgames/internal/games/bst"
	"github.com/madkingbot/officialgames/internal/host"
	"github.com/madkingbot/officialgames/internal/model"
	"github.com/madkingbot/officialgames/internal/platform/telegram"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")

	return cmd
}

func run(configPath string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return err
	}
	logger.Info("bot authorized", slog.String("username", bot.Self.UserName))

	ch := telegram.NewChannel(bot, cfg.Telegram.ChannelID, logger)

	gameHost := host.New(host.Config{
		BotID:        model.UserID(bot.Self.ID),
		Channel:      ch,
		Clock:        clock.New(),
		Random:       random.New(),
		Logger:       logger,
		VotesToStart: cfg.Games.VotesToStart,
		Constructors: map[model.GameKind]games.Constructor{
			// The counting game starts with the configured record to beat
			model.KindBloodSweatTears: func(deps games.Deps) games.Session {
				return bst.NewWithRecord(deps, cfg.Games.BSTRecord)
			},
		},
	})

	gateway := telegram.NewGateway(telegram.GatewayConfig{
		Bot:           bot,
		ChatID:        cfg.Telegram.ChannelID,
		UpdateTimeout: cfg.Telegram.UpdateTimeout,
		Host:          gameHost,
		Logger:        logger,
	})
	// The vote menu renders as an inline keyboard on the gateway's chat
	gameHost.SetPromptVote(gateway.PromptVote)

	router := api.NewRouter(api.RouterConfig{
		Logger: logger,
		Host:   gameHost,
	})
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.HTTP.Host
	serverConfig.Port = cfg.HTTP.Port
	server := api.NewServer(router, serverConfig, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Start()
	}()
	go func() {
		errCh <- gateway.Run(ctx)
	}()

	logger.Info("bot started", slog.String("ops_addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			logger.Error("runtime error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
	}

	if err := gameHost.Stop(context.Background()); err != nil {
		logger.Warn("stopping active game", slog.String("error", err.Error()))
	}
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("bot stopped")
	return nil
}
