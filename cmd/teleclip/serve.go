package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/teleclip/teleclip/internal/blob"
	"github.com/teleclip/teleclip/internal/config"
	"github.com/teleclip/teleclip/internal/db"
	"github.com/teleclip/teleclip/internal/handlers"
	"github.com/teleclip/teleclip/internal/ingest"
	"github.com/teleclip/teleclip/internal/logger"
	"github.com/teleclip/teleclip/internal/server"
	"github.com/teleclip/teleclip/internal/storage"
	"github.com/teleclip/teleclip/internal/thumbnail"
	"github.com/teleclip/teleclip/internal/version"
	"github.com/teleclip/teleclip/internal/video"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot listener and the read API",
		RunE: func(cmd *cobra.Command, args []string) error {
			runApp(*configPath)
			return nil
		},
	}
}

func runApp(configPath string) {
	fx.New(
		fx.Provide(
			func() (config.Config, error) { return provideConfig(configPath) },
			provideLogger,

			provideDBConn,
			provideStorageProvider,
			provideBot,

			blob.NewService,
			video.NewService,

			provideResolver,
			provideAnnouncer,
			provideIngestHandler,
			ingest.NewRunner,

			provideServerHandler(provideStatusHandler),
			provideServerHandler(provideVideosHandler),
			provideServerHandler(provideThumbnailHandler),
			provideServer,
		),
		fx.Invoke(
			startRunner,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			l := &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
			return l
		}),
	).Run()
}

func provideConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.Telegram.BotToken == "" {
		return config.Config{}, fmt.Errorf("telegram bot token is required (telegram.bot_token or TELEGRAM_BOT_TOKEN)")
	}
	if cfg.Telegram.Channel == "" {
		return config.Config{}, fmt.Errorf("target channel is required (telegram.channel or CHANNEL_ID)")
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

func provideStorageProvider(cfg config.Config) (storage.Provider, error) {
	switch cfg.Storage.Backend {
	case "", "local":
		return storage.NewLocal(cfg.Storage.Local.Root)
	case "s3":
		return storage.NewS3(context.Background(), cfg.Storage.S3.Bucket, cfg.Storage.S3.Region)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

func provideBot(cfg config.Config) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return bot, nil
}

func provideResolver(log *slog.Logger, bot *tgbotapi.BotAPI) *thumbnail.Resolver {
	return thumbnail.NewResolver(log, thumbnail.NewBotFetcher(bot), thumbnail.NewFFmpeg())
}

func provideAnnouncer(cfg config.Config, bot *tgbotapi.BotAPI) *ingest.ChannelAnnouncer {
	return ingest.NewChannelAnnouncer(bot, cfg.Telegram.Channel)
}

func provideIngestHandler(
	log *slog.Logger,
	cfg config.Config,
	resolver *thumbnail.Resolver,
	blobs *blob.Service,
	videos *video.Service,
	announcer *ingest.ChannelAnnouncer,
) (*ingest.Handler, error) {
	return ingest.NewHandler(log, cfg.Telegram.Channel, cfg.Telegram.Announce, resolver, blobs, videos, announcer)
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideStatusHandler(log *slog.Logger, videos *video.Service) *handlers.StatusHandler {
	return handlers.NewStatusHandler(log, videos)
}

func provideVideosHandler(log *slog.Logger, cfg config.Config, videos *video.Service) *handlers.VideosHandler {
	return handlers.NewVideosHandler(log, videos, cfg.API.BaseURL)
}

func provideThumbnailHandler(log *slog.Logger, blobs *blob.Service) *handlers.ThumbnailHandler {
	return handlers.NewThumbnailHandler(log, blobs)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.ServerHandlers...)
}

func startRunner(lc fx.Lifecycle, runner *ingest.Runner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			runner.Start(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			runner.Stop()
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting teleclip %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil { // block until server is stopped
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown() // shutdown the application if the server fails to start
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// graceful shutdown
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
