package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cinesync/server/internal/controller"
	connInmemory "github.com/cinesync/server/internal/repository/connection/inmemory"
	mediaDisk "github.com/cinesync/server/internal/repository/media/disk"
	registryRedis "github.com/cinesync/server/internal/repository/registry/redis"
	"github.com/cinesync/server/internal/service/room"
	"github.com/cinesync/server/pkg/ctxlogger"
	"github.com/cinesync/server/pkg/redisclient"
)

type AppConfig struct {
	Secret           string `json:"-"`
	Host             string `json:"host"`
	Port             int    `json:"port"`
	LogLevel         string `json:"log_level"`
	MembersLimit     int    `json:"members_limit"`
	DriftToleranceMs int    `json:"drift_tolerance_ms"`
	CodeAttempts     int    `json:"code_attempts"`
	MediaDir         string `json:"media_dir"`
	RedisHost        string `json:"redis_host"`
	RedisPort        int    `json:"redis_port"`
	RedisPassword    string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Secret == "" {
		return fmt.Errorf("secret must be set")
	}
	if cfg.MembersLimit < 1 {
		return fmt.Errorf("members limit must be greater than 0")
	}
	if cfg.DriftToleranceMs < 0 {
		return fmt.Errorf("drift tolerance must not be negative")
	}
	if cfg.CodeAttempts < 1 {
		return fmt.Errorf("code attempts must be greater than 0")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	registryRepo := registryRedis.NewRepo(rc, 24*time.Hour, logger)
	connRepo := connInmemory.NewRepo(logger)
	mediaRepo, err := mediaDisk.NewRepo(cfg.MediaDir, logger)
	if err != nil {
		return fmt.Errorf("failed to create media repo: %w", err)
	}

	roomService := room.NewService(registryRepo, connRepo, mediaRepo, &room.Config{
		Secret:         cfg.Secret,
		MembersLimit:   cfg.MembersLimit,
		DriftTolerance: time.Duration(cfg.DriftToleranceMs) * time.Millisecond,
		CodeAttempts:   cfg.CodeAttempts,
	}, logger)

	controller := controller.NewController(roomService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.Mux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
