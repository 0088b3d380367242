package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"speakersite/internal/api"
	"speakersite/internal/auth"
	"speakersite/internal/booking"
	"speakersite/internal/chat"
	"speakersite/internal/llm"
	"speakersite/internal/redis"
	"speakersite/internal/storage"
	"speakersite/internal/worker"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.BasicConfig.Mode != "" {
		gin.SetMode(cfg.BasicConfig.Mode)
	}
	store := storage.NewStore(db)

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("create redis client: %w", err)
	}
	defer rdb.Close()

	settings, err := llm.Resolve(cfg)
	if err != nil {
		return err
	}
	chatModel, err := llm.NewChatModel(ctx, settings)
	if err != nil {
		return err
	}
	log.WithField("provider", settings.Provider).WithField("model", settings.Model).Info("chat model ready")

	var turns *worker.Dispatcher
	if cfg.Chat.SerializeTurns {
		turns = worker.NewDispatcher(worker.DispatcherConfig{
			Workers:   cfg.Chat.Workers,
			QueueSize: cfg.Chat.QueueSize,
		}, log)
		defer turns.Stop()
	}

	authService := auth.NewService(store, rdb, cfg.Auth, log)
	chatService := chat.NewService(store, chatModel, turns, cfg.Chat, log)
	bookingService := booking.NewService(store, log)
	handler := api.NewHandler(store, authService, chatService, bookingService, api.Options{
		RequireChatAuth: cfg.Chat.RequireAuth,
	}, log)

	addr := cfg.BasicConfig.ServerAddress
	if addr == "" {
		addr = ":8090"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
