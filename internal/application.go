package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-duel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-duel/internal/config"
	"github.com/rocketscienceinc/tictactoe-duel/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-duel/internal/presenter/termui"
	"github.com/rocketscienceinc/tictactoe-duel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-duel/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-duel/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-duel/transport/rest"
)

var ErrAddrNotFound = errors.New("redis host is empty")

// RunApp - runs the application. It returns the fatal session error, if any.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	sessionRepo, closeRepo, err := newSessionRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	gameMetrics := metrics.New()

	// run HTTP server
	if conf.HTTPPort != "" {
		go func() {
			log.Info("Starting HTTP server", "port", conf.HTTPPort)
			if httpErr := rest.Start(ctx, conf.HTTPPort, gameMetrics.Registry); httpErr != nil {
				log.Error("HTTP server error", "error", httpErr)
			}
		}()
	}

	ui := termui.New(logger, termui.Defaults{
		Port:    conf.DefaultPort,
		Address: conf.DefaultAddress,
	})

	manager := usecase.NewGameManager(logger, ui, sessionRepo, gameMetrics, conf.DialTimeout)
	defer manager.Close()

	ui.RenderStatus(usecase.StatusChooseRole)
	ui.SetRoleSelectionEnabled(true)

	if err = ui.Run(ctx, manager); err != nil {
		return fmt.Errorf("terminal UI error: %w", err)
	}

	manager.Close()

	outcome, err := manager.Wait(context.Background())
	if apperror.IsFatal(err) {
		return fmt.Errorf("session ended: %w", err)
	}

	log.Info("Application finished", "outcome", outcome.String())

	return nil
}

func newSessionRepository(
	ctx context.Context,
	log *slog.Logger,
	conf *config.Config,
) (repository.SessionRepository, func(), error) {
	if !conf.Redis.Enabled {
		return repository.NewMemorySessionRepository(), func() {}, nil
	}

	if conf.Redis.Host == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeRepo := func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewSessionRepository(redisStorage), closeRepo, nil
}
