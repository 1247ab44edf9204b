package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/config"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/insight"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/logging"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/router"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/services"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/store"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/survey"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the survey web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	conf := a.conf
	log := a.log

	config.Watch(a.v, log, func(next *config.Config) {
		if err := logging.SetLevel(a.level, next.Logging.Level); err != nil {
			log.Warn("Ignoring invalid log level", zap.String("level", next.Logging.Level), zap.Error(err))
			return
		}
		log.Info("Log level updated", zap.String("level", next.Logging.Level))
	})

	catalogue, err := models.LoadCatalogue(conf.Survey.Catalogue)
	if err != nil {
		return fmt.Errorf("failed to load question catalogue: %w", err)
	}

	responses, err := store.Open(ctx, log, conf.Store)
	if err != nil {
		return err
	}
	defer responses.Close()

	advisor := insight.NewAdvisor(log, newProvider(ctx, log, conf.Insight), conf.Insight.Fallback, conf.Insight.Timeout)

	svc := survey.NewService(ctx, log, responses, advisor)
	svc.Layout = conf.Survey.TimestampLayout
	svc.Location = conf.Survey.Location()
	registry := survey.NewRegistry(svc)

	secret := conf.Server.SessionSecret
	if secret == "" {
		secret, err = utils.GenerateSecureToken(32)
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		log.Warn("No session secret configured, sessions will not survive a restart")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := router.Setup(log, router.Options{
		SessionSecret: secret,
		SecureCookies: conf.Server.SecureCookies,
		AssetsDir:     filepath.Join(a.projectRoot, conf.Server.AssetsDir),
		SessionMaxAge: conf.Survey.SessionTTL,
	}, registry, catalogue)

	srv := &http.Server{
		Addr:              ":" + conf.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening on http://localhost:" + conf.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return services.NewScheduler(log, registry, conf.Survey.SessionTTL, conf.Survey.SweepInterval).Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newProvider builds the Gemini provider, or one that always fails when no
// usable credential is configured so every insight falls back.
func newProvider(ctx context.Context, log *zap.Logger, conf config.InsightConfig) insight.Provider {
	p, err := insight.NewGeminiProvider(ctx, conf.APIKey, conf.Model, conf.Temperature)
	if err != nil {
		log.Warn("Insight provider unavailable, fallback text will be shown", zap.Error(err))
		return insight.Unavailable{Reason: err}
	}
	log.Info("Insight provider ready", zap.String("provider", p.Name()))
	return p
}
