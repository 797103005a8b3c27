package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/wayfare-app/wayfare/internal/infrastructure/auth"
	"github.com/wayfare-app/wayfare/internal/infrastructure/configs"
	"github.com/wayfare-app/wayfare/internal/infrastructure/metrics"
	"github.com/wayfare-app/wayfare/internal/infrastructure/ratelimiter"
	chatHandler "github.com/wayfare-app/wayfare/internal/presentation/handler/chat"
	groupsHandler "github.com/wayfare-app/wayfare/internal/presentation/handler/groups"
	healthHandler "github.com/wayfare-app/wayfare/internal/presentation/handler/health"
)

type Application struct {
	config        configs.Config
	groupsHandler *groupsHandler.Handler
	chatHandler   *chatHandler.Handler
	healthHandler *healthHandler.Handler
	verifier      auth.Verifier
	metrics       *metrics.Metrics
	logger        *zap.SugaredLogger
	ratelimiter   ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	groupsHandler *groupsHandler.Handler,
	chatHandler *chatHandler.Handler,
	healthHandler *healthHandler.Handler,
	verifier auth.Verifier,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:        config,
		groupsHandler: groupsHandler,
		chatHandler:   chatHandler,
		healthHandler: healthHandler,
		verifier:      verifier,
		metrics:       m,
		logger:        logger,
		ratelimiter:   ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)
	r.Use(app.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/groups", func(r chi.Router) {
			// Websocket auth travels in the query string, so the chat
			// route stays outside the bearer-token group.
			r.Get("/{groupID}/chat", app.chatHandler.ConnectHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.requireAuth)

				r.Get("/{groupID}/members", app.groupsHandler.ListMembersHandler)
				r.Get("/{groupID}/messages", app.groupsHandler.ListMessagesHandler)

				r.Post("/{groupID}/join-requests", app.groupsHandler.CreateJoinRequestHandler)
				r.Get("/{groupID}/join-requests", app.groupsHandler.ListPendingRequestsHandler)
				r.Post("/{groupID}/join-requests/{requestID}/approve", app.groupsHandler.ApproveJoinRequestHandler)
				r.Post("/{groupID}/join-requests/{requestID}/reject", app.groupsHandler.RejectJoinRequestHandler)
			})
		})

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return otelhttp.NewHandler(r, "wayfare.http")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", srv.Addr)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", srv.Addr)

	return nil
}
