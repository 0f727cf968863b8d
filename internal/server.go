package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/notesservice/internal/config"
	"github.com/2beens/notesservice/internal/middleware"
	"github.com/2beens/notesservice/internal/misc"
	notesBox "github.com/2beens/notesservice/internal/notes_box"
	"github.com/2beens/notesservice/internal/telemetry/metrics"
	"github.com/2beens/notesservice/internal/telemetry/tracing"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	listener          net.Listener
	versionInfo       string

	config     *config.Config
	notesStore *notesBox.Store

	// only set when rate limiting of new notes is enabled
	redisClient *redis.Client
	rateLimiter middleware.RequestRateLimiter

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
	// InitialNotes replaces the default seed notes when not nil
	InitialNotes []notesBox.Note
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	if params.Config == nil {
		return nil, errors.New("config not set")
	}

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("notes", "service", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "notes-service")
	if err != nil {
		return nil, fmt.Errorf("tracing setup: %w", err)
	}

	initialNotes := params.InitialNotes
	if initialNotes == nil {
		initialNotes = notesBox.SeedNotes()
	}
	notesStore := notesBox.NewStore(initialNotes...)
	metricsManager.GaugeNotes.Set(float64(notesStore.Len(ctx)))

	s := &Server{
		config:      params.Config,
		notesStore:  notesStore,
		versionInfo: params.VersionInfo,

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	if params.Config.RateLimitEnabled() {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})

		rdbStatus := s.redisClient.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}

		s.rateLimiter = redis_rate.NewLimiter(s.redisClient)
		log.Debugf("new notes rate limit: %d per minute", params.Config.NotesCreateLimitPerMin)
	} else {
		log.Debugln("new notes rate limiting disabled")
	}

	return s, nil
}

// Router returns the complete request pipeline: recovery, logging, metrics,
// CORS, static files, routes and the unknown endpoint fallback.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("notes-router"))

	miscHandler := misc.NewHandler(s.versionInfo)
	miscHandler.SetupRoutes(r)

	var createMiddleware []mux.MiddlewareFunc
	if s.rateLimiter != nil {
		createMiddleware = append(createMiddleware, middleware.RateLimit(
			s.rateLimiter,
			"new-note",
			s.config.NotesCreateLimitPerMin,
			s.metricsManager,
		))
	}

	notesHandler := notesBox.NewHandler(s.notesStore, s.metricsManager)
	notesHandler.SetupRoutes(r, createMiddleware...)

	// outermost first
	chain := []func(http.Handler) http.Handler{
		middleware.PanicRecovery(s.metricsManager),
		middleware.LimitRequestBody(middleware.DefaultMaxRequestBodyBytes),
		middleware.LogRequest(),
		middleware.RequestMetrics(s.metricsManager),
		middleware.Cors(),
		middleware.DrainAndCloseRequest(),
		middleware.Static(s.config.StaticDir),
		middleware.TrimTrailingSlash(),
	}

	var handler http.Handler = r
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler
}

func (s *Server) Serve(host string, port int) error {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	listener, err := net.Listen("tcp", ipAndPort)
	if err != nil {
		return fmt.Errorf("listen on [%s]: %w", ipAndPort, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:      s.Router(),
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", listener.Addr())
		err := s.httpServer.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, serve: %s", err)
		}
	}()

	if s.config.MetricsEnabled {
		metricsRouter := mux.NewRouter()
		metricsRouter.Handle("/metrics", promhttp.HandlerFor(
			s.promRegistry,
			promhttp.HandlerOpts{Registry: s.promRegistry},
		))
		metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
		s.metricsHttpServer = &http.Server{
			Addr:              metricsAddr,
			Handler:           metricsRouter,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			log.Debugf(" > metrics listening on: [%s]", metricsAddr)
			err := s.metricsHttpServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("metrics service, listen and serve: %s", err)
			}
		}()
	}

	s.metricsManager.GaugeLifeSignal.Set(1)
	return nil
}

// Addr is the address the API listens on, available after Serve.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("http server shutdown: %w", shutdownErr))
		} else {
			log.Warnln("server shut down")
		}
	}

	if s.metricsHttpServer != nil {
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("metrics http server shutdown: %w", shutdownErr))
		} else {
			log.Warnln("metrics server shut down")
		}
	}

	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close redis client: %w", closeErr))
		}
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	for _, e := range multierr.Errors(err) {
		log.Errorf(" >>> graceful shutdown: %s", e)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed, http.StateHijacked:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
