package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/dailyscore/internal/chart"
	"github.com/2beens/dailyscore/internal/config"
	"github.com/2beens/dailyscore/internal/csvstore"
	"github.com/2beens/dailyscore/internal/hourslog"
	"github.com/2beens/dailyscore/internal/middleware"
	"github.com/2beens/dailyscore/internal/score"
	"github.com/2beens/dailyscore/internal/telemetry/metrics"
	"github.com/2beens/dailyscore/internal/telemetry/tracing"
	"github.com/2beens/dailyscore/internal/tracker"
	"github.com/2beens/dailyscore/internal/web"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config *config.Config

	redisClient *redis.Client

	tracker  *tracker.Tracker
	session  *tracker.Session
	hours    *hourslog.Service
	renderer *chart.Renderer

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	RedisPassword           string
	HoneycombTracingEnabled bool

	// optional, tests inject these
	Clock        tracker.Clock
	RedisClient  *redis.Client
	PromRegistry *prometheus.Registry
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	promRegistry := params.PromRegistry
	if promRegistry == nil {
		promRegistry = metrics.SetupPrometheus("dailyscore")
	}
	metricsManager := metrics.NewManager("dailyscore", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := params.RedisClient
	if rdb == nil && cfg.RedisHost != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
	}
	if rdb != nil {
		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	} else {
		log.Warnln("redis host not set, write endpoints are not rate limited")
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "dailyscore")
	if err != nil {
		return nil, err
	}
	if params.HoneycombTracingEnabled && rdb != nil {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	clock := params.Clock
	if clock == nil {
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		clock = tracker.NewZoneClock(loc)
	}

	store := csvstore.NewStore()

	activityTracker, err := tracker.New(ctx, tracker.Params{
		Repo:           tracker.NewFileRepo(store, cfg.DailyPath(), cfg.MonthlyPath()),
		Clock:          clock,
		Catalog:        score.DefaultCatalog(),
		Metrics:        metricsManager,
		CutoffHour:     cfg.RolloverHour,
		ChartStartHour: cfg.ChartStartHour,
	})
	if err != nil {
		return nil, fmt.Errorf("new tracker: %w", err)
	}

	hoursService, err := hourslog.NewService(
		ctx,
		hourslog.NewFileRepo(store, cfg.HoursPath()),
		clock,
		metricsManager,
		cfg.PolynomialDegree,
	)
	if err != nil {
		return nil, fmt.Errorf("new hours log service: %w", err)
	}

	return &Server{
		config:      cfg,
		redisClient: rdb,

		tracker:  activityTracker,
		session:  tracker.NewSession(),
		hours:    hoursService,
		renderer: chart.NewRenderer(cfg.ChartCacheSizeMB, cfg.ChartCacheTTLSec, metricsManager),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	var rateLimiter middleware.RequestRateLimiter
	if s.redisClient != nil {
		rateLimiter = redis_rate.NewLimiter(s.redisClient)
	}
	guard := []mux.MiddlewareFunc{
		middleware.RateLimit(rateLimiter, "write", s.config.SubmitRateLimitPerMin, s.metricsManager),
		middleware.SubmitKey(s.config.SubmitKeyHash),
	}

	trackerHandler := tracker.NewHandler(s.tracker, s.session)
	trackerHandler.SetupRoutes(r, guard...)

	hoursHandler := hourslog.NewHandler(s.hours)
	hoursHandler.SetupRoutes(r, guard...)

	chartHandler := chart.NewHandler(s.renderer, s.tracker, s.hours)
	chartHandler.SetupRoutes(r)

	pageHandler, err := web.NewHandler(s.tracker, s.hours, s.session, s.config.SubmitKeyHash != "")
	if err != nil {
		return nil, fmt.Errorf("new page handler: %w", err)
	}
	pageHandler.SetupRoutes(r)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins...))
	r.Use(trackerHandler.RolloverCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

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
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	// in-flight requests are done, a cutoff passed while shutting down is still recorded
	if res, err := s.tracker.Tick(ctx); err != nil {
		log.Errorf("final rollover check: %s", err)
	} else if res != nil {
		log.Infof("rolled over [%s] on shutdown, total %.3f", res.Trigger, res.Total)
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
