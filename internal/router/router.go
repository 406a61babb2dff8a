package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/reservly/booking-api/internal/middleware"
	"github.com/reservly/booking-api/pkg/auth"
	"github.com/reservly/booking-api/pkg/logger"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitEnabled  bool
	RequestsPerSecond float64
	Burst             int
	RequestTimeout    time.Duration
	CORS              middleware.CORSConfig
	MetricsEnabled    bool
	MetricsPath       string
}

// Router owns the gin engine and the middleware stack. Health and metrics
// stay outside authentication; the booking surface is public, the admin
// surfaces sit behind the bearer token.
type Router struct {
	engine   *gin.Engine
	healthH  Handler
	clinicH  Handler
	bookingH Handler
	shiftH   Handler
	verifier *auth.TokenVerifier
	config   Config
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func New(
	log *logger.Logger,
	verifier *auth.TokenVerifier,
	healthH Handler,
	clinicH Handler,
	bookingH Handler,
	shiftH Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:   engine,
		healthH:  healthH,
		clinicH:  clinicH,
		bookingH: bookingH,
		shiftH:   shiftH,
		verifier: verifier,
		config:   config,
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.ErrorHandler(log),
		middleware.CORS(config.CORS),
	)

	if config.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(config.RequestTimeout))
	}

	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(config.RequestsPerSecond),
			Burst: config.Burst,
		})
		engine.Use(limiter.RateLimit())
	}

	if config.MetricsEnabled {
		r.metrics = newRouterMetrics()
		engine.Use(r.metricsMiddleware())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.healthH.RegisterRoutes(api)

	if r.config.MetricsEnabled {
		path := r.config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	// Booking surface serves end users directly.
	r.bookingH.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.Auth(r.verifier))
	r.clinicH.RegisterRoutes(protected)
	r.shiftH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func newRouterMetrics() *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
