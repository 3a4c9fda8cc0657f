package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	apicontract "github.com/tuanvumaihuynh/lfs/api-contract"
	"github.com/tuanvumaihuynh/lfs/internal/config"
	"github.com/tuanvumaihuynh/lfs/internal/http/apierr"
	"github.com/tuanvumaihuynh/lfs/internal/http/middleware"
	"github.com/tuanvumaihuynh/lfs/internal/http/swagger"
	"github.com/tuanvumaihuynh/lfs/internal/metric"
	"github.com/tuanvumaihuynh/lfs/internal/service"
	"github.com/tuanvumaihuynh/lfs/internal/storage/db"
	"github.com/tuanvumaihuynh/lfs/pkg/validator"
	"github.com/tuanvumaihuynh/lfs/pkg/zerror"
)

var tracer = otel.Tracer("internal/http")

// Services are the application services exposed over HTTP.
type Services struct {
	Auth          service.AuthService
	Catalog       service.CatalogService
	CatalogManage service.CatalogManageService
	Cart          service.CartService
	Checkout      service.CheckoutService
	Order         service.OrderService
	Customer      service.CustomerService
	Method        service.MethodService
	Discount      service.DiscountService
	Voucher       service.VoucherService
	Marketing     service.MarketingService
	Export        service.ExportService
	Portlet       service.PortletService
	PayPal        service.PayPalService

	// Health is optional. Without it /healthz always reports ok.
	Health db.HealthChecker
}

// Service represents the HTTP service.
type Service struct {
	cfg       config.HTTP
	rateCfg   config.RateLimit
	logger    *slog.Logger
	metrics   *metric.Metrics
	validator validator.Validator

	svcs Services
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	rateCfg config.RateLimit,
	log *slog.Logger,
	metrics *metric.Metrics,
	svcs Services,
) (*Service, error) {
	v, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("new validator: %w", err)
	}

	return &Service{
		cfg:       cfg,
		rateCfg:   rateCfg,
		logger:    log.With(slog.String("service", "http")),
		metrics:   metrics,
		validator: v,
		svcs:      svcs,
	}, nil
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handler, err := s.Handler()
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, handler)
}

// Handler builds the router with all middlewares and routes.
func (s *Service) Handler() (http.Handler, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	r.Get("/healthz", s.handle(s.healthz))
	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))

	var apiMiddlewares []func(http.Handler) http.Handler
	if s.cfg.ValidateRequests {
		doc, err := middleware.LoadOpenAPI(apicontract.Spec())
		if err != nil {
			return nil, err
		}
		validate, err := middleware.OpenAPIValidator(doc)
		if err != nil {
			return nil, err
		}
		apiMiddlewares = append(apiMiddlewares, validate)
	}

	r.Group(func(r chi.Router) {
		r.Use(apiMiddlewares...)
		s.RegisterHandlers(r)
	})

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       s.cfg.IdleTimeout,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped", slog.Any("error", err))
		}
	}()

	s.logger.InfoContext(ctx, "http server listening", slog.String("addr", srv.Addr))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	limit := middleware.RateLimit(middleware.NewRateLimiter(s.rateCfg))

	newCatalogHandler(s).routes(r)
	newCartHandler(s).routes(r, limit)
	newPayPalHandler(s).routes(r, limit)

	r.Route("/manage", func(r chi.Router) {
		newAuthHandler(s).routes(r, limit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(s.svcs.Auth))

			newManageCatalogHandler(s).routes(r)
			newManageMethodHandler(s).routes(r)
			newManageDiscountHandler(s).routes(r)
			newManageOrderHandler(s).routes(r)
			newManageMarketingHandler(s).routes(r)
		})
	})
}

func (s *Service) healthz(w http.ResponseWriter, r *http.Request) error {
	status := http.StatusOK
	body := map[string]string{"status": "ok"}

	if s.svcs.Health != nil {
		healthy, err := s.svcs.Health.IsHealthy(r.Context())
		if err != nil || !healthy {
			s.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
		}
	}

	return writeJSON(w, status, body)
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error",
		slog.Any("error", err),
		slog.String("error_status", zerror.StatusOf(err).String()),
	)

	apierr.Write(w, err)
}
