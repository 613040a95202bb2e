package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/arledger/internal/archive"
	archivedomain "github.com/smallbiznis/arledger/internal/archive/domain"
	"github.com/smallbiznis/arledger/internal/config"
	"github.com/smallbiznis/arledger/internal/customer"
	customerdomain "github.com/smallbiznis/arledger/internal/customer/domain"
	"github.com/smallbiznis/arledger/internal/invoicing"
	invoicingdomain "github.com/smallbiznis/arledger/internal/invoicing/domain"
	"github.com/smallbiznis/arledger/internal/providers"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	config.Module,
	providers.Module,
	archive.Module,
	customer.Module,
	invoicing.Module,
	fx.Provide(func() *prometheus.Registry {
		return prometheus.NewRegistry()
	}),
	fx.Provide(NewMetrics),
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *Metrics, registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(metrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, metrics *Metrics, registry *prometheus.Registry) *gin.Engine {
	return NewEngine(log, metrics, registry)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	log          *zap.Logger
	invoicingSvc invoicingdomain.Service
	archiveSvc   archivedomain.Store
	customerSvc  customerdomain.Service
	metrics      *Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	InvoicingSvc invoicingdomain.Service
	ArchiveSvc   archivedomain.Store
	CustomerSvc  customerdomain.Service
	Metrics      *Metrics
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("http.server"),
		invoicingSvc: p.InvoicingSvc,
		archiveSvc:   p.ArchiveSvc,
		customerSvc:  p.CustomerSvc,
		metrics:      p.Metrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- Customers --------
	v1.GET("/customers", s.ListCustomers)
	v1.GET("/customers/:id", s.GetCustomer)
	v1.POST("/customers", s.CreateCustomer)

	// -------- Invoices --------
	v1.POST("/invoices/generate", s.GenerateInvoices)
	v1.POST("/invoices/compute", s.ComputeInvoices)
	v1.GET("/invoices/documents/:key", s.GetInvoiceDocument)

	// -------- Timesheets --------
	v1.POST("/timesheets/validate", s.ValidateTimesheet)
}
