package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cartdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/cart/domain"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/config"
	obstracing "github.com/Tijo-11/Vector-Ecom-sub001/internal/observability/tracing"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/adapters"
	paymentdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/ratelimit"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, tp trace.TracerProvider) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(obstracing.GinMiddleware(tp))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	starter        paymentdomain.Starter
	minter         cartdomain.IdentityMinter
	registry       *adapters.Registry
	adapterCfgs    map[string]paymentdomain.AdapterConfig
	webhookLimiter *ratelimit.WebhookLimiter
}

type Params struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	Starter        paymentdomain.Starter
	Minter         cartdomain.IdentityMinter
	Registry       *adapters.Registry
	AdapterCfgs    map[string]paymentdomain.AdapterConfig
	WebhookLimiter *ratelimit.WebhookLimiter `optional:"true"`
}

func NewServer(p Params) *Server {
	return &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		starter:        p.Starter,
		minter:         p.Minter,
		registry:       p.Registry,
		adapterCfgs:    p.AdapterCfgs,
		webhookLimiter: p.WebhookLimiter,
	}
}

func registerRoutes(s *Server) {
	v1 := s.engine.Group("/v1")
	v1.POST("/orders/:order_id/reconcile", s.HandleReconcile)
	v1.POST("/webhooks/payments/:provider", s.HandlePaymentWebhook)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
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
