package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flatwatch/flatwatch/internal/config"
	historydomain "github.com/flatwatch/flatwatch/internal/history/domain"
	ingestdomain "github.com/flatwatch/flatwatch/internal/ingest/domain"
	offerdomain "github.com/flatwatch/flatwatch/internal/offer/domain"
	subscriberdomain "github.com/flatwatch/flatwatch/internal/subscriber/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Params struct {
	fx.In

	Engine        *gin.Engine
	Log           *zap.Logger
	IngestSvc     ingestdomain.Service
	OfferSvc      offerdomain.Service
	HistorySvc    historydomain.Service
	SubscriberSvc subscriberdomain.Service
}

type Server struct {
	engine        *gin.Engine
	log           *zap.Logger
	ingestSvc     ingestdomain.Service
	offerSvc      offerdomain.Service
	historySvc    historydomain.Service
	subscriberSvc subscriberdomain.Service
}

func NewServer(p Params) *Server {
	return &Server{
		engine:        p.Engine,
		log:           p.Log.Named("server"),
		ingestSvc:     p.IngestSvc,
		offerSvc:      p.OfferSvc,
		historySvc:    p.HistorySvc,
		subscriberSvc: p.SubscriberSvc,
	}
}

func registerRoutes(s *Server) {
	api := s.engine.Group("/api")
	api.PUT("/snapshots/:name/:ts", s.putSnapshot)
	api.GET("/offers", s.getOffers)
	api.GET("/history", s.getHistory)
	api.GET("/updates", s.getUpdates)
	api.POST("/subscribers", s.postSubscriber)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("web server started", zap.String("addr", cfg.HTTPAddr))
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
