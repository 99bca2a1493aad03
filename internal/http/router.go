package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/bookhaven-backend/internal/http/handlers"
	httpMW "github.com/yungbote/bookhaven-backend/internal/http/middleware"
	"github.com/yungbote/bookhaven-backend/internal/observability"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	// ServiceName enables otelgin spans when set.
	ServiceName string
	CORSOrigins []string

	SessionMiddleware *httpMW.SessionMiddleware

	HealthHandler   *httpH.HealthHandler
	CartHandler     *httpH.CartHandler
	OrderHandler    *httpH.OrderHandler
	SessionHandler  *httpH.SessionHandler
	RealtimeHandler *httpH.RealtimeHandler
	FormsHandler    *httpH.FormsHandler
	CatalogHandler  *httpH.CatalogHandler
	PricingHandler  *httpH.PricingHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Catalog, discounts and forms need no session.
		if cfg.CatalogHandler != nil {
			api.GET("/books", cfg.CatalogHandler.List)
			api.GET("/books/:id", cfg.CatalogHandler.Get)
		}
		if cfg.PricingHandler != nil {
			api.GET("/discount/quote", cfg.PricingHandler.Quote)
		}
		if cfg.FormsHandler != nil {
			api.POST("/subscribe", cfg.FormsHandler.Subscribe)
			api.POST("/contact", cfg.FormsHandler.Contact)
		}
	}

	session := api.Group("/")
	{
		// Middleware
		if cfg.SessionMiddleware != nil {
			session.Use(cfg.SessionMiddleware.Attach())
		}

		// Session
		if cfg.SessionHandler != nil {
			session.GET("/session", cfg.SessionHandler.Get)
			session.DELETE("/session", cfg.SessionHandler.End)
		}

		// Cart
		if cfg.CartHandler != nil {
			session.GET("/cart", cfg.CartHandler.GetCart)
			session.GET("/cart/count", cfg.CartHandler.Count)
			session.POST("/cart/items", cfg.CartHandler.AddItem)
			session.DELETE("/cart/items/:id", cfg.CartHandler.RemoveItem)
			session.POST("/cart/clear", cfg.CartHandler.Clear)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			session.GET("/cart/events", cfg.RealtimeHandler.CartEvents)
		}

		// Orders
		if cfg.OrderHandler != nil {
			session.POST("/orders", cfg.OrderHandler.Create)
		}
	}

	return r
}
