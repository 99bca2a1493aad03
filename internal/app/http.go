package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookhaven-backend/internal/http"
	httpH "github.com/yungbote/bookhaven-backend/internal/http/handlers"
	httpMW "github.com/yungbote/bookhaven-backend/internal/http/middleware"
	"github.com/yungbote/bookhaven-backend/internal/observability"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
	"github.com/yungbote/bookhaven-backend/internal/realtime"
)

const serviceName = "bookhaven-backend"

type Middleware struct {
	Session *httpMW.SessionMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Cart     *httpH.CartHandler
	Order    *httpH.OrderHandler
	Session  *httpH.SessionHandler
	Realtime *httpH.RealtimeHandler
	Forms    *httpH.FormsHandler
	Catalog  *httpH.CatalogHandler
	Pricing  *httpH.PricingHandler
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Session: httpMW.NewSessionMiddleware(log, services.Sessions, cfg.SessionCookie, cfg.SessionCookieSecure),
	}
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, middleware Middleware, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(services.SessionStore),
		Cart:     httpH.NewCartHandler(log, services.Carts, services.Catalog, cfg.CurrencySymbol),
		Order:    httpH.NewOrderHandler(log, services.Carts, services.Orders, cfg.StoreName, cfg.CurrencySymbol),
		Session:  httpH.NewSessionHandler(services.Sessions, services.Carts, middleware.Session),
		Realtime: httpH.NewRealtimeHandler(log, sseHub),
		Forms:    httpH.NewFormsHandler(services.Forms),
		Catalog:  httpH.NewCatalogHandler(services.Catalog),
		Pricing:  httpH.NewPricingHandler(services.Pricing),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	rc := http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		CORSOrigins:       cfg.CORSAllowOrigins,
		SessionMiddleware: middleware.Session,
		HealthHandler:     handlers.Health,
		CartHandler:       handlers.Cart,
		OrderHandler:      handlers.Order,
		SessionHandler:    handlers.Session,
		RealtimeHandler:   handlers.Realtime,
		FormsHandler:      handlers.Forms,
		CatalogHandler:    handlers.Catalog,
		PricingHandler:    handlers.Pricing,
	}
	if observability.OtelEnabled() {
		rc.ServiceName = serviceName
	}
	return http.NewRouter(rc)
}
