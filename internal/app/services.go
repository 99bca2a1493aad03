package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/bookhaven-backend/internal/modules/cart"
	"github.com/yungbote/bookhaven-backend/internal/modules/order"
	"github.com/yungbote/bookhaven-backend/internal/observability"
	"github.com/yungbote/bookhaven-backend/internal/platform/keymutex"
	"github.com/yungbote/bookhaven-backend/internal/platform/kvstore"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
	"github.com/yungbote/bookhaven-backend/internal/realtime/bus"
	"github.com/yungbote/bookhaven-backend/internal/services"
)

type Services struct {
	// Session-scoped storage
	SessionStore kvstore.Store
	memoryStore  *kvstore.MemoryStore

	// Cart + order
	Carts  *cart.Carts
	Orders *order.Processor

	Sessions services.SessionService
	Forms    services.FormsService
	Catalog  services.CatalogService
	Pricing  services.PricingService

	// Cart refresh notifications
	SSEBus bus.Bus
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	var out Services
	switch strings.ToLower(cfg.SessionBackend) {
	case "", SessionBackendMemory:
		out.memoryStore = kvstore.NewMemoryStore(cfg.SessionTTL)
		out.SessionStore = out.memoryStore
	case SessionBackendRedis:
		if clients.Redis == nil {
			return Services{}, fmt.Errorf("SESSION_BACKEND=redis requires REDIS_ADDR")
		}
		out.SessionStore = kvstore.NewRedisStore(clients.Redis, cfg.SessionTTL)
	default:
		return Services{}, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
	log.Info("session storage ready", "backend", cfg.SessionBackend, "ttl", cfg.SessionTTL.String())

	if clients.Redis != nil {
		b, err := bus.NewRedisBus(log, clients.Redis, cfg.RedisChannel)
		if err != nil {
			return Services{}, fmt.Errorf("init redis cart bus: %w", err)
		}
		out.SSEBus = b
	} else {
		out.SSEBus = bus.NewMemoryBus(log)
	}

	out.Carts = cart.NewCarts(cart.Deps{
		Log:                   log,
		Backend:               out.SessionStore,
		Locks:                 keymutex.New(),
		Notifier:              services.NewCartNotifier(log, out.SSEBus, metrics),
		Metrics:               metrics,
		ResetOrderFlagOnClear: cfg.ResetOrderFlagOnClear,
	})
	out.Orders = order.NewProcessor(order.Deps{Log: log, Metrics: metrics})
	out.Sessions = services.NewSessionService(log, out.Carts, cfg.SessionSecret, cfg.SessionMaxAge, metrics)
	var contactNotifier services.ContactNotifier
	if clients.Mail != nil && len(cfg.ContactNotifyEmails) > 0 {
		contactNotifier = services.NewContactMailer(log, clients.Mail, cfg.ContactNotifyEmails, cfg.StoreName)
	}
	out.Forms = services.NewFormsService(log, repos.Subscriber, repos.ContactSubmission, contactNotifier, metrics)
	out.Pricing = services.NewPricingService(cfg.CurrencySymbol)

	catalog, err := services.NewCatalogService(log, cfg.CatalogPath)
	if err != nil {
		return Services{}, err
	}
	out.Catalog = catalog

	return out, nil
}
