package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookhaven-backend/internal/http/response"
	"github.com/yungbote/bookhaven-backend/internal/modules/cart"
	"github.com/yungbote/bookhaven-backend/internal/modules/order"
	"github.com/yungbote/bookhaven-backend/internal/platform/apierr"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
)

type OrderHandler struct {
	log            *logger.Logger
	carts          *cart.Carts
	processor      *order.Processor
	storeName      string
	currencySymbol string
}

func NewOrderHandler(log *logger.Logger, carts *cart.Carts, processor *order.Processor, storeName, currencySymbol string) *OrderHandler {
	return &OrderHandler{
		log:            log.With("handler", "OrderHandler"),
		carts:          carts,
		processor:      processor,
		storeName:      storeName,
		currencySymbol: currencySymbol,
	}
}

// POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	id, ok := requireSession(c)
	if !ok {
		return
	}
	outcome, err := h.processor.ProcessOrder(c.Request.Context(), h.carts.Open(id.String()))
	if err != nil {
		if errors.Is(err, order.ErrStorageFailure) {
			response.RespondAPIError(c, apierr.Unavailable("order_storage_failure", err), "order_failed")
			return
		}
		response.RespondAPIError(c, err, "order_failed")
		return
	}
	response.RespondOK(c, gin.H{
		"outcome":         outcome.Kind,
		"message":         outcome.Message(h.storeName, h.currencySymbol),
		"total":           outcome.Total,
		"total_formatted": outcome.Total.Format(h.currencySymbol),
		"close_cart":      outcome.CloseCart(),
	})
}
