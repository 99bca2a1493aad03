package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookhaven-backend/internal/http/response"
	"github.com/yungbote/bookhaven-backend/internal/services"
)

type PricingHandler struct {
	pricing services.PricingService
}

func NewPricingHandler(pricing services.PricingService) *PricingHandler {
	return &PricingHandler{pricing: pricing}
}

// GET /api/discount/quote?price=&quantity=&membership=
func (h *PricingHandler) Quote(c *gin.Context) {
	response.RespondOK(c, h.pricing.Quote(c.Query("price"), c.Query("quantity"), c.Query("membership")))
}
