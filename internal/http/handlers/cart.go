package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookhaven-backend/internal/domain/storefront"
	"github.com/yungbote/bookhaven-backend/internal/http/response"
	"github.com/yungbote/bookhaven-backend/internal/modules/cart"
	"github.com/yungbote/bookhaven-backend/internal/platform/apierr"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
	"github.com/yungbote/bookhaven-backend/internal/services"
)

const (
	unknownTitle  = "Unknown Book"
	unknownAuthor = "Unknown Author"

	msgCartCleared     = "Your cart has been cleared."
	msgCartNotCleared  = "We couldn't clear your cart. Please try again."
	msgItemNotAddedFmt = `Sorry, "%s" couldn't be added to your cart. Please try again.`
)

type CartHandler struct {
	log            *logger.Logger
	carts          *cart.Carts
	catalog        services.CatalogService
	currencySymbol string
}

func NewCartHandler(log *logger.Logger, carts *cart.Carts, catalog services.CatalogService, currencySymbol string) *CartHandler {
	return &CartHandler{
		log:            log.With("handler", "CartHandler"),
		carts:          carts,
		catalog:        catalog,
		currencySymbol: currencySymbol,
	}
}

func (h *CartHandler) store(c *gin.Context) (*cart.Store, bool) {
	id, ok := requireSession(c)
	if !ok {
		return nil, false
	}
	return h.carts.Open(id.String()), true
}

// GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	response.RespondOK(c, newCartView(store.Snapshot(c.Request.Context()), h.currencySymbol))
}

// GET /api/cart/count
func (h *CartHandler) Count(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"count": store.TotalCount(c.Request.Context())})
}

// POST /api/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	// LineItem decoding is lenient about ids, prices and quantities.
	var body storefront.LineItem
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	item := h.resolveItem(body)

	added, saved, err := store.AddItem(c.Request.Context(), item)
	if err != nil {
		if errors.Is(err, cart.ErrItemIDRequired) {
			response.RespondAPIError(c, apierr.BadRequest("item_id_required", err), "add_item_failed")
			return
		}
		response.RespondAPIError(c, err, "add_item_failed")
		return
	}
	message := `"` + added.Title + `" has been added to your cart!`
	if !saved {
		message = fmt.Sprintf(msgItemNotAddedFmt, added.Title)
	}
	response.RespondOK(c, gin.H{
		"item":    newCartItemView(added, h.currencySymbol),
		"added":   saved,
		"message": message,
		"cart":    newCartView(store.Snapshot(c.Request.Context()), h.currencySymbol),
	})
}

// resolveItem prefers the catalog's record for a known id and fills the
// display defaults for anything else.
func (h *CartHandler) resolveItem(body storefront.LineItem) storefront.NewItem {
	item := storefront.NewItem{
		ID:     strings.TrimSpace(body.ID),
		Title:  strings.TrimSpace(body.Title),
		Author: strings.TrimSpace(body.Author),
		Price:  body.Price,
		Image:  strings.TrimSpace(body.Image),
	}
	if h.catalog != nil && item.ID != "" {
		if book, ok := h.catalog.Get(item.ID); ok {
			item = book.AsNewItem()
		}
	}
	if item.Title == "" {
		item.Title = unknownTitle
	}
	if item.Author == "" {
		item.Author = unknownAuthor
	}
	return item
}

// DELETE /api/cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	store.RemoveItem(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	response.RespondOK(c, newCartView(store.Snapshot(c.Request.Context()), h.currencySymbol))
}

type clearCartRequest struct {
	Confirm bool `json:"confirm"`
}

// POST /api/cart/clear
func (h *CartHandler) Clear(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	var req clearCartRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	confirmed, saved := store.ClearCart(c.Request.Context(), cart.Confirmed(req.Confirm))
	payload := gin.H{
		"cleared": confirmed && saved,
		"cart":    newCartView(store.Snapshot(c.Request.Context()), h.currencySymbol),
	}
	switch {
	case confirmed && saved:
		payload["message"] = msgCartCleared
	case confirmed:
		payload["message"] = msgCartNotCleared
	}
	response.RespondOK(c, payload)
}
