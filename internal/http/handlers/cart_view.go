package handlers

import (
	"github.com/yungbote/bookhaven-backend/internal/domain/storefront"
	"github.com/yungbote/bookhaven-backend/internal/modules/cart"
)

type cartItemView struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Author             string           `json:"author"`
	Price              storefront.Money `json:"price"`
	PriceFormatted     string           `json:"price_formatted"`
	Quantity           int              `json:"quantity"`
	Image              string           `json:"image"`
	LineTotal          storefront.Money `json:"line_total"`
	LineTotalFormatted string           `json:"line_total_formatted"`
}

type cartView struct {
	Items          []cartItemView   `json:"items"`
	Count          int              `json:"count"`
	Total          storefront.Money `json:"total"`
	TotalFormatted string           `json:"total_formatted"`
}

func newCartItemView(li storefront.LineItem, symbol string) cartItemView {
	return cartItemView{
		ID:                 li.ID,
		Title:              li.Title,
		Author:             li.Author,
		Price:              li.Price,
		PriceFormatted:     li.Price.Format(symbol),
		Quantity:           li.EffectiveQuantity(),
		Image:              li.DisplayImage(),
		LineTotal:          li.LineTotal(),
		LineTotalFormatted: li.LineTotal().Format(symbol),
	}
}

func newCartView(snap cart.Snapshot, symbol string) cartView {
	items := make([]cartItemView, 0, len(snap.Items))
	for _, li := range snap.Items {
		items = append(items, newCartItemView(li, symbol))
	}
	return cartView{
		Items:          items,
		Count:          snap.Count,
		Total:          snap.Total,
		TotalFormatted: snap.Total.Format(symbol),
	}
}
