package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/bookhaven-backend/internal/domain/storefront"
)

// MaxQuoteQuantity caps the quantity a quote is computed for.
const MaxQuoteQuantity = 9999

type DiscountQuote struct {
	UnitPrice      storefront.Money `json:"unit_price"`
	Quantity       int              `json:"quantity"`
	MembershipPct  int              `json:"membership_percent"`
	BulkPct        int              `json:"bulk_percent"`
	TotalPct       int              `json:"total_percent"`
	Subtotal       storefront.Money `json:"subtotal"`
	Savings        storefront.Money `json:"savings"`
	Final          storefront.Money `json:"final"`
	FinalFormatted string           `json:"final_formatted"`
	Message        string           `json:"message"`
}

type PricingService interface {
	// Quote accepts the raw form values; unparseable input falls back to
	// price 0, quantity 1, membership 0.
	Quote(price, quantity, membership string) DiscountQuote
}

type pricingService struct {
	currencySymbol string
}

func NewPricingService(currencySymbol string) PricingService {
	return &pricingService{currencySymbol: currencySymbol}
}

func (p *pricingService) Quote(price, quantity, membership string) DiscountQuote {
	q := DiscountQuote{
		UnitPrice:     storefront.ParseMoney(price),
		Quantity:      clampInt(leadingInt(quantity, 1), 1, MaxQuoteQuantity),
		MembershipPct: clampInt(leadingInt(membership, 0), 0, 100),
	}
	switch {
	case q.Quantity >= 10:
		q.BulkPct = 10
	case q.Quantity >= 5:
		q.BulkPct = 5
	}
	q.TotalPct = q.MembershipPct + q.BulkPct
	if q.TotalPct > 100 {
		q.TotalPct = 100
	}

	q.Subtotal = q.UnitPrice.Mul(q.Quantity)
	q.Savings = q.Subtotal.Percent(q.TotalPct)
	q.Final = q.Subtotal.Sub(q.Savings)
	q.FinalFormatted = q.Final.Format(p.currencySymbol)
	if q.TotalPct > 0 {
		q.Message = fmt.Sprintf("You save %s (%d%% off!)", q.Savings.Format(p.currencySymbol), q.TotalPct)
	} else {
		q.Message = "Add more items or upgrade membership for discounts!"
	}
	return q
}

// leadingInt reads an integer prefix ("12abc" is 12), else def.
func leadingInt(raw string, def int) int {
	s := strings.TrimSpace(raw)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return def
	}
	return n
}

func clampInt(n, lo, hi int) int {
	switch {
	case n < lo:
		return lo
	case n > hi:
		return hi
	default:
		return n
	}
}
