package storefront

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// PlaceholderImage is shown for line items that carry no image.
const PlaceholderImage = "images/placeholder-book.jpg"

// LineItem is one distinct product in the cart. ID is the merge key; the
// other descriptive fields are whatever the first add supplied.
type LineItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Price    Money  `json:"price"`
	Quantity int    `json:"quantity"`
	Image    string `json:"image"`
}

// NewItem is a LineItem as supplied on add, before it has a quantity.
type NewItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Price  Money  `json:"price"`
	Image  string `json:"image"`
}

func (li LineItem) LineTotal() Money {
	return li.Price.Mul(li.EffectiveQuantity())
}

// EffectiveQuantity treats a missing or invalid quantity as 1.
func (li LineItem) EffectiveQuantity() int {
	if li.Quantity < 1 {
		return 1
	}
	return li.Quantity
}

func (li LineItem) DisplayImage() string {
	if strings.TrimSpace(li.Image) == "" {
		return PlaceholderImage
	}
	return li.Image
}

type lineItemWire struct {
	ID       json.RawMessage `json:"id"`
	Title    string          `json:"title"`
	Author   string          `json:"author"`
	Price    Money           `json:"price"`
	Quantity json.RawMessage `json:"quantity"`
	Image    string          `json:"image"`
}

// UnmarshalJSON coerces rather than rejects: quantity defaults to 1 when
// absent or unparseable, price to 0. Numeric ids are kept as their text.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	var w lineItemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*li = LineItem{
		ID:       rawToString(w.ID),
		Title:    w.Title,
		Author:   w.Author,
		Price:    w.Price,
		Quantity: coerceQuantity(w.Quantity),
		Image:    w.Image,
	}
	return nil
}

func coerceQuantity(raw json.RawMessage) int {
	s := rawToString(raw)
	if s == "" {
		return 1
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 1 {
		return 1
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func rawToString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}
