package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookhaven-backend/internal/data/repos"
	"github.com/yungbote/bookhaven-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/bookhaven-backend/internal/http/handlers"
	httpMW "github.com/yungbote/bookhaven-backend/internal/http/middleware"
	"github.com/yungbote/bookhaven-backend/internal/modules/cart"
	"github.com/yungbote/bookhaven-backend/internal/modules/order"
	"github.com/yungbote/bookhaven-backend/internal/platform/kvstore"
	"github.com/yungbote/bookhaven-backend/internal/platform/kvstore/kvtest"
	"github.com/yungbote/bookhaven-backend/internal/platform/logger"
	"github.com/yungbote/bookhaven-backend/internal/realtime"
	"github.com/yungbote/bookhaven-backend/internal/services"
)

// testBrowser replays the session cookie the way a browser tab would.
type testBrowser struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func newTestBrowser(t *testing.T) *testBrowser {
	t.Helper()
	return newTestBrowserWith(t, kvstore.NewMemoryStore(time.Hour))
}

func newTestBrowserWith(t *testing.T, backend kvstore.Store) *testBrowser {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()

	carts := cart.NewCarts(cart.Deps{Log: log, Backend: backend})
	sessions := services.NewSessionService(log, carts, "router-test-secret", time.Hour, nil)
	catalog, err := services.NewCatalogService(log, "")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	db := testutil.DB(t)
	forms := services.NewFormsService(log, repos.NewSubscriberRepo(db, log), repos.NewContactSubmissionRepo(db, log), nil, nil)
	sessionMW := httpMW.NewSessionMiddleware(log, sessions, "", false)

	router := NewRouter(RouterConfig{
		Log:               log,
		SessionMiddleware: sessionMW,
		HealthHandler:     httpH.NewHealthHandler(backend),
		CartHandler:       httpH.NewCartHandler(log, carts, catalog, "$"),
		OrderHandler:      httpH.NewOrderHandler(log, carts, order.NewProcessor(order.Deps{Log: log}), "Book Haven", "$"),
		SessionHandler:    httpH.NewSessionHandler(sessions, carts, sessionMW),
		RealtimeHandler:   httpH.NewRealtimeHandler(log, realtime.NewSSEHub(log)),
		FormsHandler:      httpH.NewFormsHandler(forms),
		CatalogHandler:    httpH.NewCatalogHandler(catalog),
		PricingHandler:    httpH.NewPricingHandler(services.NewPricingService("$")),
	})
	return &testBrowser{t: t, router: router}
}

func (b *testBrowser) do(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	b.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name != httpMW.DefaultSessionCookie {
			continue
		}
		if ck.MaxAge < 0 {
			b.cookie = nil
		} else {
			b.cookie = ck
		}
	}

	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			b.t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, out
}

func errorCode(body map[string]any) string {
	env, _ := body["error"].(map[string]any)
	code, _ := env["code"].(string)
	return code
}

func TestHealthcheck(t *testing.T) {
	b := newTestBrowser(t)
	rec, _ := b.do(http.MethodGet, "/healthcheck", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthcheck: %d %q", rec.Code, rec.Body.String())
	}
}

func TestReadyWithInProcessSessions(t *testing.T) {
	b := newTestBrowser(t)
	rec, _ := b.do(http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ready" {
		t.Fatalf("unexpected readiness: %d %q", rec.Code, rec.Body.String())
	}
}

func TestAddingSameBookTwiceMergesIntoOneLine(t *testing.T) {
	b := newTestBrowser(t)

	for i := 0; i < 2; i++ {
		rec, body := b.do(http.MethodPost, "/api/cart/items", `{"id":"book-7","title":"ignored","price":1}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("add status: %d %s", rec.Code, rec.Body.String())
		}
		if got := body["message"]; got != `"Dune" has been added to your cart!` {
			t.Fatalf("unexpected message: %v", got)
		}
	}

	rec, body := b.do(http.MethodGet, "/api/cart", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status: %d", rec.Code)
	}
	items, _ := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one line item, got %d", len(items))
	}
	line := items[0].(map[string]any)
	if line["quantity"] != float64(2) || line["price"] != 9.99 {
		t.Fatalf("unexpected line: %v", line)
	}
	if line["line_total_formatted"] != "$19.98" {
		t.Fatalf("unexpected line total: %v", line["line_total_formatted"])
	}
	if body["count"] != float64(2) || body["total_formatted"] != "$19.98" {
		t.Fatalf("unexpected totals: count=%v total=%v", body["count"], body["total_formatted"])
	}

	_, count := b.do(http.MethodGet, "/api/cart/count", "")
	if count["count"] != float64(2) {
		t.Fatalf("badge count: %v", count["count"])
	}
}

func TestAddUnknownBookUsesDisplayDefaults(t *testing.T) {
	b := newTestBrowser(t)

	rec, body := b.do(http.MethodPost, "/api/cart/items", `{"id":"zine-1","price":"4.50"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status: %d", rec.Code)
	}
	item := body["item"].(map[string]any)
	if item["title"] != "Unknown Book" || item["author"] != "Unknown Author" {
		t.Fatalf("unexpected defaults: %v", item)
	}
	if item["image"] != "images/placeholder-book.jpg" {
		t.Fatalf("expected placeholder image, got %v", item["image"])
	}
	if item["price_formatted"] != "$4.50" {
		t.Fatalf("unexpected price: %v", item["price_formatted"])
	}
}

func TestAddWithoutIDIsRejected(t *testing.T) {
	b := newTestBrowser(t)

	rec, body := b.do(http.MethodPost, "/api/cart/items", `{"title":"Nameless"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := errorCode(body); code != "item_id_required" {
		t.Fatalf("unexpected code: %q", code)
	}
}

func TestRemoveItem(t *testing.T) {
	b := newTestBrowser(t)
	b.do(http.MethodPost, "/api/cart/items", `{"id":"book-1"}`)
	b.do(http.MethodPost, "/api/cart/items", `{"id":"book-2"}`)

	rec, body := b.do(http.MethodDelete, "/api/cart/items/book-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status: %d", rec.Code)
	}
	items := body["items"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["id"] != "book-2" {
		t.Fatalf("unexpected items after remove: %v", items)
	}

	_, body = b.do(http.MethodDelete, "/api/cart/items/missing", "")
	if len(body["items"].([]any)) != 1 {
		t.Fatalf("removing an unknown id must be a no-op")
	}
}

func TestClearRequiresConfirmation(t *testing.T) {
	b := newTestBrowser(t)
	b.do(http.MethodPost, "/api/cart/items", `{"id":"book-3"}`)

	_, body := b.do(http.MethodPost, "/api/cart/clear", "")
	if body["cleared"] != false {
		t.Fatalf("clear without a body must not run: %v", body)
	}
	_, body = b.do(http.MethodPost, "/api/cart/clear", `{"confirm":false}`)
	if body["cleared"] != false || body["cart"].(map[string]any)["count"] != float64(1) {
		t.Fatalf("declined clear changed the cart: %v", body)
	}

	_, body = b.do(http.MethodPost, "/api/cart/clear", `{"confirm":true}`)
	if body["cleared"] != true || body["message"] != "Your cart has been cleared." {
		t.Fatalf("unexpected clear response: %v", body)
	}
	if body["cart"].(map[string]any)["count"] != float64(0) {
		t.Fatalf("cart not empty after clear")
	}
}

func TestAddReportsWhenCartCouldNotBeSaved(t *testing.T) {
	backend := kvtest.NewFlaky(kvstore.NewMemoryStore(time.Hour))
	b := newTestBrowserWith(t, backend)
	b.do(http.MethodGet, "/api/cart", "")

	backend.FailSetsOn("cart")
	rec, body := b.do(http.MethodPost, "/api/cart/items", `{"id":"book-7"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["added"] != false {
		t.Fatalf("lost write reported as added: %v", body)
	}
	if msg, _ := body["message"].(string); !strings.Contains(msg, "couldn't be added") {
		t.Fatalf("unexpected message: %q", msg)
	}

	backend.Heal()
	_, body = b.do(http.MethodPost, "/api/cart/items", `{"id":"book-7"}`)
	if body["added"] != true || body["cart"].(map[string]any)["count"] != float64(1) {
		t.Fatalf("add after recovery failed: %v", body)
	}
}

func TestClearReportsWhenCartCouldNotBeSaved(t *testing.T) {
	backend := kvtest.NewFlaky(kvstore.NewMemoryStore(time.Hour))
	b := newTestBrowserWith(t, backend)
	b.do(http.MethodPost, "/api/cart/items", `{"id":"book-3"}`)

	backend.FailRemovesOn("cart")
	_, body := b.do(http.MethodPost, "/api/cart/clear", `{"confirm":true}`)
	if body["cleared"] != false || body["message"] != "We couldn't clear your cart. Please try again." {
		t.Fatalf("lost clear reported as success: %v", body)
	}
}

func TestOrderOutcomes(t *testing.T) {
	b := newTestBrowser(t)

	_, body := b.do(http.MethodPost, "/api/orders", "")
	if body["outcome"] != "empty_cart" || body["message"] != "Your cart is empty. Add some books first!" {
		t.Fatalf("unexpected empty-cart outcome: %v", body)
	}

	b.do(http.MethodPost, "/api/cart/items", `{"id":"book-7"}`)
	b.do(http.MethodPost, "/api/cart/items", `{"id":"book-7"}`)
	_, body = b.do(http.MethodPost, "/api/orders", "")
	want := "Order processed successfully!\nTotal: $19.98\nThank you for shopping at Book Haven!"
	if body["outcome"] != "success" || body["message"] != want || body["close_cart"] != true {
		t.Fatalf("unexpected success outcome: %v", body)
	}

	_, cartBody := b.do(http.MethodGet, "/api/cart", "")
	if cartBody["count"] != float64(0) {
		t.Fatalf("cart should be empty after a successful order")
	}

	b.do(http.MethodPost, "/api/cart/items", `{"id":"book-1"}`)
	_, body = b.do(http.MethodPost, "/api/orders", "")
	if body["outcome"] != "already_processed" || body["close_cart"] != false {
		t.Fatalf("second order in a session must be refused: %v", body)
	}
	_, cartBody = b.do(http.MethodGet, "/api/cart", "")
	if cartBody["count"] != float64(1) {
		t.Fatalf("refused order must leave the cart alone")
	}
}

func TestEndingSessionAllowsAnotherOrder(t *testing.T) {
	b := newTestBrowser(t)
	b.do(http.MethodPost, "/api/cart/items", `{"id":"book-2"}`)
	b.do(http.MethodPost, "/api/orders", "")

	rec, _ := b.do(http.MethodDelete, "/api/session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("end session: %d", rec.Code)
	}
	if b.cookie != nil {
		t.Fatalf("session cookie should be cleared")
	}

	b.do(http.MethodPost, "/api/cart/items", `{"id":"book-2"}`)
	_, body := b.do(http.MethodPost, "/api/orders", "")
	if body["outcome"] != "success" {
		t.Fatalf("new session should order again: %v", body)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	a := newTestBrowser(t)
	a.do(http.MethodPost, "/api/cart/items", `{"id":"book-4"}`)

	other := &testBrowser{t: t, router: a.router}
	_, body := other.do(http.MethodGet, "/api/cart", "")
	if body["count"] != float64(0) {
		t.Fatalf("second browser sees first browser's cart: %v", body)
	}
}

func TestSubscribeAndContact(t *testing.T) {
	b := newTestBrowser(t)

	rec, body := b.do(http.MethodPost, "/api/subscribe", `{"email":"not-an-email"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	env := body["error"].(map[string]any)
	if env["message"] != services.MsgInvalidEmail {
		t.Fatalf("unexpected message: %v", env["message"])
	}

	_, body = b.do(http.MethodPost, "/api/subscribe", `{"email":"reader@example.com"}`)
	if body["message"] != services.MsgSubscribeSuccess {
		t.Fatalf("unexpected subscribe response: %v", body)
	}

	rec, body = b.do(http.MethodPost, "/api/contact", `{"name":"A","email":"x","subject":"","message":"hi"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	fields := body["error"].(map[string]any)["fields"].([]any)
	if len(fields) != 4 {
		t.Fatalf("expected every field flagged, got %v", fields)
	}

	_, body = b.do(http.MethodPost, "/api/contact",
		`{"name":"Ada","email":"ada@example.com","subject":"orders","message":"Where is my parcel?"}`)
	if body["message"] != services.MsgContactSuccess || body["id"] == nil {
		t.Fatalf("unexpected contact response: %v", body)
	}
}

func TestBooksFilterAndDiscountQuote(t *testing.T) {
	b := newTestBrowser(t)

	_, body := b.do(http.MethodGet, "/api/books?category=sci-fi", "")
	books := body["books"].([]any)
	if len(books) == 0 {
		t.Fatalf("expected sci-fi books")
	}
	for _, raw := range books {
		if raw.(map[string]any)["category"] != "sci-fi" {
			t.Fatalf("filter leaked: %v", raw)
		}
	}

	_, all := b.do(http.MethodGet, "/api/books", "")
	if len(all["books"].([]any)) <= len(books) {
		t.Fatalf("unfiltered list should be larger")
	}

	rec, _ := b.do(http.MethodGet, "/api/books/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	_, quote := b.do(http.MethodGet, "/api/discount/quote?price=20&quantity=10&membership=5", "")
	if quote["total_percent"] != float64(15) || quote["final"] != float64(170) {
		t.Fatalf("unexpected quote: %v", quote)
	}
}
