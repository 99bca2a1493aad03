package order_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"github.com/yungbote/bookhaven-backend/internal/domain/storefront"
	"github.com/yungbote/bookhaven-backend/internal/modules/cart"
	"github.com/yungbote/bookhaven-backend/internal/modules/order"
	"github.com/yungbote/bookhaven-backend/internal/platform/kvstore"
	"github.com/yungbote/bookhaven-backend/internal/platform/kvstore/kvtest"
)

type checkoutTestContext struct {
	ctx     context.Context
	backend *kvtest.Flaky
	store   *cart.Store
	proc    *order.Processor
	outcome order.Outcome
	err     error
}

func (c *checkoutTestContext) reset() {
	c.ctx = context.Background()
	c.backend = kvtest.NewFlaky(kvstore.NewMemoryStore(0))
	c.store = cart.NewCarts(cart.Deps{Backend: c.backend}).Open("bdd")
	c.proc = order.NewProcessor(order.Deps{})
	c.outcome = order.Outcome{}
	c.err = nil
}

func (c *checkoutTestContext) aFreshSession() error {
	c.reset()
	return nil
}

func (c *checkoutTestContext) iAddBook(id, title, price string) error {
	_, _, err := c.store.AddItem(c.ctx, storefront.NewItem{ID: id, Title: title, Price: storefront.ParseMoney(price)})
	return err
}

func (c *checkoutTestContext) iRemoveBook(id string) error {
	c.store.RemoveItem(c.ctx, id)
	return nil
}

func (c *checkoutTestContext) iClearTheCartAnswering(answer string) error {
	c.store.ClearCart(c.ctx, cart.Confirmed(answer == "yes"))
	return nil
}

func (c *checkoutTestContext) iProcessTheOrder() error {
	c.outcome, c.err = c.proc.ProcessOrder(c.ctx, c.store)
	return nil
}

func (c *checkoutTestContext) theStorageRefusesToRemoveTheCart() error {
	c.backend.FailRemovesOn(cart.KeyCart)
	return nil
}

func (c *checkoutTestContext) theCartHasLines(n int) error {
	c.backend.Heal()
	if got := len(c.store.GetCart(c.ctx)); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *checkoutTestContext) lineHasQuantity(id string, qty int) error {
	for _, it := range c.store.GetCart(c.ctx) {
		if it.ID == id {
			if it.Quantity != qty {
				return fmt.Errorf("expected quantity %d for %q, got %d", qty, id, it.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("line %q not in cart", id)
}

func (c *checkoutTestContext) theCartDoesNotContain(id string) error {
	for _, it := range c.store.GetCart(c.ctx) {
		if it.ID == id {
			return fmt.Errorf("line %q still in cart", id)
		}
	}
	return nil
}

func (c *checkoutTestContext) theCartTotalIs(want string) error {
	got := cart.ComputeTotal(c.store.GetCart(c.ctx)).Decimal()
	if got != want {
		return fmt.Errorf("expected total %s, got %s", want, got)
	}
	return nil
}

func (c *checkoutTestContext) theOutcomeIs(kind string) error {
	if c.err != nil {
		return fmt.Errorf("expected outcome but got error: %v", c.err)
	}
	if string(c.outcome.Kind) != kind {
		return fmt.Errorf("expected outcome %s, got %s", kind, c.outcome.Kind)
	}
	return nil
}

func (c *checkoutTestContext) theOutcomeIsWithTotal(kind, total string) error {
	if err := c.theOutcomeIs(kind); err != nil {
		return err
	}
	if c.outcome.Total.Decimal() != total {
		return fmt.Errorf("expected total %s, got %s", total, c.outcome.Total.Decimal())
	}
	return nil
}

func (c *checkoutTestContext) processingFailsWithAStorageError() error {
	if !errors.Is(c.err, order.ErrStorageFailure) {
		return fmt.Errorf("expected ErrStorageFailure, got %v", c.err)
	}
	return nil
}

func (c *checkoutTestContext) theOrderFlagIsSet() error {
	c.backend.Heal()
	if !c.store.OrderProcessed(c.ctx) {
		return errors.New("expected order flag to be set")
	}
	return nil
}

func (c *checkoutTestContext) theOrderFlagIsNotSet() error {
	c.backend.Heal()
	if c.store.OrderProcessed(c.ctx) {
		return errors.New("expected order flag to be unset")
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a fresh session$`, tc.aFreshSession)

	ctx.Step(`^I add book "([^"]*)" titled "([^"]*)" priced ([0-9.]+)$`, tc.iAddBook)
	ctx.Step(`^I remove book "([^"]*)"$`, tc.iRemoveBook)
	ctx.Step(`^I clear the cart answering "(yes|no)"$`, tc.iClearTheCartAnswering)
	ctx.Step(`^I process the order$`, tc.iProcessTheOrder)
	ctx.Step(`^the storage refuses to remove the cart$`, tc.theStorageRefusesToRemoveTheCart)

	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^line "([^"]*)" has quantity (\d+)$`, tc.lineHasQuantity)
	ctx.Step(`^the cart does not contain "([^"]*)"$`, tc.theCartDoesNotContain)
	ctx.Step(`^the cart total is "([^"]*)"$`, tc.theCartTotalIs)
	ctx.Step(`^the outcome is "([^"]*)"$`, tc.theOutcomeIs)
	ctx.Step(`^the outcome is "([^"]*)" with total "([^"]*)"$`, tc.theOutcomeIsWithTotal)
	ctx.Step(`^processing fails with a storage error$`, tc.processingFailsWithAStorageError)
	ctx.Step(`^the order flag is set$`, tc.theOrderFlagIsSet)
	ctx.Step(`^the order flag is not set$`, tc.theOrderFlagIsNotSet)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
