package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

type outcomeKind int

const (
	outcomeRetry outcomeKind = iota
	outcomeSuccess
	outcomeStop
)

// attemptOutcome is the result of one cart evaluation: proceed to checkout,
// retry the acquisition loop (optionally after a staggered wait), or end the
// whole run.
type attemptOutcome struct {
	kind    outcomeKind
	reason  string
	backoff bool
}

// cartSnapshot is the rendered cart state, read fresh on every check. The
// page is the sole source of truth, so a snapshot never outlives one
// evaluation.
type cartSnapshot struct {
	total int
}

func (s cartSnapshot) empty() bool {
	return s.total == 0
}

func (s cartSnapshot) itemCount() int {
	if s.total == 0 {
		return 0
	}
	return 1
}

// parseCartTotal extracts the whole-unit amount from a rendered total such
// as "Total: $1,299.99". The fractional part is ignored.
func parseCartTotal(text string) (int, error) {
	_, after, found := strings.Cut(text, "$")
	if !found {
		return 0, fmt.Errorf("no currency amount in %q", text)
	}

	var digits strings.Builder
	for _, r := range after {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			continue
		}
		if r == ',' {
			continue
		}
		break
	}
	if digits.Len() == 0 {
		return 0, fmt.Errorf("no digits after currency symbol in %q", text)
	}

	return strconv.Atoi(digits.String())
}

// pricePolicy reads the current cart total and decides whether the purchase
// proceeds, retries, or stops the run. It never terminates the process
// itself; the terminal decision travels back to main as an outcome value.
type pricePolicy struct {
	config *Config
	driver pageDriver
	log    *Logger
}

func newPricePolicy(config *Config, driver pageDriver, log *Logger) *pricePolicy {
	return &pricePolicy{config: config, driver: driver, log: log}
}

func (p *pricePolicy) Evaluate(ctx context.Context) attemptOutcome {
	p.driver.Wait(ctx, ms(p.config.CartSettleMs))

	sel := p.config.Selectors.CartTotal
	if err := p.driver.WaitForElement(sel, ms(p.config.CartTotalWaitMs)); err != nil {
		p.log.Error(T("cart_no_items"))
		return attemptOutcome{kind: outcomeRetry, reason: "no items in cart", backoff: true}
	}

	text, err := p.driver.ElementText(sel)
	if err != nil {
		p.log.Error(T("cart_no_items"))
		return attemptOutcome{kind: outcomeRetry, reason: "no items in cart", backoff: true}
	}

	total, err := parseCartTotal(text)
	if err != nil {
		p.log.Error("could not read cart total: %v", err)
		return attemptOutcome{kind: outcomeRetry, reason: "no items in cart", backoff: true}
	}

	snapshot := cartSnapshot{total: total}
	p.log.Trace("cart total %d, %d item(s)", snapshot.total, snapshot.itemCount())

	// An empty cart renders a zero total.
	if snapshot.empty() {
		p.log.Error(T("cart_no_items"))
		return attemptOutcome{kind: outcomeRetry, reason: "no items in cart", backoff: true}
	}

	if snapshot.total > p.config.PriceLimit {
		p.log.Error(T("price_exceeds_limit"), snapshot.total, p.config.PriceLimit)
		p.clearCart()

		if p.config.OverPriceLimitBehavior == behaviorStop {
			p.log.Error(T("over_limit_stop"))
			return attemptOutcome{kind: outcomeStop, reason: "over price limit"}
		}
		// Policy violations retry immediately: the price may settle back
		// under the ceiling at any moment, so no stagger here.
		return attemptOutcome{kind: outcomeRetry, reason: "over price limit"}
	}

	p.log.Info(T("item_added"))
	return attemptOutcome{kind: outcomeSuccess}
}

// clearCart clicks the line-item removal control until none is reachable,
// treating that as "cart cleared".
func (p *pricePolicy) clearCart() {
	sel := p.config.Selectors.RemoveItemButton
	for {
		if err := p.driver.ClickNth(sel, p.config.Selectors.RemoveItemIndex); err != nil {
			return
		}
	}
}
