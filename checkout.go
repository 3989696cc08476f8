package main

import (
	"context"
	"fmt"
)

// checkoutFlow drives a policy-approved cart to order placement. Submission
// is gated on auto_submit so the bot can stop short of paying and hand the
// filled-in order to the operator.
type checkoutFlow struct {
	config *Config
	driver pageDriver
	log    *Logger
}

func newCheckoutFlow(config *Config, driver pageDriver, log *Logger) *checkoutFlow {
	return &checkoutFlow{config: config, driver: driver, log: log}
}

func (c *checkoutFlow) Run(ctx context.Context) error {
	// Some account states skip this button entirely, so absence is not an
	// error.
	if err := c.driver.ClickByText(c.config.Selectors.SecureCheckoutText); err != nil {
		c.log.Error(T("secure_checkout_not_found"), err)
	} else {
		c.log.Info(T("starting_secure_checkout"))
	}

	c.driver.Wait(ctx, ms(c.config.CheckoutSettleMs))

	if err := c.driver.WaitForElement(c.config.Selectors.PlaceOrderButton, ms(c.config.PlaceOrderWaitMs)); err != nil {
		c.log.Error(T("place_order_not_found"))
		c.log.Warn(T("account_defaults_hint"))
		return nil
	}

	if err := c.enterCVV(ctx); err != nil {
		return err
	}

	return c.submitOrder()
}

// enterCVV retries until the CVV field accepts the configured value. The
// field renders late and flickers during the payment step, so each failure
// just goes around again; the per-attempt element wait keeps the loop off
// the CPU.
func (c *checkoutFlow) enterCVV(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.log.Info(T("cvv_waiting"))
		if err := c.typeCVV(); err != nil {
			c.log.Warn(T("cvv_not_found"))
			continue
		}

		c.log.Info(T("cvv_entered"))
		return nil
	}
}

func (c *checkoutFlow) typeCVV() error {
	sel := c.config.Selectors.CVVInput
	if err := c.driver.WaitForElement(sel, ms(c.config.CVVWaitMs)); err != nil {
		return err
	}
	if err := c.driver.Focus(sel); err != nil {
		return err
	}
	return c.driver.Type(sel, c.config.CVV)
}

func (c *checkoutFlow) submitOrder() error {
	if !c.config.AutoSubmit {
		c.log.Warn(T("submit_skipped"))
		return nil
	}

	if err := c.driver.Click(c.config.Selectors.PlaceOrderButton); err != nil {
		return fmt.Errorf("failed to submit order: %w", err)
	}

	c.log.Info(T("purchase_complete"))
	return nil
}
