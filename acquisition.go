package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// acquisitionLoop repeatedly tries to place the target item in the cart
// until the price policy approves the cart state or ends the run. There is
// no retry ceiling: the item may stay unavailable for an unbounded time and
// the loop is meant to outlast it.
type acquisitionLoop struct {
	config *Config
	driver pageDriver
	policy *pricePolicy
	log    *Logger
	rand   *rand.Rand
}

func newAcquisitionLoop(config *Config, driver pageDriver, policy *pricePolicy, log *Logger) *acquisitionLoop {
	return &acquisitionLoop{
		config: config,
		driver: driver,
		policy: policy,
		log:    log,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *acquisitionLoop) addToCartURL() string {
	return fmt.Sprintf(a.config.URLs.AddToCart, a.config.ItemNumber)
}

// Run returns the first non-retryable outcome: success once the cart passes
// policy, stop when the policy ends the run, or the context error when the
// run is cancelled or the drop window expires.
func (a *acquisitionLoop) Run(ctx context.Context) (attemptOutcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return attemptOutcome{}, err
		}

		// Transient driver errors are retryable noise; re-iterate at once.
		if err := a.driver.Navigate(a.addToCartURL()); err != nil {
			a.log.Trace("add-to-cart navigation failed: %v", err)
			continue
		}

		url, err := a.driver.CurrentURL()
		if err != nil {
			a.log.Trace("could not read current URL: %v", err)
			continue
		}

		switch classifyPage(url, a.config.URLs) {
		case pageCart:
			if out, done := a.checkCart(ctx); done {
				return out, nil
			}
		case pageItem:
			// Landed on an intermediate item page; go to the cart proper.
			if err := a.driver.Navigate(a.config.URLs.Cart); err != nil {
				a.log.Trace("cart navigation failed: %v", err)
				continue
			}
			if out, done := a.checkCart(ctx); done {
				return out, nil
			}
		case pageChallenge:
			a.driver.Wait(ctx, ms(a.config.ChallengeWaitMs))
		}
	}
}

// checkCart invokes the price policy and applies the staggered wait for
// outcomes that ask for it. done reports whether the loop should end.
func (a *acquisitionLoop) checkCart(ctx context.Context) (out attemptOutcome, done bool) {
	out = a.policy.Evaluate(ctx)
	if out.kind != outcomeRetry {
		return out, true
	}

	if out.backoff {
		wait := nextWait(a.config.RefreshTime, a.config.RandomizedWaitCeiling, a.rand)
		a.log.Info(T("next_attempt_in"), int(wait.Seconds()))
		a.driver.Wait(ctx, wait)
	}
	return out, false
}

// nextWait computes the staggered retry wait: the configured refresh time
// plus a uniform random jitter below the ceiling, so a fleet of pollers does
// not hammer the site in lockstep.
func nextWait(refreshSeconds, ceilingSeconds int, r *rand.Rand) time.Duration {
	extra := 0
	if ceilingSeconds > 0 {
		extra = r.Intn(ceilingSeconds)
	}
	return time.Duration(refreshSeconds+extra) * time.Second
}
