package main

import (
	"context"
	"strings"
	"time"
)

// pageState classifies the page the site currently has us on, keyed purely
// on the URL so transitions can be tested without a browser.
type pageState int

const (
	pageOther pageState = iota
	pageSignIn
	pageChallenge
	pageCart
	pageItem
)

func (s pageState) String() string {
	switch s {
	case pageSignIn:
		return "sign-in"
	case pageChallenge:
		return "bot-challenge"
	case pageCart:
		return "cart"
	case pageItem:
		return "item"
	}
	return "other"
}

func classifyPage(url string, urls URLConfig) pageState {
	switch {
	case urls.SignInMarker != "" && strings.Contains(url, urls.SignInMarker):
		return pageSignIn
	case urls.ChallengeMarker != "" && strings.Contains(url, urls.ChallengeMarker):
		return pageChallenge
	case urls.ItemMarker != "" && strings.Contains(url, urls.ItemMarker):
		return pageItem
	case urls.CartMarker != "" && strings.Contains(url, urls.CartMarker):
		return pageCart
	}
	return pageOther
}

// sessionEstablisher drives authentication until the site stops presenting
// the sign-in page. Every failure path loops back to the login URL or
// degrades to waiting on the operator, so the only ways out are an
// authenticated session or a cancelled run.
type sessionEstablisher struct {
	config *Config
	driver pageDriver
	log    *Logger
}

func newSessionEstablisher(config *Config, driver pageDriver, log *Logger) *sessionEstablisher {
	return &sessionEstablisher{config: config, driver: driver, log: log}
}

const signInButtonWait = 30 * time.Second

func (s *sessionEstablisher) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.driver.Navigate(s.config.URLs.Login); err != nil {
			s.log.Trace("login navigation failed: %v", err)
			continue
		}

		url, err := s.driver.CurrentURL()
		if err != nil {
			s.log.Trace("could not read current URL: %v", err)
			continue
		}

		switch classifyPage(url, s.config.URLs) {
		case pageSignIn:
			done, err := s.submitCredentials(ctx)
			if err != nil {
				s.log.Trace("sign-in attempt failed, restarting: %v", err)
				continue
			}
			if done {
				s.log.Trace(T("logged_in"))
				return nil
			}
		case pageChallenge:
			// Nothing to do but stall until the interstitial clears.
			s.driver.Wait(ctx, ms(s.config.ChallengeWaitMs))
		default:
			// No sign-in page means the session is already authenticated.
			s.log.Trace(T("logged_in"))
			return nil
		}
	}
}

// submitCredentials walks the two-step email/password form. The returned
// bool reports whether the login loop should end; false asks the caller to
// restart from the login URL.
func (s *sessionEstablisher) submitCredentials(ctx context.Context) (bool, error) {
	if err := s.driver.WaitForElement(s.config.Selectors.SignInButton, signInButtonWait); err != nil {
		return false, err
	}
	if err := s.driver.Type(s.config.Selectors.EmailInput, s.config.Email); err != nil {
		return false, err
	}
	if err := s.driver.Click(s.config.Selectors.SignInButton); err != nil {
		return false, err
	}
	s.driver.Wait(ctx, ms(s.config.SettleDelayMs))

	// Email field still present means the submission did not advance.
	if err := s.driver.WaitForElement(s.config.Selectors.EmailInput, ms(s.config.FieldRecheckMs)); err == nil {
		return false, nil
	}

	if err := s.driver.WaitForElement(s.config.Selectors.PasswordInput, ms(s.config.PasswordWaitMs)); err != nil {
		// Neither email nor password form: the site wants out-of-band
		// verification from the operator.
		return s.waitForManualVerification(ctx)
	}

	return s.submitPassword(ctx)
}

func (s *sessionEstablisher) submitPassword(ctx context.Context) (bool, error) {
	if err := s.driver.WaitForElement(s.config.Selectors.SignInButton, signInButtonWait); err != nil {
		return false, err
	}
	if err := s.driver.Type(s.config.Selectors.PasswordInput, s.config.Password); err != nil {
		return false, err
	}
	if err := s.driver.Click(s.config.Selectors.SignInButton); err != nil {
		return false, err
	}
	s.driver.Wait(ctx, ms(s.config.SettleDelayMs))

	if err := s.driver.WaitForElement(s.config.Selectors.PasswordInput, ms(s.config.FieldRecheckMs)); err == nil {
		// Password form persists: the credentials were not accepted this
		// cycle. Give up on the loop and let the later stages surface it.
		s.log.Warn(T("login_not_accepted"))
		return true, nil
	}

	return true, nil
}

// waitForManualVerification polls until the operator finishes the site's
// verification challenge. There is deliberately no deadline; cancelling the
// run is the only other way out.
func (s *sessionEstablisher) waitForManualVerification(ctx context.Context) (bool, error) {
	s.log.Warn(T("manual_auth_required"))

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		url, err := s.driver.CurrentURL()
		if err == nil && classifyPage(url, s.config.URLs) != pageSignIn {
			return true, nil
		}

		s.driver.Wait(ctx, ms(s.config.ManualPollMs))
	}
}
