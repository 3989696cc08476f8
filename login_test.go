package main

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestClassifyPage(t *testing.T) {
	urls := DefaultConfig().URLs

	tests := []struct {
		url      string
		expected pageState
	}{
		{"https://secure.newegg.com/NewMyAccount/signin?tk=x", pageSignIn},
		{"https://www.newegg.com/areyouahuman?itn=true", pageChallenge},
		{"https://secure.newegg.com/Shopping/ShoppingItem.aspx?x=1", pageItem},
		{"https://secure.newegg.com/shop/cart", pageCart},
		{"https://secure.newegg.com/NewMyAccount/AccountLogin.aspx", pageOther},
		{"https://www.newegg.com/", pageOther},
		{"", pageOther},
	}

	for _, test := range tests {
		t.Run(test.url, func(t *testing.T) {
			if got := classifyPage(test.url, urls); got != test.expected {
				t.Errorf("classifyPage(%q) = %v, expected %v", test.url, got, test.expected)
			}
		})
	}
}

func TestPageStateString(t *testing.T) {
	states := map[pageState]string{
		pageOther:     "other",
		pageSignIn:    "sign-in",
		pageChallenge: "bot-challenge",
		pageCart:      "cart",
		pageItem:      "item",
	}
	for state, expected := range states {
		if state.String() != expected {
			t.Errorf("pageState(%d).String() = %q, expected %q", state, state.String(), expected)
		}
	}
}

func TestLoginAlreadyAuthenticated(t *testing.T) {
	config := testConfig()
	driver := &fakeDriver{
		currentURLFn: func() (string, error) {
			return "https://secure.newegg.com/NewMyAccount/AccountLogin.aspx", nil
		},
	}
	session := newSessionEstablisher(config, driver, testLogger())

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(driver.navigated) != 1 {
		t.Errorf("expected a single navigation, got %v", driver.navigated)
	}
	if len(driver.typed) != 0 {
		t.Errorf("no credentials should be typed on an authenticated session, got %v", driver.typed)
	}
}

func TestLoginFullFlow(t *testing.T) {
	config := testConfig()
	sel := config.Selectors

	signedIn := false
	driver := &fakeDriver{}
	driver.currentURLFn = func() (string, error) {
		if signedIn {
			return "https://secure.newegg.com/NewMyAccount/AccountLogin.aspx", nil
		}
		return "https://secure.newegg.com/NewMyAccount/signin?tk=x", nil
	}
	driver.waitForFn = func(selector string, timeout time.Duration) error {
		switch selector {
		case sel.SignInButton:
			return nil
		case sel.EmailInput:
			// The email step advanced, so the field is gone on recheck.
			return fmt.Errorf("element not found")
		case sel.PasswordInput:
			if timeout == ms(config.FieldRecheckMs) {
				// Password accepted: the field is gone on recheck.
				signedIn = true
				return fmt.Errorf("element not found")
			}
			return nil
		}
		return nil
	}
	session := newSessionEstablisher(config, driver, testLogger())

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if driver.typed[sel.EmailInput] != config.Email {
		t.Errorf("email was not typed, typed=%v", driver.typed)
	}
	if driver.typed[sel.PasswordInput] != config.Password {
		t.Errorf("password was not typed, typed=%v", driver.typed)
	}

	submits := 0
	for _, clicked := range driver.clicked {
		if clicked == sel.SignInButton {
			submits++
		}
	}
	if submits != 2 {
		t.Errorf("expected 2 form submissions (email, password), got %d", submits)
	}
}

func TestLoginRetriesWhenEmailNotAccepted(t *testing.T) {
	config := testConfig()
	sel := config.Selectors

	cycle := 0
	driver := &fakeDriver{}
	driver.currentURLFn = func() (string, error) {
		if cycle >= 2 {
			return "https://secure.newegg.com/NewMyAccount/AccountLogin.aspx", nil
		}
		return "https://secure.newegg.com/NewMyAccount/signin", nil
	}
	driver.waitForFn = func(selector string, timeout time.Duration) error {
		if selector == sel.EmailInput {
			// Email field persists: the submission did not advance.
			cycle++
			return nil
		}
		return nil
	}
	session := newSessionEstablisher(config, driver, testLogger())

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(driver.navigated) < 3 {
		t.Errorf("stuck email form should restart the whole navigation, got %d navigations", len(driver.navigated))
	}
}

func TestLoginManualVerification(t *testing.T) {
	config := testConfig()
	sel := config.Selectors

	polls := 0
	driver := &fakeDriver{}
	driver.currentURLFn = func() (string, error) {
		polls++
		if polls >= 4 {
			return "https://secure.newegg.com/NewMyAccount/AccountLogin.aspx", nil
		}
		return "https://secure.newegg.com/NewMyAccount/signin", nil
	}
	driver.waitForFn = func(selector string, timeout time.Duration) error {
		switch selector {
		case sel.SignInButton:
			return nil
		default:
			// Neither the email nor the password form renders.
			return fmt.Errorf("element not found")
		}
	}
	session := newSessionEstablisher(config, driver, testLogger())

	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if polls < 4 {
		t.Errorf("expected the sign-in URL to be polled until it clears, got %d polls", polls)
	}
	if _, ok := driver.typed[sel.PasswordInput]; ok {
		t.Error("password must not be typed during manual verification")
	}
}

func TestLoginGivesUpWhenPasswordPersists(t *testing.T) {
	config := testConfig()
	sel := config.Selectors

	driver := &fakeDriver{}
	driver.currentURLFn = func() (string, error) {
		return "https://secure.newegg.com/NewMyAccount/signin", nil
	}
	driver.waitForFn = func(selector string, timeout time.Duration) error {
		switch selector {
		case sel.SignInButton:
			return nil
		case sel.EmailInput:
			return fmt.Errorf("element not found")
		case sel.PasswordInput:
			// Present both for the appearance wait and the recheck: the
			// credentials were rejected.
			return nil
		}
		return nil
	}
	session := newSessionEstablisher(config, driver, testLogger())

	// Rejected credentials end the loop rather than hammering the form.
	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if driver.typed[sel.PasswordInput] != config.Password {
		t.Error("password should have been attempted once")
	}
}

func TestLoginHonorsCancellation(t *testing.T) {
	config := testConfig()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session := newSessionEstablisher(config, &fakeDriver{
		currentURLFn: func() (string, error) {
			return "https://secure.newegg.com/NewMyAccount/signin", nil
		},
	}, testLogger())

	if err := session.Run(ctx); err == nil {
		t.Fatal("expected context error from cancelled run")
	}
}
