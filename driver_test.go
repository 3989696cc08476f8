package main

import (
	"context"
	"io"
	"time"
)

// fakeDriver is a scripted pageDriver for flow tests. Unset hooks succeed
// and return zero values.
type fakeDriver struct {
	navigateFn    func(url string) error
	currentURLFn  func() (string, error)
	waitForFn     func(selector string, timeout time.Duration) error
	textFn        func(selector string) (string, error)
	clickFn       func(selector string) error
	clickNthFn    func(selector string, n int) error
	clickByTextFn func(text string) error
	typeFn        func(selector, text string) error
	focusFn       func(selector string) error

	navigated []string
	clicked   []string
	typed     map[string]string
	focused   []string
	waits     []time.Duration
}

func (f *fakeDriver) Navigate(url string) error {
	f.navigated = append(f.navigated, url)
	if f.navigateFn != nil {
		return f.navigateFn(url)
	}
	return nil
}

func (f *fakeDriver) CurrentURL() (string, error) {
	if f.currentURLFn != nil {
		return f.currentURLFn()
	}
	return "", nil
}

func (f *fakeDriver) WaitForElement(selector string, timeout time.Duration) error {
	if f.waitForFn != nil {
		return f.waitForFn(selector, timeout)
	}
	return nil
}

func (f *fakeDriver) ElementText(selector string) (string, error) {
	if f.textFn != nil {
		return f.textFn(selector)
	}
	return "", nil
}

func (f *fakeDriver) Click(selector string) error {
	f.clicked = append(f.clicked, selector)
	if f.clickFn != nil {
		return f.clickFn(selector)
	}
	return nil
}

func (f *fakeDriver) ClickNth(selector string, n int) error {
	if f.clickNthFn != nil {
		return f.clickNthFn(selector, n)
	}
	return nil
}

func (f *fakeDriver) ClickByText(text string) error {
	if f.clickByTextFn != nil {
		return f.clickByTextFn(text)
	}
	return nil
}

func (f *fakeDriver) Type(selector, text string) error {
	if f.typed == nil {
		f.typed = make(map[string]string)
	}
	f.typed[selector] = text
	if f.typeFn != nil {
		return f.typeFn(selector, text)
	}
	return nil
}

func (f *fakeDriver) Focus(selector string) error {
	f.focused = append(f.focused, selector)
	if f.focusFn != nil {
		return f.focusFn(selector)
	}
	return nil
}

// Wait records the requested duration without actually sleeping so flow
// tests stay fast.
func (f *fakeDriver) Wait(ctx context.Context, d time.Duration) {
	f.waits = append(f.waits, d)
}

var _ pageDriver = (*fakeDriver)(nil)

func testConfig() *Config {
	config := DefaultConfig()
	config.ItemNumber = "N82E16814137765"
	config.PriceLimit = 100
	config.Email = "buyer@example.com"
	config.Password = "hunter2"
	config.CVV = "123"
	config.RefreshTime = 0
	config.RandomizedWaitCeiling = 1
	return config
}

func testLogger() *Logger {
	return NewLogger(io.Discard, true)
}
