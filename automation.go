package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// pageDriver is the page-automation capability the purchase flow consumes.
// The rod-backed Automation implements it for real runs; tests substitute a
// scripted fake so the flows can be exercised without a browser.
type pageDriver interface {
	Navigate(url string) error
	CurrentURL() (string, error)
	WaitForElement(selector string, timeout time.Duration) error
	ElementText(selector string) (string, error)
	Click(selector string) error
	ClickNth(selector string, n int) error
	ClickByText(text string) error
	Type(selector, text string) error
	Focus(selector string) error
	Wait(ctx context.Context, d time.Duration)
}

const elementTimeout = 2 * time.Second

type Automation struct {
	config   *Config
	log      *Logger
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	stopChan chan bool
}

var _ pageDriver = (*Automation)(nil)

func NewAutomation(config *Config, log *Logger) *Automation {
	return &Automation{
		config:   config,
		log:      log,
		stopChan: make(chan bool, 1),
	}
}

func (a *Automation) Close() {
	select {
	case a.stopChan <- true:
	default:
	}

	a.log.Trace(T("cleaning_up"))

	if a.page != nil {
		a.page.Close()
	}

	if a.browser != nil {
		a.browser.Close()
	}

	if a.launcher != nil {
		a.launcher.Cleanup()
	}

	a.log.Trace(T("browser_destroyed"))
}

func (a *Automation) setupBrowser() error {
	a.log.Info(T("browser_launching"))

	// Disable leakless mode on Windows to prevent deadlock
	// See: https://github.com/go-rod/rod/issues/853
	useLeakless := runtime.GOOS != "windows"

	a.launcher = launcher.New().
		Leakless(useLeakless).
		Headless(a.config.Headless)

	if a.config.BrowserProfilePath != "" {
		a.launcher = a.launcher.UserDataDir(a.config.BrowserProfilePath)
	}

	if a.config.BrowserExecutablePath != "" {
		a.launcher = a.launcher.Bin(a.config.BrowserExecutablePath)
	} else if chromePath, ok := launcher.LookPath(); ok {
		a.launcher = a.launcher.Bin(chromePath)
		a.log.Trace(T("browser_using_system"), chromePath)
	}

	url, err := a.launcher.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	a.browser = rod.New().ControlURL(url).MustConnect()

	a.page, err = stealth.Page(a.browser)
	if err != nil {
		return fmt.Errorf("failed to create stealth page: %w", err)
	}

	userAgent := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	if err := a.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
		a.log.Trace("failed to set user agent: %v", err)
	}

	if err := a.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             a.config.ViewportWidth,
		Height:            a.config.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		a.log.Trace("failed to set viewport: %v", err)
	}

	go a.watchBrowser()

	a.log.Info(T("browser_launched"))
	return nil
}

func (a *Automation) isBrowserAlive() bool {
	if a.browser == nil {
		return false
	}

	if _, err := a.browser.Version(); err != nil {
		a.log.Trace("browser version check failed: %v", err)
		return false
	}

	if a.page != nil {
		if _, err := a.page.Info(); err != nil {
			a.log.Trace("page info check failed: %v", err)
			return false
		}
	}

	return true
}

func (a *Automation) checkBrowserOrExit() {
	if !a.isBrowserAlive() {
		a.log.Warn(T("browser_closed_by_user"))
		a.log.Warn(T("shutting_down"))
		os.Exit(0)
	}
}

// watchBrowser ends the run cleanly when the operator closes the browser
// window instead of killing the process.
func (a *Automation) watchBrowser() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopChan:
			return
		case <-ticker.C:
			a.checkBrowserOrExit()
		}
	}
}

func (a *Automation) Navigate(url string) error {
	if a.page == nil {
		return fmt.Errorf("browser not initialized")
	}
	if err := a.page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := a.page.WaitLoad(); err != nil {
		return fmt.Errorf("page failed to load: %w", err)
	}
	return nil
}

func (a *Automation) CurrentURL() (string, error) {
	if a.page == nil {
		return "", fmt.Errorf("browser not initialized")
	}
	info, err := a.page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.URL, nil
}

func (a *Automation) WaitForElement(selector string, timeout time.Duration) error {
	if a.page == nil {
		return fmt.Errorf("browser not initialized")
	}
	_, err := a.page.Timeout(timeout).Element(selector)
	return err
}

func (a *Automation) ElementText(selector string) (string, error) {
	if a.page == nil {
		return "", fmt.Errorf("browser not initialized")
	}
	el, err := a.page.Timeout(elementTimeout).Element(selector)
	if err != nil {
		return "", err
	}
	return el.Text()
}

func (a *Automation) Click(selector string) error {
	if a.page == nil {
		return fmt.Errorf("browser not initialized")
	}
	el, err := a.page.Timeout(elementTimeout).Element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// ClickNth clicks the n-th (zero-based) element matching selector. It fails
// once fewer than n+1 matches remain, which callers use as the loop exit for
// repeated-removal clicking.
func (a *Automation) ClickNth(selector string, n int) error {
	if a.page == nil {
		return fmt.Errorf("browser not initialized")
	}
	els, err := a.page.Timeout(elementTimeout).Elements(selector)
	if err != nil {
		return err
	}
	if n < 0 || n >= len(els) {
		return fmt.Errorf("no element %d for selector %s (%d found)", n, selector, len(els))
	}
	return els[n].Click(proto.InputMouseButtonLeft, 1)
}

// ClickByText clicks the first button whose text matches the given pattern.
func (a *Automation) ClickByText(text string) error {
	if a.page == nil {
		return fmt.Errorf("browser not initialized")
	}
	el, err := a.page.Timeout(elementTimeout).ElementR("button", text)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (a *Automation) Type(selector, text string) error {
	if a.page == nil {
		return fmt.Errorf("browser not initialized")
	}
	el, err := a.page.Timeout(elementTimeout).Element(selector)
	if err != nil {
		return err
	}
	return el.Input(text)
}

func (a *Automation) Focus(selector string) error {
	if a.page == nil {
		return fmt.Errorf("browser not initialized")
	}
	el, err := a.page.Timeout(elementTimeout).Element(selector)
	if err != nil {
		return err
	}
	return el.Focus()
}

// Wait suspends for d, or less when the run is cancelled.
func (a *Automation) Wait(ctx context.Context, d time.Duration) {
	sleep(ctx, d)
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
