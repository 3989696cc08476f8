package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Locale struct {
	translations map[string]string
	locale       string
}

var globalLocale *Locale

// InitLocale initializes the global locale system. English defaults are
// compiled in; a lang/<locale>.yaml file next to the executable overrides
// individual keys for other locales.
func InitLocale() error {
	l := &Locale{
		translations: defaultTranslations(),
		locale:       "en_US",
	}

	code := DetectSystemLocale()
	if code != "" && code != "en_US" {
		overrides, err := loadLocaleFile(code)
		if err == nil {
			for key, value := range overrides {
				l.translations[key] = value
			}
			l.locale = code
		}
		// A missing translation file is fine; the defaults remain.
	}

	globalLocale = l
	return nil
}

// DetectSystemLocale reads the locale from the usual environment variables,
// e.g. "en_US" from LANG=en_US.UTF-8.
func DetectSystemLocale() string {
	for _, env := range []string{"LANG", "LC_ALL", "LC_MESSAGES"} {
		if value := os.Getenv(env); value != "" {
			if code, _, _ := strings.Cut(value, "."); code != "" {
				return code
			}
		}
	}
	return "en_US"
}

func loadLocaleFile(locale string) (map[string]string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	localeFile := filepath.Join(filepath.Dir(exePath), "lang", locale+".yaml")

	data, err := os.ReadFile(localeFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale file %s: %w", localeFile, err)
	}

	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse locale file %s: %w", localeFile, err)
	}

	return translations, nil
}

// T translates a key. The translation may be a fmt format string; callers
// pass its arguments to the logger.
func T(key string) string {
	if globalLocale == nil {
		if msg, ok := defaultTranslations()[key]; ok {
			return msg
		}
		return key
	}

	if msg, ok := globalLocale.translations[key]; ok {
		return msg
	}
	return key
}

// GetLocale returns the current locale code (e.g. "en_US", "de_DE").
func GetLocale() string {
	if globalLocale == nil {
		return "en_US"
	}
	return globalLocale.locale
}

func defaultTranslations() map[string]string {
	return map[string]string{
		"bot_started":       "Cartwatch shopping bot started",
		"checking_for_item": "Checking for item",
		"run_canceled":      "Run cancelled",
		"checkout_done":     "Checkout process finished",

		"mode_no_submit": "🛑 SAFE MODE - Order will be prepared but not submitted",
		"mode_scheduled": "⏰ SCHEDULED MODE - %d drop window(s)",

		"browser_launching":      "Launching browser...",
		"browser_launched":       "Browser ready",
		"browser_using_system":   "Using system browser at %s",
		"browser_closed_by_user": "Browser window was closed",
		"shutting_down":          "Shutting down",
		"cleaning_up":            "Cleaning up browser resources",
		"browser_destroyed":      "Browser closed",
		"keeping_browser_open":   "Keeping the browser open for 30 seconds",

		"logged_in":            "Logged in",
		"login_not_accepted":   "Login was not accepted, continuing anyway - checkout will not succeed on a signed-out session",
		"manual_auth_required": "Manual authorization required by the site. Complete it in the browser; this should only happen once.",

		"cart_no_items":       "There are no items in the cart",
		"next_attempt_in":     "The next attempt will be performed in %d seconds",
		"price_exceeds_limit": "Cart total %d exceeds limit %d, removing from cart",
		"over_limit_stop":     "Over price limit behavior is 'stop', ending the run",
		"item_added":          "Item added to cart, attempting to purchase",

		"starting_secure_checkout":  "Starting secure checkout",
		"secure_checkout_not_found": "Cannot find the secure checkout button: %v",
		"place_order_not_found":     "Cannot find the place order button",
		"account_defaults_hint":     "Make sure the account defaults for shipping address, billing address and payment method have been set",
		"cvv_waiting":               "Waiting for CVV input element",
		"cvv_not_found":             "Cannot find CVV input element",
		"cvv_entered":               "CVV data entered",
		"submit_skipped":            "Order not submitted because auto_submit is not enabled",
		"purchase_complete":         "Completed purchase",

		"time_syncing":          "Synchronizing clock...",
		"time_synced":           "Clock synchronized (offset %v)",
		"time_sync_failed":      "Clock sync failed, using local time: %v",
		"windows_configured":    "%d drop window(s) configured",
		"window_time":           "Window %d: %s",
		"window_already_passed": "Window %d has already passed, skipping",
		"window_waiting":        "Window %d opens in %v, staying dormant",
		"window_open":           "Window %d is open, starting attempts",
		"window_expired":        "Window %d expired without a purchase",
		"window_countdown":      "Next window in %v",
	}
}
