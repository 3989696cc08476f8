package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	behaviorStop     = "stop"
	behaviorContinue = "continue"

	defaultWaitCeiling = 11
)

type Config struct {
	ItemNumber string `yaml:"item_number"`

	// PriceLimit is the maximum acceptable cart total, in whole currency
	// units matching the rendered total (dollars for a USD storefront).
	PriceLimit int `yaml:"price_limit"`

	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	CVV      string `yaml:"cvv"`

	// RefreshTime is the base wait in seconds between attempts after an
	// empty-cart check. A random 0..RandomizedWaitCeiling seconds is added
	// on top so repeated polling does not land on a fixed cadence.
	RefreshTime           int `yaml:"refresh_time"`
	RandomizedWaitCeiling int `yaml:"randomized_wait_ceiling"`

	OverPriceLimitBehavior string `yaml:"over_price_limit_behavior"`
	AutoSubmit             bool   `yaml:"auto_submit"`
	StopExitCode           int    `yaml:"stop_exit_code"`

	BrowserExecutablePath string `yaml:"browser_executable_path"`
	BrowserProfilePath    string `yaml:"browser_profile_path"`
	Headless              bool   `yaml:"headless"`
	KeepBrowserOpen       bool   `yaml:"keep_browser_open"`

	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`

	SettleDelayMs    int `yaml:"settle_delay_ms"`
	ChallengeWaitMs  int `yaml:"challenge_wait_ms"`
	CartSettleMs     int `yaml:"cart_settle_ms"`
	CartTotalWaitMs  int `yaml:"cart_total_wait_ms"`
	FieldRecheckMs   int `yaml:"field_recheck_ms"`
	PasswordWaitMs   int `yaml:"password_wait_ms"`
	ManualPollMs     int `yaml:"manual_poll_ms"`
	CheckoutSettleMs int `yaml:"checkout_settle_ms"`
	PlaceOrderWaitMs int `yaml:"place_order_wait_ms"`
	CVVWaitMs        int `yaml:"cvv_wait_ms"`

	// DropWindows enables scheduled mode: the bot stays dormant until each
	// window opens instead of polling from launch. Times are UTC, e.g.
	// "2026-09-01 16:00".
	DropWindows       []string `yaml:"drop_windows"`
	PreWindowMinutes  int      `yaml:"pre_window_minutes"`
	PostWindowMinutes int      `yaml:"post_window_minutes"`
	TimeProbeHosts    []string `yaml:"time_probe_hosts"`

	DebugMode bool `yaml:"debug_mode"`

	URLs      URLConfig      `yaml:"urls"`
	Selectors SelectorConfig `yaml:"selectors"`
}

// URLConfig describes the retailer's navigation surface. The markers are
// substrings matched against the current URL to classify which page the
// site landed us on.
type URLConfig struct {
	Login     string `yaml:"login"`
	AddToCart string `yaml:"add_to_cart"`
	Cart      string `yaml:"cart"`

	SignInMarker    string `yaml:"sign_in_marker"`
	ChallengeMarker string `yaml:"challenge_marker"`
	CartMarker      string `yaml:"cart_marker"`
	ItemMarker      string `yaml:"item_marker"`
}

type SelectorConfig struct {
	EmailInput         string `yaml:"email_input"`
	PasswordInput      string `yaml:"password_input"`
	SignInButton       string `yaml:"sign_in_button"`
	CartTotal          string `yaml:"cart_total"`
	RemoveItemButton   string `yaml:"remove_item_button"`
	RemoveItemIndex    int    `yaml:"remove_item_index"`
	SecureCheckoutText string `yaml:"secure_checkout_text"`
	PlaceOrderButton   string `yaml:"place_order_button"`
	CVVInput           string `yaml:"cvv_input"`
}

func DefaultConfig() *Config {
	return &Config{
		ItemNumber:             "",
		PriceLimit:             0,
		RefreshTime:            5,
		RandomizedWaitCeiling:  defaultWaitCeiling,
		OverPriceLimitBehavior: behaviorContinue,
		AutoSubmit:             false,
		StopExitCode:           0,
		BrowserProfilePath:     filepath.Join(getUserDataDir(), "browser-profile"),
		Headless:               false,
		KeepBrowserOpen:        false,
		ViewportWidth:          1920,
		ViewportHeight:         1080,
		SettleDelayMs:          1500,
		ChallengeWaitMs:        1000,
		CartSettleMs:           250,
		CartTotalWaitMs:        1000,
		FieldRecheckMs:         500,
		PasswordWaitMs:         2500,
		ManualPollMs:           500,
		CheckoutSettleMs:       5000,
		PlaceOrderWaitMs:       3000,
		CVVWaitMs:              3000,
		PreWindowMinutes:       10,
		PostWindowMinutes:      20,
		TimeProbeHosts: []string{
			"https://www.google.com",
			"https://www.cloudflare.com",
		},
		DebugMode: false,
		URLs: URLConfig{
			Login:           "https://secure.newegg.com/NewMyAccount/AccountLogin.aspx",
			AddToCart:       "https://secure.newegg.com/Shopping/AddtoCart.aspx?Submit=ADD&ItemList=%s",
			Cart:            "https://secure.newegg.com/Shopping/ShoppingCart.aspx",
			SignInMarker:    "signin",
			ChallengeMarker: "areyouahuman",
			CartMarker:      "cart",
			ItemMarker:      "ShoppingItem",
		},
		Selectors: SelectorConfig{
			EmailInput:         "#labeled-input-signEmail",
			PasswordInput:      "#labeled-input-password",
			SignInButton:       "button.btn.btn-orange",
			CartTotal:          ".summary-content-total",
			RemoveItemButton:   "button.btn.btn-mini",
			RemoveItemIndex:    1,
			SecureCheckoutText: "Secure Checkout",
			PlaceOrderButton:   "#btnCreditCard",
			CVVInput:           "[placeholder='CVV2']",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Save(path); err != nil {
			return nil, err
		}
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	config.normalize()

	if config.BrowserProfilePath != "" {
		if err := os.MkdirAll(config.BrowserProfilePath, 0755); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// normalize fills derived defaults that zero values cannot express. An unset
// randomized wait ceiling would strip all jitter from the retry cadence,
// which is exactly what the ceiling exists to provide.
func (c *Config) normalize() {
	if c.RandomizedWaitCeiling <= 0 {
		c.RandomizedWaitCeiling = defaultWaitCeiling
	}
}

func (c *Config) Validate() error {
	if c.ItemNumber == "" {
		return fmt.Errorf("item_number is required")
	}
	if c.PriceLimit <= 0 {
		return fmt.Errorf("price_limit must be greater than zero")
	}
	if c.RefreshTime < 0 {
		return fmt.Errorf("refresh_time must not be negative")
	}
	if c.Email == "" || c.Password == "" {
		return fmt.Errorf("email and password are required")
	}
	if c.CVV == "" {
		return fmt.Errorf("cvv is required")
	}
	switch c.OverPriceLimitBehavior {
	case behaviorStop, behaviorContinue:
	default:
		return fmt.Errorf("over_price_limit_behavior must be %q or %q, got %q",
			behaviorStop, behaviorContinue, c.OverPriceLimitBehavior)
	}
	return nil
}
