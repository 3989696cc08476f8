package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	item := flag.String("item", "", "Item number to purchase (overrides config)")
	dryRun := flag.Bool("dry-run", false, "Prepare the cart but never submit the order")
	debug := flag.Bool("debug", false, "Enable detailed debug logging")
	dropTime := flag.String("drop-time", "", "Drop time in UTC (e.g. 2026-09-01 16:00) - enables scheduled mode")
	flag.Parse()

	if err := InitLocale(); err != nil {
		log.Printf("Warning: locale initialization failed, using English defaults: %v", err)
	}

	config, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *item != "" {
		config.ItemNumber = *item
	}
	if *dryRun {
		config.AutoSubmit = false
	}
	if *debug {
		config.DebugMode = true
	}
	if *dropTime != "" {
		config.DropWindows = append(config.DropWindows, *dropTime)
	}

	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                        Cartwatch                          ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Item: %s\n", config.ItemNumber)
	fmt.Printf("Price limit: %d\n", config.PriceLimit)
	if !config.AutoSubmit {
		fmt.Println(T("mode_no_submit"))
	}
	if config.DebugMode {
		fmt.Println("🔍 DEBUG MODE - Detailed logging enabled")
	}
	if len(config.DropWindows) > 0 {
		fmt.Printf(T("mode_scheduled")+"\n", len(config.DropWindows))
	}
	fmt.Println()

	logger := NewLogger(os.Stdout, config.DebugMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	automation := NewAutomation(config, logger)
	defer automation.Close()

	if err := automation.setupBrowser(); err != nil {
		log.Fatalf("Failed to setup browser: %v", err)
	}

	logger.Info(T("bot_started"))

	session := newSessionEstablisher(config, automation, logger)
	policy := newPricePolicy(config, automation, logger)
	acquisition := newAcquisitionLoop(config, automation, policy, logger)
	checkout := newCheckoutFlow(config, automation, logger)

	if err := session.Run(ctx); err != nil {
		logger.Warn(T("run_canceled"))
		return
	}
	logger.Info(T("checking_for_item"))

	out, err := acquire(ctx, config, acquisition, logger)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn(T("run_canceled"))
			return
		}
		log.Fatalf("Acquisition failed: %v", err)
	}

	if out.kind == outcomeStop {
		// The policy already logged the abort; main owns the actual exit.
		automation.Close()
		os.Exit(config.StopExitCode)
	}

	if err := checkout.Run(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Warn(T("run_canceled"))
			return
		}
		log.Fatalf("Checkout failed: %v", err)
	}

	logger.Info(T("checkout_done"))

	if config.KeepBrowserOpen {
		logger.Info(T("keeping_browser_open"))
		time.Sleep(30 * time.Second)
	}
}

// acquire runs the acquisition loop directly, or inside the drop schedule
// when windows are configured.
func acquire(ctx context.Context, config *Config, loop *acquisitionLoop, logger *Logger) (attemptOutcome, error) {
	if len(config.DropWindows) == 0 {
		return loop.Run(ctx)
	}

	schedule, err := newDropSchedule(config, logger)
	if err != nil {
		return attemptOutcome{}, err
	}
	return schedule.Run(ctx, loop.Run)
}

func getUserDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./cartwatch-data"
	}
	return filepath.Join(home, ".cartwatch")
}
