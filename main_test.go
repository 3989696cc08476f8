package main

import (
	"context"
	"strings"
	"testing"
)

func TestGetUserDataDir(t *testing.T) {
	dir := getUserDataDir()
	if dir == "" {
		t.Fatal("expected a data directory")
	}
	if !strings.Contains(dir, "cartwatch") {
		t.Errorf("unexpected data dir %q", dir)
	}
}

func TestAcquireWithoutWindows(t *testing.T) {
	config := testConfig()
	config.DropWindows = nil

	driver := &fakeDriver{
		currentURLFn: func() (string, error) {
			return config.URLs.Cart, nil
		},
		textFn: func(selector string) (string, error) {
			return "$80.00", nil
		},
	}
	loop := newTestAcquisition(config, driver)

	out, err := acquire(context.Background(), config, loop, testLogger())
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if out.kind != outcomeSuccess {
		t.Errorf("unexpected outcome %v", out.kind)
	}
}

func TestAcquireRejectsBadWindows(t *testing.T) {
	config := testConfig()
	config.DropWindows = []string{"garbage"}

	loop := newTestAcquisition(config, &fakeDriver{})
	if _, err := acquire(context.Background(), config, loop, testLogger()); err == nil {
		t.Error("expected an error for an unparseable drop window")
	}
}
