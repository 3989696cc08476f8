package main

import (
	"fmt"
	"net/http"
	"time"
)

// timeSync keeps a clock offset against well-connected HTTP hosts so drop
// windows open on the retailer's idea of time, not the local machine's.
type timeSync struct {
	hosts    []string
	client   *http.Client
	log      *Logger
	offset   time.Duration
	lastSync time.Time
	synced   bool
}

func newTimeSync(hosts []string, log *Logger) *timeSync {
	return &timeSync{
		hosts:  hosts,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
	}
}

// Sync probes every configured host and averages the offsets. It fails only
// when no host answers at all.
func (ts *timeSync) Sync() error {
	var total time.Duration
	probed := 0

	for _, host := range ts.hosts {
		offset, err := ts.probe(host)
		if err != nil {
			ts.log.Trace("time probe failed for %s: %v", host, err)
			continue
		}
		total += offset
		probed++
		ts.log.Trace("time offset from %s: %v", host, offset)
	}

	if probed == 0 {
		return fmt.Errorf("no time probe host answered")
	}

	ts.offset = total / time.Duration(probed)
	ts.lastSync = time.Now()
	ts.synced = true
	return nil
}

// probe reads the Date header off a HEAD request and compares it to the
// local clock, splitting the round trip as the latency estimate.
func (ts *timeSync) probe(host string) (time.Duration, error) {
	req, err := http.NewRequest(http.MethodHead, host, nil)
	if err != nil {
		return 0, err
	}

	before := time.Now()
	resp, err := ts.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	after := time.Now()

	dateHeader := resp.Header.Get("Date")
	if dateHeader == "" {
		return 0, fmt.Errorf("no Date header from %s", host)
	}

	serverTime, err := http.ParseTime(dateHeader)
	if err != nil {
		return 0, fmt.Errorf("bad Date header from %s: %w", host, err)
	}

	latency := after.Sub(before) / 2
	return serverTime.Sub(before.Add(latency)), nil
}

// Now is the local clock shifted by the learned offset. Before the first
// successful sync it is just the local clock.
func (ts *timeSync) Now() time.Time {
	if !ts.synced {
		return time.Now()
	}
	return time.Now().Add(ts.offset)
}

func (ts *timeSync) Offset() time.Duration {
	return ts.offset
}

// ShouldResync reports whether the offset is stale (older than an hour) or
// was never learned.
func (ts *timeSync) ShouldResync() bool {
	if !ts.synced {
		return true
	}
	return time.Since(ts.lastSync) > time.Hour
}
