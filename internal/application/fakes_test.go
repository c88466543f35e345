package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/gmail-checker/internal/domain"
	"github.com/bnema/gmail-checker/internal/ports"
)

type inlineExecutor struct{}

func (inlineExecutor) Post(fn func()) {
	fn()
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (t *fakeTimer) active() bool {
	return !t.stopped && !t.fired
}

// fire runs the callback even if the timer was stopped, like a timer whose
// goroutine had already started.
func (t *fakeTimer) fire() {
	t.fired = true
	t.fn()
}

type fakeTimers struct {
	created []*fakeTimer
}

func (f *fakeTimers) AfterFunc(d time.Duration, fn func()) ports.Timer {
	t := &fakeTimer{delay: d, fn: fn}
	f.created = append(f.created, t)
	return t
}

func (f *fakeTimers) active() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range f.created {
		if t.active() {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeTimers) activeWithDelay(d time.Duration) []*fakeTimer {
	var out []*fakeTimer
	for _, t := range f.active() {
		if t.delay == d {
			out = append(out, t)
		}
	}
	return out
}

type fetchResult struct {
	resp ports.FeedResponse
	err  error
}

// fakeFetcher answers from a per-URL script. The last scripted answer for a
// URL is repeated.
type fakeFetcher struct {
	script map[string][]fetchResult
	calls  []string
	ctxs   []context.Context
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{script: map[string][]fetchResult{}}
}

func (f *fakeFetcher) on(index int, results ...fetchResult) {
	f.script[domain.FeedURL(index)] = results
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (ports.FeedResponse, error) {
	f.calls = append(f.calls, url)
	f.ctxs = append(f.ctxs, ctx)

	results := f.script[url]
	if len(results) == 0 {
		return ports.FeedResponse{}, fmt.Errorf("no scripted response for %s", url)
	}
	next := results[0]
	if len(results) > 1 {
		f.script[url] = results[1:]
	}
	return next.resp, next.err
}

func (f *fakeFetcher) callsFor(index int) int {
	count := 0
	for _, url := range f.calls {
		if url == domain.FeedURL(index) {
			count++
		}
	}
	return count
}

// deferredSpawn queues fetch goroutines so tests decide when they complete.
type deferredSpawn struct {
	queue []func()
}

func (d *deferredSpawn) spawn(fn func()) {
	d.queue = append(d.queue, fn)
}

func (d *deferredSpawn) runAll() {
	for len(d.queue) > 0 {
		fn := d.queue[0]
		d.queue = d.queue[1:]
		fn()
	}
}

func inlineSpawn(fn func()) {
	fn()
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func (c *fixedClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func okFeed(email string, count int) fetchResult {
	return fetchResult{resp: ports.FeedResponse{
		StatusCode: 200,
		Status:     "200 OK",
		Body:       atomFeed(email, count),
	}}
}

func httpStatus(code int, text string) fetchResult {
	return fetchResult{resp: ports.FeedResponse{StatusCode: code, Status: text}}
}

func atomFeed(email string, count int) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<feed version="0.3" xmlns="http://purl.org/atom/ns#">
<title>Gmail - Inbox for %s</title>
<fullcount>%d</fullcount>
</feed>`, email, count))
}

func constJitter(r float64) func() float64 {
	return func() float64 { return r }
}
