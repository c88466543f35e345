package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/bnema/gmail-checker/internal/domain"
	"github.com/bnema/gmail-checker/internal/ports"
	"github.com/rs/zerolog"
)

type Options struct {
	Fetcher ports.FeedFetcher
	Timers  ports.Timers
	Clock   ports.Clock
	// Executor serializes every state change. When nil the Checker runs
	// its own Loop until Stop.
	Executor Executor
	// Jitter returns a uniform sample in [0, 1).
	Jitter func() float64
	Logger *zerolog.Logger

	spawn func(func())
}

// Summary is the aggregate view published after every slot update and
// every predicate change.
type Summary struct {
	// UnreadCount is nil until at least one resolved account matches the
	// predicate.
	UnreadCount    *int
	PreferredIndex int
	Accounts       []domain.AccountInfo
}

// Settled reports whether every slot has reached its first outcome.
func (s Summary) Settled() bool {
	if len(s.Accounts) == 0 {
		return false
	}
	for _, account := range s.Accounts {
		if account.LastUpdateTime.IsZero() {
			return false
		}
	}
	return true
}

func (s Summary) clone() Summary {
	out := Summary{PreferredIndex: s.PreferredIndex}
	if s.UnreadCount != nil {
		count := *s.UnreadCount
		out.UnreadCount = &count
	}
	out.Accounts = make([]domain.AccountInfo, len(s.Accounts))
	for i, account := range s.Accounts {
		if account.UnreadCount != nil {
			count := *account.UnreadCount
			account.UnreadCount = &count
		}
		out.Accounts[i] = account
	}
	return out
}

// Checker polls every account slot and keeps the aggregate unread count
// and preferred account up to date.
type Checker struct {
	exec     Executor
	pollers  []*poller
	onUpdate func(Summary)
	log      zerolog.Logger

	// predicate is only touched on exec.
	predicate domain.EmailPredicate

	mu      sync.RWMutex
	summary Summary

	stopLoop context.CancelFunc
	loopDone chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewChecker builds one poller per slot. Nothing is fetched until Start.
// onUpdate, when set, receives every published Summary on the executor.
func NewChecker(predicate domain.EmailPredicate, onUpdate func(Summary), opts Options) (*Checker, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("feed fetcher is required")
	}
	if opts.Timers == nil {
		opts.Timers = ports.SystemTimers{}
	}
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}
	if opts.Jitter == nil {
		opts.Jitter = rand.Float64
	}
	if opts.spawn == nil {
		opts.spawn = func(fn func()) { go fn() }
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	c := &Checker{
		onUpdate:  onUpdate,
		predicate: predicate,
		log:       logger,
	}

	if opts.Executor == nil {
		loop := NewLoop()
		ctx, cancel := context.WithCancel(context.Background())
		c.stopLoop = cancel
		c.loopDone = make(chan struct{})
		go func() {
			defer close(c.loopDone)
			_ = loop.Run(ctx)
		}()
		opts.Executor = loop
	}
	c.exec = opts.Executor

	c.pollers = make([]*poller, domain.MaxAccounts)
	for i := range c.pollers {
		c.pollers[i] = &poller{
			index:    i,
			state:    domain.NewAccountState(i),
			fetcher:  opts.Fetcher,
			timers:   opts.Timers,
			clock:    opts.Clock,
			exec:     c.exec,
			spawn:    opts.spawn,
			jitter:   opts.Jitter,
			log:      logger.With().Int("slot", i).Logger(),
			onUpdate: c.publish,
		}
	}
	c.summary = c.compute()

	return c, nil
}

// Start kicks the first check of every slot. Later calls do nothing.
func (c *Checker) Start() {
	c.startOnce.Do(func() {
		c.exec.Post(func() {
			c.log.Info().Int("slots", len(c.pollers)).Msg("Starting checker")
			for _, p := range c.pollers {
				p.startCheck()
			}
		})
	})
}

// Stop abandons in-flight requests and pending checks. A Checker cannot be
// restarted. Do not call it from onUpdate.
func (c *Checker) Stop() {
	c.stopOnce.Do(func() {
		done := make(chan struct{})
		c.exec.Post(func() {
			for _, p := range c.pollers {
				p.stop()
			}
			close(done)
		})

		if c.stopLoop == nil {
			return
		}
		<-done
		c.stopLoop()
		<-c.loopDone
	})
}

// UpdatePredicate replaces the inclusion predicate and republishes the
// summary. No feed is fetched.
func (c *Checker) UpdatePredicate(predicate domain.EmailPredicate) {
	c.exec.Post(func() {
		c.predicate = predicate
		c.log.Debug().Msg("Email predicate replaced")
		c.publish()
	})
}

// ForceCheck checks a slot now instead of waiting for its scheduled check.
// A slot with a request already in flight keeps that request.
func (c *Checker) ForceCheck(index int) error {
	if !domain.ValidSlot(index) {
		return fmt.Errorf("force check slot %d: %w", index, domain.ErrSlotOutOfRange)
	}

	p := c.pollers[index]
	c.exec.Post(p.startCheck)
	return nil
}

// ForceCheckURL forces a check of the slot a Gmail URL points at. It
// reports false when the URL names no known slot.
func (c *Checker) ForceCheckURL(rawURL string) bool {
	index, ok := domain.SlotIndexFromURL(rawURL)
	if !ok {
		return false
	}

	return c.ForceCheck(index) == nil
}

func (c *Checker) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.summary.clone()
}

func (c *Checker) UnreadCount() (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.summary.UnreadCount == nil {
		return 0, false
	}
	return *c.summary.UnreadCount, true
}

func (c *Checker) PreferredIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.summary.PreferredIndex
}

// PreferredURL returns the first candidate that points at the preferred
// slot, unchanged, or the slot's base URL when none does.
func (c *Checker) PreferredURL(candidates []string) string {
	preferred := c.PreferredIndex()
	for _, candidate := range candidates {
		if index, ok := domain.SlotIndexFromURL(candidate); ok && index == preferred {
			return candidate
		}
	}

	return domain.BaseURL(preferred)
}

func (c *Checker) AccountInfos() []domain.AccountInfo {
	return c.Summary().Accounts
}

func (c *Checker) compute() Summary {
	states := make([]domain.AccountState, len(c.pollers))
	for i, p := range c.pollers {
		states[i] = p.state
	}

	return Summary{
		UnreadCount:    domain.AggregateUnreadCount(states, c.predicate),
		PreferredIndex: domain.PreferredIndex(states, c.predicate),
		Accounts:       domain.AccountInfos(states, c.predicate),
	}
}

// publish runs on exec. The lock is released before onUpdate so the
// callback may read from the Checker.
func (c *Checker) publish() {
	summary := c.compute()

	c.mu.Lock()
	c.summary = summary
	c.mu.Unlock()

	if c.onUpdate != nil {
		c.onUpdate(summary.clone())
	}
}
