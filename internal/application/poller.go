package application

import (
	"context"
	"net/http"
	"time"

	"github.com/bnema/gmail-checker/internal/domain"
	"github.com/bnema/gmail-checker/internal/feed"
	"github.com/bnema/gmail-checker/internal/logging"
	"github.com/bnema/gmail-checker/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// request is one in-flight feed fetch. Its generation is the only thing a
// completion or an abort is matched against.
type request struct {
	generation uint64
	id         string
	cancel     context.CancelFunc
	abort      ports.Timer
	startedAt  time.Time
}

// poller owns a single account slot. All methods must run on exec.
type poller struct {
	index    int
	state    domain.AccountState
	fetcher  ports.FeedFetcher
	timers   ports.Timers
	clock    ports.Clock
	exec     Executor
	spawn    func(func())
	jitter   func() float64
	log      zerolog.Logger
	onUpdate func()

	generation uint64
	inflight   *request

	scheduled uint64
	nextCheck ports.Timer
	stopped   bool
}

func (p *poller) BaseURL() string {
	return domain.BaseURL(p.index)
}

func (p *poller) InFlight() bool {
	return p.inflight != nil
}

// startCheck fetches the feed now, pre-empting the scheduled check. A slot
// that already has a request in flight keeps it: that request's outcome is
// the one reported.
func (p *poller) startCheck() {
	if p.stopped {
		return
	}
	if p.inflight != nil {
		p.log.Debug().Str("request_id", p.inflight.id).Msg("Check already in flight")
		return
	}

	p.stopNextCheck()

	p.generation++
	generation := p.generation
	ctx, cancel := context.WithCancel(context.Background())
	req := &request{
		generation: generation,
		id:         uuid.NewString(),
		cancel:     cancel,
		startedAt:  p.clock.Now(),
	}
	p.inflight = req

	req.abort = p.timers.AfterFunc(requestTimeout, func() {
		p.exec.Post(func() {
			p.finish(generation, ports.FeedResponse{}, &domain.TransportError{Err: domain.ErrRequestTimeout})
		})
	})

	url := domain.FeedURL(p.index)
	p.log.Info().Str("request_id", req.id).Str("url", url).Msg("Starting feed request")

	p.spawn(func() {
		resp, err := p.fetcher.Fetch(ctx, url)
		p.exec.Post(func() {
			p.finish(generation, resp, err)
		})
	})
}

// finish processes the terminal outcome of the request with the given
// generation. Anything that does not match the in-flight request is a
// late signal and is dropped.
func (p *poller) finish(generation uint64, resp ports.FeedResponse, fetchErr error) {
	req := p.inflight
	if req == nil || req.generation != generation {
		return
	}
	p.inflight = nil
	if req.abort != nil {
		req.abort.Stop()
	}
	req.cancel()

	now := p.clock.Now()
	result, err := evaluate(resp, fetchErr)
	if err != nil {
		p.state.Fail(err, now)
		p.log.Warn().
			Err(err).
			Str("request_id", req.id).
			Int("failures", p.state.FailureCount).
			Msg("Feed check failed")
	} else {
		p.state.Succeed(result.Email, result.UnreadCount, now)
		p.log.Info().
			Str("request_id", req.id).
			Str("email", logging.MaskEmail(result.Email)).
			Int("unread", result.UnreadCount).
			Dur("took", now.Sub(req.startedAt)).
			Msg("Updated unread count")
	}

	if p.onUpdate != nil {
		p.onUpdate()
	}
	p.scheduleNextCheck()
}

func evaluate(resp ports.FeedResponse, fetchErr error) (feed.Result, error) {
	if fetchErr != nil {
		if domain.IsTransportError(fetchErr) {
			return feed.Result{}, fetchErr
		}
		return feed.Result{}, &domain.TransportError{Err: fetchErr}
	}
	if resp.StatusCode != http.StatusOK {
		return feed.Result{}, &domain.TransportError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return feed.Parse(resp.Body)
}

// scheduleNextCheck replaces any pending check with a new one, backed off
// by the current failure count.
func (p *poller) scheduleNextCheck() {
	if p.stopped {
		return
	}
	p.stopNextCheck()

	delay := NextCheckDelay(p.state.FailureCount, p.jitter())
	token := p.scheduled
	p.nextCheck = p.timers.AfterFunc(delay, func() {
		p.exec.Post(func() {
			// A timer that fired just before being replaced still posts.
			if token != p.scheduled {
				return
			}
			p.nextCheck = nil
			p.startCheck()
		})
	})

	p.log.Info().Dur("delay", delay).Msg("Scheduled next check")
}

func (p *poller) stopNextCheck() {
	p.scheduled++
	if p.nextCheck != nil {
		p.nextCheck.Stop()
		p.nextCheck = nil
	}
}

// stop abandons the in-flight request, if any, and every timer.
func (p *poller) stop() {
	p.stopped = true
	p.stopNextCheck()
	if req := p.inflight; req != nil {
		p.inflight = nil
		if req.abort != nil {
			req.abort.Stop()
		}
		req.cancel()
	}
}
