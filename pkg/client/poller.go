package client

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"scholarly/pkg/clock"

	"github.com/rs/zerolog"
)

// FetchFunc produces the current concern list, typically
// Client.ListConcerns or Client.ListAllConcerns bound to a query.
type FetchFunc func(context.Context) ([]Concern, error)

// ChangeFunc receives the new list whenever a poll observes a snapshot
// that differs from the last one. It is the "has new data" signal the UI
// uses to badge a tab.
type ChangeFunc func([]Concern)

// Poller periodically re-fetches a concern list and propagates only
// actual changes. Start runs a baseline fetch whose error is surfaced;
// after that, poll failures are swallowed so the loop survives transient
// outages. Stop disarms the timer and invalidates any in-flight fetch.
type Poller struct {
	fetch    FetchFunc
	onChange ChangeFunc
	interval time.Duration
	clock    clock.Clock
	log      zerolog.Logger

	mu         sync.Mutex
	running    bool
	generation uint64
	inFlight   bool
	snapshot   []byte
	concerns   []Concern
	ticker     *clock.Ticker
	done       chan struct{}
}

type PollOption func(*Poller)

func WithInterval(d time.Duration) PollOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithPollClock(c clock.Clock) PollOption {
	return func(p *Poller) { p.clock = c }
}

func WithPollLogger(log zerolog.Logger) PollOption {
	return func(p *Poller) { p.log = log }
}

func NewPoller(fetch FetchFunc, onChange ChangeFunc, opts ...PollOption) *Poller {
	p := &Poller{
		fetch:    fetch,
		onChange: onChange,
		interval: 10 * time.Second,
		clock:    clock.Real(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start performs the baseline fetch synchronously and arms the poll
// timer. The baseline populates the snapshot and the observable list
// without raising the change signal: there is nothing to compare
// against yet. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.generation++
	gen := p.generation
	p.mu.Unlock()

	list, err := p.fetch(ctx)
	if err != nil {
		p.mu.Lock()
		if gen == p.generation {
			p.running = false
		}
		p.mu.Unlock()
		return err
	}
	p.apply(gen, list, false)

	p.mu.Lock()
	if gen != p.generation {
		// Stopped while the baseline fetch was in flight; nothing to
		// arm or tear down.
		p.mu.Unlock()
		return nil
	}
	ticker := p.clock.NewTicker(p.interval)
	done := make(chan struct{})
	p.ticker = ticker
	p.done = done
	p.mu.Unlock()

	go p.loop(ctx, gen, ticker, done)
	return nil
}

// Stop disarms the timer. An in-flight fetch is allowed to finish but
// its result is discarded: the generation counter moves on. Stopping
// during Start's baseline fetch is valid; the ticker is only torn down
// if it was armed.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.generation++
	ticker, done := p.ticker, p.done
	p.ticker, p.done = nil, nil
	p.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
	}
	if done != nil {
		close(done)
	}
}

// Concerns returns the last applied list.
func (p *Poller) Concerns() []Concern {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Concern, len(p.concerns))
	copy(out, p.concerns)
	return out
}

func (p *Poller) loop(ctx context.Context, gen uint64, ticker *clock.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Async so a slow fetch makes later ticks skip
			// instead of queue behind it.
			go p.poll(ctx, gen)
		}
	}
}

func (p *Poller) poll(ctx context.Context, gen uint64) {
	p.mu.Lock()
	if p.inFlight || gen != p.generation {
		p.mu.Unlock()
		return
	}
	p.inFlight = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	list, err := p.fetch(ctx)
	if err != nil {
		// Transient poll failure; the next tick tries again.
		p.log.Debug().Err(err).Msg("poll fetch failed")
		return
	}
	p.apply(gen, list, true)
}

// apply installs a fetched list if it differs from the retained
// snapshot. Stale generations (poller stopped or restarted since the
// fetch began) are discarded, which also keeps applications strictly
// sequential.
func (p *Poller) apply(gen uint64, list []Concern, signal bool) {
	raw, err := json.Marshal(list)
	if err != nil {
		p.log.Error().Err(err).Msg("snapshot marshal failed")
		return
	}

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return
	}
	if bytes.Equal(raw, p.snapshot) {
		p.mu.Unlock()
		return
	}
	p.snapshot = raw
	p.concerns = list
	cb := p.onChange
	p.mu.Unlock()

	if signal && cb != nil {
		cb(list)
	}
}
