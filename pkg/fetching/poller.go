package fetching

import (
	"context"
	"log"
	"sync"
	"time"

	"InspectorCharts/pkg/graphing"
	"InspectorCharts/pkg/metrics"
)

// Update is the result of one poll.
type Update struct {
	Query   Query
	Payload *graphing.Payload
	Err     error
	At      time.Time
}

// Poller fetches the trailing window of chart data on a fixed interval
// and fans each result out to its subscribers.
type Poller struct {
	fetcher  Fetcher
	agentID  string
	window   time.Duration
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	subs    map[int]chan Update
	nextID  int
	latest  *Update
	started bool
	closed  bool

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewPoller creates a poller for agentID. It does nothing until Start.
func NewPoller(f Fetcher, agentID string, window, interval time.Duration) *Poller {
	return &Poller{
		fetcher:  f,
		agentID:  agentID,
		window:   window,
		interval: interval,
		now:      time.Now,
		subs:     make(map[int]chan Update),
		done:     make(chan struct{}),
	}
}

// Start polls once immediately and then every interval until ctx is done
// or Close is called.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.closed {
		p.mu.Unlock()
		return
	}
	p.started = true
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll fetches the current window and publishes the result.
func (p *Poller) Poll(ctx context.Context) Update {
	to := p.now()
	q := Query{AgentID: p.agentID, From: to.Add(-p.window), To: to}

	payload, err := p.fetcher.Fetch(ctx, q)
	if err != nil && ctx.Err() == nil {
		log.Printf("Warning: poll for agent %s failed: %v", p.agentID, err)
	}

	u := Update{Query: q, Payload: payload, Err: err, At: to}
	p.publish(u)
	return u
}

func (p *Poller) publish(u Update) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	if u.Err == nil {
		p.latest = &u
	}
	for _, ch := range p.subs {
		// Keep only the newest update for slow subscribers.
		select {
		case ch <- u:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- u:
			default:
			}
		}
	}
}

// Subscribe returns a channel of updates and a func that releases it.
// The channel is closed on unsubscribe or when the poller closes.
func (p *Poller) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 1)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		close(ch)
		return ch, func() {}
	}

	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	metrics.SetSubscribers(len(p.subs))

	var once sync.Once
	return ch, func() {
		once.Do(func() { p.unsubscribe(id) })
	}
}

func (p *Poller) unsubscribe(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ch, ok := p.subs[id]; ok {
		delete(p.subs, id)
		close(ch)
		metrics.SetSubscribers(len(p.subs))
	}
}

// Latest returns the most recent successful update.
func (p *Poller) Latest() (Update, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.latest == nil {
		return Update{}, false
	}
	return *p.latest, true
}

// Subscribers returns the number of active subscriptions.
func (p *Poller) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Close stops polling and completes every subscription. It is safe to
// call more than once.
func (p *Poller) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		cancel := p.cancel
		started := p.started
		p.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if started {
			<-p.done
		}

		p.mu.Lock()
		for id, ch := range p.subs {
			delete(p.subs, id)
			close(ch)
		}
		metrics.SetSubscribers(0)
		p.mu.Unlock()
	})
}
