package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/sandeepkv93/habitd/internal/scheduler"
)

const defaultDeliverTimeout = 10 * time.Second

type BreakerSettings struct {
	FailureThreshold uint32
	MaxRequests      uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
	}
}

type LocalOptions struct {
	Buffer         int
	Deliverer      Deliverer
	Logger         *log.Logger
	Now            func() time.Time
	Breaker        BreakerSettings
	DeliverTimeout time.Duration
}

// LocalGateway keeps scheduled notifications in an in-process engine and
// hands each one to a Deliverer when it fires.
type LocalGateway struct {
	engine    *scheduler.Engine
	deliverer Deliverer
	breaker   *gobreaker.CircuitBreaker[any]
	logger    *log.Logger
	now       func() time.Time
	timeout   time.Duration

	mu       sync.Mutex
	channels map[string]ChannelConfig
	closed   bool

	done chan struct{}
}

func NewLocalGateway(opts LocalOptions) *LocalGateway {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	deliverer := opts.Deliverer
	if deliverer == nil {
		deliverer = LogDeliverer{Logger: logger}
	}
	settings := opts.Breaker
	if settings.FailureThreshold == 0 {
		settings = DefaultBreakerSettings()
	}
	timeout := opts.DeliverTimeout
	if timeout <= 0 {
		timeout = defaultDeliverTimeout
	}

	g := &LocalGateway{
		engine:    scheduler.NewEngine(opts.Buffer),
		deliverer: deliverer,
		logger:    logger,
		now:       now,
		timeout:   timeout,
		channels:  make(map[string]ChannelConfig),
		done:      make(chan struct{}),
	}
	g.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "notify-deliverer",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	g.engine.Start()
	go g.run()
	return g
}

func (g *LocalGateway) ScheduleAt(ctx context.Context, at time.Time, c Content) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c = withDefaults(c)
	id := uuid.NewString()
	err := g.engine.Schedule(scheduler.ReminderEvent{
		ID:        id,
		HabitID:   c.HabitID,
		Title:     c.Title,
		Body:      c.Body,
		Sound:     c.Sound,
		Channel:   c.Channel,
		TriggerAt: at,
	})
	if errors.Is(err, scheduler.ErrEngineStopped) {
		return "", ErrGatewayClosed
	}
	if err != nil {
		return "", fmt.Errorf("schedule notification: %w", err)
	}
	g.logger.Debug("notification scheduled", "handle", id, "habit_id", c.HabitID, "trigger_at", at)
	return Handle(id), nil
}

func (g *LocalGateway) ScheduleNow(ctx context.Context, c Content) (Handle, error) {
	return g.ScheduleAt(ctx, g.now(), c)
}

func (g *LocalGateway) Cancel(ctx context.Context, h Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := g.engine.Cancel(string(h))
	switch {
	case errors.Is(err, scheduler.ErrUnknownID):
		return ErrUnknownHandle
	case errors.Is(err, scheduler.ErrEngineStopped):
		return ErrGatewayClosed
	case err != nil:
		return err
	}
	g.logger.Debug("notification cancelled", "handle", h)
	return nil
}

func (g *LocalGateway) Pending(h Handle) bool {
	return g.engine.Pending(string(h))
}

// EnsureChannel records cfg and checks that the deliverer can reach the host.
// An unavailable host is logged and otherwise ignored.
func (g *LocalGateway) EnsureChannel(ctx context.Context, cfg ChannelConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cfg.ID == "" {
		return ErrInvalidChannel
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGatewayClosed
	}
	g.channels[cfg.ID] = cfg
	g.mu.Unlock()

	if pc, ok := g.deliverer.(PermissionChecker); ok {
		if err := pc.CheckPermission(); err != nil {
			g.logger.Warn("notification permission unavailable", "channel", cfg.ID, "error", err)
		}
	}
	return nil
}

func (g *LocalGateway) Channel(id string) (ChannelConfig, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	cfg, ok := g.channels[id]
	return cfg, ok
}

// Len is the number of notifications still waiting to fire.
func (g *LocalGateway) Len() int {
	return g.engine.Len()
}

// Dropped reports fired notifications lost because the delivery loop fell behind.
func (g *LocalGateway) Dropped() uint64 {
	return g.engine.Dropped()
}

func (g *LocalGateway) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	g.mu.Unlock()

	g.engine.Stop()
	<-g.done
	return nil
}

func (g *LocalGateway) run() {
	defer close(g.done)
	for ev := range g.engine.C() {
		g.deliver(Delivery{
			Handle:    Handle(ev.ID),
			HabitID:   ev.HabitID,
			Title:     ev.Title,
			Body:      ev.Body,
			Sound:     ev.Sound,
			Channel:   ev.Channel,
			TriggerAt: ev.TriggerAt,
			FiredAt:   g.now(),
		})
	}
}

func (g *LocalGateway) deliver(d Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	_, err := g.breaker.Execute(func() (any, error) {
		return nil, g.deliverer.Deliver(ctx, d)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		g.logger.Warn("notification skipped, deliverer unavailable", "handle", d.Handle, "title", d.Title)
		return
	}
	if err != nil {
		g.logger.Error("notification delivery failed", "handle", d.Handle, "title", d.Title, "error", err)
	}
}
