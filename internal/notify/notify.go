// Package notify schedules, cancels and delivers habit notifications.
package notify

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultChannelID = "habit-vip-channel"
	DefaultSound     = "default"
)

var (
	ErrGatewayClosed  = errors.New("notify: gateway closed")
	ErrUnknownHandle  = errors.New("notify: unknown handle")
	ErrInvalidChannel = errors.New("notify: channel id is required")
)

// Handle identifies a scheduled notification. It is opaque to callers.
type Handle string

type Content struct {
	Title   string
	Body    string
	Sound   string
	Channel string
	HabitID string
}

// Gateway is the notification facility the habit store drives.
type Gateway interface {
	ScheduleAt(ctx context.Context, at time.Time, c Content) (Handle, error)
	ScheduleNow(ctx context.Context, c Content) (Handle, error)
	Cancel(ctx context.Context, h Handle) error
}

// Tracker is implemented by gateways that can tell whether a handle is still live.
type Tracker interface {
	Pending(h Handle) bool
}

type Importance int

const (
	ImportanceDefault Importance = iota
	ImportanceHigh
	ImportanceMax
)

type ChannelConfig struct {
	ID         string
	Name       string
	Importance Importance
	Sound      string
	Vibration  []time.Duration
}

// DefaultChannel is the alarm channel configured at startup.
func DefaultChannel() ChannelConfig {
	return ChannelConfig{
		ID:         DefaultChannelID,
		Name:       "Mission alarms",
		Importance: ImportanceMax,
		Sound:      DefaultSound,
		Vibration:  []time.Duration{0, 250 * time.Millisecond, 500 * time.Millisecond, 250 * time.Millisecond},
	}
}

// ChannelSetup is the one-time environment bootstrap (channel + permission).
type ChannelSetup interface {
	EnsureChannel(ctx context.Context, cfg ChannelConfig) error
}

func withDefaults(c Content) Content {
	if c.Channel == "" {
		c.Channel = DefaultChannelID
	}
	if c.Sound == "" {
		c.Sound = DefaultSound
	}
	return c
}
