package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Delivery is a notification whose trigger time has come.
type Delivery struct {
	Handle    Handle    `json:"handle"`
	HabitID   string    `json:"habitId,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Sound     string    `json:"sound"`
	Channel   string    `json:"channel"`
	TriggerAt time.Time `json:"triggerAt"`
	FiredAt   time.Time `json:"firedAt"`
}

type Deliverer interface {
	Deliver(ctx context.Context, d Delivery) error
}

type DelivererFunc func(ctx context.Context, d Delivery) error

func (f DelivererFunc) Deliver(ctx context.Context, d Delivery) error { return f(ctx, d) }

// PermissionChecker is implemented by deliverers that depend on the host environment.
type PermissionChecker interface {
	CheckPermission() error
}

type LogDeliverer struct {
	Logger *log.Logger
}

func (d LogDeliverer) Deliver(_ context.Context, n Delivery) error {
	logger := d.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger.Info("notification delivered", "handle", n.Handle, "habit_id", n.HabitID, "title", n.Title, "channel", n.Channel)
	return nil
}

// MultiDeliverer hands every delivery to all deliverers and joins their errors.
type MultiDeliverer []Deliverer

func (m MultiDeliverer) Deliver(ctx context.Context, d Delivery) error {
	var errs []error
	for _, inner := range m {
		if inner == nil {
			continue
		}
		if err := inner.Deliver(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiDeliverer) CheckPermission() error {
	var errs []error
	for _, inner := range m {
		if pc, ok := inner.(PermissionChecker); ok {
			if err := pc.CheckPermission(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// DesktopDeliverer shows notifications with notify-send on Linux and osascript on macOS.
type DesktopDeliverer struct {
	GOOS     string
	Run      func(ctx context.Context, name string, args ...string) error
	LookPath func(name string) (string, error)
}

func NewDesktopDeliverer() DesktopDeliverer {
	return DesktopDeliverer{
		GOOS: runtime.GOOS,
		Run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
		LookPath: exec.LookPath,
	}
}

func (d DesktopDeliverer) Deliver(ctx context.Context, n Delivery) error {
	name, args := d.command(n)
	if name == "" {
		return nil
	}
	return d.Run(ctx, name, args...)
}

func (d DesktopDeliverer) CheckPermission() error {
	name, _ := d.command(Delivery{})
	if name == "" {
		return nil
	}
	if _, err := d.LookPath(name); err != nil {
		return fmt.Errorf("notify: desktop notifications unavailable: %w", err)
	}
	return nil
}

func (d DesktopDeliverer) command(n Delivery) (string, []string) {
	switch d.GOOS {
	case "linux":
		args := []string{"--app-name=habitd"}
		if n.Channel == DefaultChannelID {
			args = append(args, "--urgency=critical")
		}
		return "notify-send", append(args, n.Title, n.Body)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		if n.Sound != "" {
			script += ` sound name "default"`
		}
		return "osascript", []string{"-e", script}
	default:
		return "", nil
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
