package habits

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sandeepkv93/habitd/internal/notify"
)

type scheduled struct {
	Handle  notify.Handle
	At      time.Time
	Now     bool
	Content notify.Content
}

// fakeNotifier records every gateway call and tracks which handles are live.
type fakeNotifier struct {
	mu          sync.Mutex
	next        int
	live        map[notify.Handle]bool
	calls       []scheduled
	cancelled   []notify.Handle
	scheduleErr error
	cancelErr   error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{live: make(map[notify.Handle]bool)}
}

func (f *fakeNotifier) ScheduleAt(_ context.Context, at time.Time, c notify.Content) (notify.Handle, error) {
	return f.schedule(at, false, c)
}

func (f *fakeNotifier) ScheduleNow(_ context.Context, c notify.Content) (notify.Handle, error) {
	return f.schedule(time.Time{}, true, c)
}

func (f *fakeNotifier) schedule(at time.Time, now bool, c notify.Content) (notify.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scheduleErr != nil {
		return "", f.scheduleErr
	}
	f.next++
	h := notify.Handle(fmt.Sprintf("H%d", f.next))
	if !now {
		f.live[h] = true
	}
	f.calls = append(f.calls, scheduled{Handle: h, At: at, Now: now, Content: c})
	return h, nil
}

func (f *fakeNotifier) Cancel(_ context.Context, h notify.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, h)
	if f.cancelErr != nil {
		return f.cancelErr
	}
	if !f.live[h] {
		return notify.ErrUnknownHandle
	}
	delete(f.live, h)
	return nil
}

func (f *fakeNotifier) setScheduleErr(err error) {
	f.mu.Lock()
	f.scheduleErr = err
	f.mu.Unlock()
}

func (f *fakeNotifier) setCancelErr(err error) {
	f.mu.Lock()
	f.cancelErr = err
	f.mu.Unlock()
}

func (f *fakeNotifier) liveHandles() []notify.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notify.Handle, 0, len(f.live))
	for h := range f.live {
		out = append(out, h)
	}
	return out
}

func (f *fakeNotifier) cancelledHandles() []notify.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Handle(nil), f.cancelled...)
}

func (f *fakeNotifier) immediate() []scheduled {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []scheduled
	for _, c := range f.calls {
		if c.Now {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeNotifier) scheduledCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if !c.Now {
			n++
		}
	}
	return n
}

// trackingNotifier also reports handle liveness, as a restarted gateway would.
type trackingNotifier struct {
	*fakeNotifier
}

func (t trackingNotifier) Pending(h notify.Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live[h]
}

var errGatewayDown = errors.New("gateway down")
