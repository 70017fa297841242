// Package habits owns the habit collection and sequences its side effects:
// reminder scheduling, completion notifications, banners and persistence.
package habits

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/sandeepkv93/habitd/internal/banner"
	"github.com/sandeepkv93/habitd/internal/clock"
	"github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/notify"
	"github.com/sandeepkv93/habitd/internal/storage"
)

const DefaultStorageKey = "habits"

const (
	completeTitle    = "MISSION COMPLETE! 🎉"
	completeBanner   = "Good job, Agent!"
	reminderTitle    = "⏰ WAKE UP AGENT!"
	reminderSetTitle = "ALARM SET ✅"
	reminderSetBody  = "Reminder scheduled"
	alarmFailedTitle = "ALARM FAILED"
	alarmFailedBody  = "Could not schedule reminder"
	wrongTimeTitle   = "WRONG TIME"
	wrongTimeBody    = "Pick a time in the future"
)

type Options struct {
	Clock      clock.Clock
	Location   *time.Location
	Logger     *log.Logger
	Banner     *banner.Publisher
	NewID      func() string
	StorageKey string
}

type Store struct {
	mu     sync.Mutex
	habits model.Collection

	notifier notify.Gateway
	clock    clock.Clock
	loc      *time.Location
	logger   *log.Logger
	banner   *banner.Publisher
	ownsBnr  bool
	newID    func() string

	persist  *persister
	inflight sync.WaitGroup
	closed   bool
}

func New(store storage.Gateway, notifier notify.Gateway, opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.NewID == nil {
		opts.NewID = newHabitID
	}
	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}
	owns := false
	if opts.Banner == nil {
		opts.Banner = banner.New(banner.DefaultDelay)
		owns = true
	}

	return &Store{
		habits:   model.Collection{},
		notifier: notifier,
		clock:    opts.Clock,
		loc:      opts.Location,
		logger:   opts.Logger,
		banner:   opts.Banner,
		ownsBnr:  owns,
		newID:    opts.NewID,
		persist:  newPersister(store, opts.StorageKey, opts.Logger),
	}
}

func newHabitID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load replaces the collection with the persisted one. Read and decode
// failures leave an empty collection; they are logged, never returned.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.habits = s.readPersisted(ctx)
	if s.rearmReminders(ctx) {
		s.persistLocked()
	}
	s.logger.Info("habits loaded", "count", len(s.habits))
}

func (s *Store) readPersisted(ctx context.Context) model.Collection {
	data, err := s.persist.gateway.Load(ctx, s.persist.key)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debug("no stored habits", "key", s.persist.key)
		return model.Collection{}
	}
	if err != nil {
		s.logger.Warn("load habits failed, starting empty", "key", s.persist.key, "error", err)
		return model.Collection{}
	}
	collection, err := model.Unmarshal(data)
	if err != nil {
		s.logger.Warn("stored habits unreadable, starting empty", "key", s.persist.key, "error", err)
		return model.Collection{}
	}
	return collection.Normalize()
}

// rearmReminders reschedules future reminders whose handles did not survive a
// restart. Reminders in the past are kept as they are.
func (s *Store) rearmReminders(ctx context.Context) bool {
	tracker, ok := s.notifier.(notify.Tracker)
	if !ok {
		return false
	}
	now := s.clock.Now()
	changed := false
	for i := range s.habits {
		h := &s.habits[i]
		if h.Reminder == nil || tracker.Pending(notify.Handle(h.Reminder.ScheduledID)) {
			continue
		}
		at, err := h.Reminder.At()
		if err != nil || !at.After(now) {
			continue
		}
		handle, err := s.notifier.ScheduleAt(ctx, at, reminderContent(*h))
		if err != nil {
			s.logger.Warn("re-arm reminder failed", "habit_id", h.ID, "error", err)
			continue
		}
		h.Reminder.ScheduledID = string(handle)
		changed = true
		s.logger.Debug("reminder re-armed", "habit_id", h.ID, "handle", handle)
	}
	return changed
}

// Add appends a habit. A blank title is ignored.
func (s *Store) Add(ctx context.Context, title string) (model.Habit, bool) {
	title, err := ValidateTitle(title)
	if err != nil {
		return model.Habit{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := model.Habit{
		ID:             s.uniqueIDLocked(),
		Title:          title,
		CompletedDates: []string{},
		CreatedAt:      s.clock.Now().UTC(),
	}
	s.habits = append(s.habits, h)
	s.persistLocked()
	s.logger.Debug("habit added", "habit_id", h.ID)
	return h.Clone(), true
}

func (s *Store) uniqueIDLocked() string {
	for range 8 {
		id := s.newID()
		if id != "" && s.habits.Index(id) < 0 {
			return id
		}
	}
	return uuid.NewString()
}

// Delete cancels any reminder of the habit and removes it.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.habits.Index(id)
	if idx < 0 {
		return false
	}
	if r := s.habits[idx].Reminder; r != nil {
		s.cancelLocked(ctx, id, r.ScheduledID)
	}
	s.habits = append(s.habits[:idx:idx], s.habits[idx+1:]...)
	s.persistLocked()
	s.logger.Debug("habit deleted", "habit_id", id)
	return true
}

func (s *Store) Rename(ctx context.Context, id, title string) bool {
	title, err := ValidateTitle(title)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.habits.Index(id)
	if idx < 0 {
		return false
	}
	s.habits[idx].Title = title
	s.persistLocked()
	return true
}

// ToggleCompletion flips today's completion. Completing clears the reminder,
// sends a completion notification and shows the celebration banner.
// Un-completing does not bring a cleared reminder back.
func (s *Store) ToggleCompletion(ctx context.Context, id string) (completed bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.habits.Index(id)
	if idx < 0 {
		return false, false
	}
	h := &s.habits[idx]
	today := clock.DayKey(s.clock.Now(), s.loc)

	if h.Unmark(today) {
		s.persistLocked()
		return false, true
	}

	h.MarkCompleted(today)
	if h.Reminder != nil {
		s.cancelLocked(ctx, h.ID, h.Reminder.ScheduledID)
		h.Reminder = nil
	}
	s.notifyAsync(ctx, notify.Content{
		Title:   completeTitle,
		Body:    "Target \"" + h.Title + "\" done.",
		HabitID: h.ID,
	})
	s.banner.Show(completeTitle, completeBanner)
	s.persistLocked()
	return true, true
}

// SetReminder replaces the reminder of a habit with one firing at at.
// An unknown id is a no-op.
func (s *Store) SetReminder(ctx context.Context, id string, at time.Time) error {
	if !at.After(s.clock.Now()) {
		s.banner.Show(wrongTimeTitle, wrongTimeBody)
		return &ValidationError{Field: "at", Err: ErrPastTimestamp}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.habits.Index(id)
	if idx < 0 {
		return nil
	}
	h := &s.habits[idx]
	if h.Reminder != nil {
		s.cancelLocked(ctx, h.ID, h.Reminder.ScheduledID)
		h.Reminder = nil
		s.persistLocked()
	}

	handle, err := s.notifier.ScheduleAt(ctx, at, reminderContent(*h))
	if err != nil {
		s.logger.Error("schedule reminder failed", "habit_id", h.ID, "at", at, "error", err)
		s.banner.Show(alarmFailedTitle, alarmFailedBody)
		return fmt.Errorf("%w: %w", ErrSchedulingFailed, err)
	}

	h.Reminder = &model.Reminder{
		DisplayTime:  clock.DisplayTime(at, s.loc),
		ISOTimestamp: clock.ISOTimestamp(at),
		ScheduledID:  string(handle),
	}
	s.banner.Show(reminderSetTitle, reminderSetBody)
	s.persistLocked()
	s.logger.Debug("reminder set", "habit_id", h.ID, "handle", handle, "at", h.Reminder.ISOTimestamp)
	return nil
}

// TriggerNow sends an immediate notification and mirrors it in the banner.
func (s *Store) TriggerNow(ctx context.Context, title, body string) error {
	if _, err := s.notifier.ScheduleNow(ctx, notify.Content{Title: title, Body: body}); err != nil {
		s.logger.Error("immediate notification failed", "title", title, "error", err)
		s.banner.Show(alarmFailedTitle, alarmFailedBody)
		return fmt.Errorf("%w: %w", ErrSchedulingFailed, err)
	}
	s.banner.Show(title, body)
	return nil
}

func (s *Store) Habits() model.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.habits.Clone()
}

func (s *Store) Habit(id string) (model.Habit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.habits.Index(id)
	if idx < 0 {
		return model.Habit{}, false
	}
	return s.habits[idx].Clone(), true
}

func (s *Store) Summary() model.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Summarize(s.habits, clock.DayKey(s.clock.Now(), s.loc))
}

func (s *Store) Banner() banner.State {
	return s.banner.State()
}

func (s *Store) BannerChanges() <-chan banner.State {
	return s.banner.Changes()
}

func (s *Store) Now() time.Time {
	return s.clock.Now()
}

func (s *Store) Location() *time.Location {
	return s.loc
}

// Flush waits until the newest snapshot has been written.
func (s *Store) Flush(ctx context.Context) error {
	return s.persist.flush(ctx)
}

// Close waits for in-flight notifications, flushes and stops the writer.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	waited := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
		return ctx.Err()
	}

	err := s.persist.flush(ctx)
	s.persist.close()
	if s.ownsBnr {
		s.banner.Close()
	}
	return err
}

func (s *Store) cancelLocked(ctx context.Context, habitID, handle string) {
	if err := s.notifier.Cancel(ctx, notify.Handle(handle)); err != nil {
		s.logger.Warn("cancel reminder failed", "habit_id", habitID, "handle", handle, "error", err)
	}
}

func (s *Store) notifyAsync(ctx context.Context, c notify.Content) {
	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if _, err := s.notifier.ScheduleNow(ctx, c); err != nil {
			s.logger.Warn("completion notification failed", "habit_id", c.HabitID, "error", err)
		}
	}()
}

func (s *Store) persistLocked() {
	data, err := model.Marshal(s.habits)
	if err != nil {
		s.logger.Error("encode habits failed", "error", err)
		return
	}
	s.persist.enqueue(data)
}

func reminderContent(h model.Habit) notify.Content {
	return notify.Content{
		Title:   reminderTitle,
		Body:    "Time for: " + h.Title,
		Channel: notify.DefaultChannelID,
		HabitID: h.ID,
	}
}
