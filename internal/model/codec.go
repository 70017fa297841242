package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type reminderRecord struct {
	DisplayTime  string `json:"displayTime"`
	ISOTimestamp string `json:"isoTimestamp"`
	ScheduledID  string `json:"scheduledId"`
}

// habitRecord is the persisted shape of a Habit. The flat reminder fields are
// the layout written by earlier releases and are only read.
type habitRecord struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	CompletedDates []string        `json:"completedDates"`
	Reminder       *reminderRecord `json:"reminder,omitempty"`
	CreatedAt      *time.Time      `json:"createdAt,omitempty"`

	LegacyReminderTime string `json:"reminderTime,omitempty"`
	LegacyReminderISO  string `json:"reminderIso,omitempty"`
	LegacyNotification string `json:"notificationId,omitempty"`
}

func Marshal(c Collection) ([]byte, error) {
	records := make([]habitRecord, 0, len(c))
	for _, h := range c {
		rec := habitRecord{
			ID:             h.ID,
			Title:          h.Title,
			CompletedDates: h.CompletedDates,
		}
		if rec.CompletedDates == nil {
			rec.CompletedDates = []string{}
		}
		if !h.CreatedAt.IsZero() {
			created := h.CreatedAt.UTC()
			rec.CreatedAt = &created
		}
		if h.Reminder != nil {
			rec.Reminder = &reminderRecord{
				DisplayTime:  h.Reminder.DisplayTime,
				ISOTimestamp: h.Reminder.ISOTimestamp,
				ScheduledID:  h.Reminder.ScheduledID,
			}
		}
		records = append(records, rec)
	}
	return json.Marshal(records)
}

// Unmarshal decodes a persisted collection. The result is not normalized.
func Unmarshal(data []byte) (Collection, error) {
	var records []habitRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode habits: %w", err)
	}
	out := make(Collection, 0, len(records))
	for _, rec := range records {
		h := Habit{
			ID:             rec.ID,
			Title:          rec.Title,
			CompletedDates: rec.CompletedDates,
		}
		if h.CompletedDates == nil {
			h.CompletedDates = []string{}
		}
		if rec.CreatedAt != nil {
			h.CreatedAt = *rec.CreatedAt
		}
		switch {
		case rec.Reminder != nil:
			h.Reminder = &Reminder{
				DisplayTime:  rec.Reminder.DisplayTime,
				ISOTimestamp: rec.Reminder.ISOTimestamp,
				ScheduledID:  rec.Reminder.ScheduledID,
			}
		case rec.LegacyNotification != "":
			h.Reminder = &Reminder{
				DisplayTime:  rec.LegacyReminderTime,
				ISOTimestamp: rec.LegacyReminderISO,
				ScheduledID:  rec.LegacyNotification,
			}
		}
		out = append(out, h)
	}
	return out, nil
}
