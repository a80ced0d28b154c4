// Package events fans engine notifications out to SSE subscribers.
package events

import (
	"encoding/json"
	"time"
)

// Event types published by the engine.
const (
	TypeTaskQueued    = "task.queued"
	TypeTaskStarted   = "task.started"
	TypeTaskRetried   = "task.retried"
	TypeTaskFinished  = "task.finished"
	TypeStatusChanged = "status.changed"
	TypeSweepFinished = "sweep.finished"
	TypeReminderDue   = "reminder.due"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// TaskData is the payload for task.* events.
type TaskData struct {
	TaskID  string `json:"task_id"`
	UserID  int64  `json:"user_id"`
	Board   string `json:"board"`
	JobURL  string `json:"job_url"`
	Attempt int    `json:"attempt,omitempty"`
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

// StatusData is the payload for status.changed events.
type StatusData struct {
	ApplicationID int64  `json:"application_id"`
	From          string `json:"from"`
	To            string `json:"to"`
}
