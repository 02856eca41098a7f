package events

import (
	"encoding/json"
	"time"

	"jobcrawl-engine/internal/domain"
)

const (
	TypePing        = "ping"
	TypeJobCreated  = "job_created"
	TypeRunStarted  = "run_started"
	TypeRunFinished = "run_finished"
)

// Event is the envelope every SSE message carries.
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

func JobCreated(reqID string, j domain.JobRecord) string {
	return MakeEvent(reqID, TypeJobCreated, 1, map[string]any{
		"id":      j.ID,
		"source":  j.Source,
		"title":   j.Title,
		"company": j.Company,
		"link":    j.Link,
	})
}

func RunFinished(reqID string, s domain.RunSummary, err error) string {
	data := map[string]any{"summary": s}
	if err != nil {
		data["error"] = err.Error()
	}
	return MakeEvent(reqID, TypeRunFinished, 1, data)
}
