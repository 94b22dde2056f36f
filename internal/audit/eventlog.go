package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Domain event types recorded in the append-only log.
const (
	EventTestsSubmitted  = "TestsSubmitted"
	EventResultsRecorded = "ResultsRecorded"
	EventTestDeleted     = "TestDeleted"
)

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// Append records one event; data is marshaled as the JSON payload.
func (r *EventRepo) Append(ctx context.Context, typ, key string, data any) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
	return err
}
