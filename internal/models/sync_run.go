package models

import "time"

// SyncRun records one scheduled or manual sync execution. Used for
// observability only.
type SyncRun struct {
	ID        int       `db:"id"`
	DaySlot   string    `db:"day_slot"`
	StartedAt time.Time `db:"started_at"`
	Steps     []SyncStepResult
}

// SyncStepResult is the outcome of one step within a sync run.
type SyncStepResult struct {
	ID      int    `db:"id"`
	RunID   int    `db:"run_id"`
	Step    string `db:"step"`
	Success bool   `db:"success"`
	Message string `db:"message"`
}
