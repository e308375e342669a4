/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Model is implemented by the records stored in the ledger tables.
type Model interface {
	PrimaryKey() string
	TableName() string
	OnConflict() string
}

// Status is the state of a run as stored in the ledger.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run represents the etl_run table in the database
type Run struct {
	RunID      uuid.UUID  `db:"run_id"`
	StartedAt  time.Time  `db:"started_at"`
	FinishedAt *time.Time `db:"finished_at"`
	Status     Status     `db:"status"`
	Input      string     `db:"input"`
	Output     string     `db:"output"`
	Mode       string     `db:"mode"`
	Codec      string     `db:"codec"`
	Error      *string    `db:"error"`
}

// TableName returns the name of the table in the database
func (r Run) TableName() string {
	return "etl_run"
}

// PrimaryKey returns the primary key of the table
func (r Run) PrimaryKey() string {
	return "run_id"
}

// OnConflict returns the column or constraint to be used in the UPSERT operation
func (r Run) OnConflict() string {
	return ""
}

// TableOutput represents the etl_table_output table in the database. There is one row per table
// written by a run.
type TableOutput struct {
	RunID      uuid.UUID `db:"run_id"`
	Table      string    `db:"table_name"`
	Rows       int64     `db:"rows"`
	Partitions int       `db:"partitions"`
	Skipped    bool      `db:"skipped"`
	WrittenAt  time.Time `db:"written_at"`
}

// TableName returns the name of the table in the database
func (r TableOutput) TableName() string {
	return "etl_table_output"
}

// PrimaryKey returns the primary key of the table
func (r TableOutput) PrimaryKey() string {
	return "run_id"
}

// OnConflict returns the column or constraint to be used in the UPSERT operation
func (r TableOutput) OnConflict() string {
	return "unique_run_table"
}
