// Copyright (c) 2016-2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package imagetransfer

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/jmoiron/sqlx"
	"github.com/satori/go.uuid"
)

// Transfer directions recorded in the journal.
const (
	DirectionDownload = "download"
	DirectionUpload   = "upload"
	DirectionExport   = "export"
	DirectionImport   = "import"
)

// Journal record statuses.
const (
	JournalStatusStarted   = "started"
	JournalStatusSucceeded = "succeeded"
	JournalStatusFailed    = "failed"
	JournalStatusTimedOut  = "timed_out"
)

// ErrRecordNotFound is returned when a journal record does not exist.
var ErrRecordNotFound = errors.New("journal record not found")

// JournalRecord is one transfer session in the journal.
type JournalRecord struct {
	ID        string     `db:"id"`
	ImageID   string     `db:"image_id"`
	Direction string     `db:"direction"`
	Target    string     `db:"target"`
	Size      int64      `db:"size"`
	Status    string     `db:"status"`
	Error     string     `db:"error"`
	StartedAt time.Time  `db:"started_at"`
	EndedAt   *time.Time `db:"ended_at"`
}

// Journal persists transfer sessions in the local database. It is purely
// observational, so journal failures never fail a transfer.
type Journal struct {
	db  *sqlx.DB
	clk clock.Clock
}

// JournalOption allows setting optional Journal parameters.
type JournalOption func(*Journal)

// WithJournalClock configures the journal with a custom clock.
func WithJournalClock(clk clock.Clock) JournalOption {
	return func(j *Journal) { j.clk = clk }
}

// NewJournal creates a Journal on top of db.
func NewJournal(db *sqlx.DB, opts ...JournalOption) *Journal {
	j := &Journal{db: db, clk: clock.New()}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Begin records the start of a transfer session and returns its id.
func (j *Journal) Begin(imageID, direction, target string, size int64) (string, error) {
	r := &JournalRecord{
		ID:        uuid.NewV4().String(),
		ImageID:   imageID,
		Direction: direction,
		Target:    target,
		Size:      size,
		Status:    JournalStatusStarted,
		StartedAt: j.clk.Now(),
	}
	_, err := j.db.NamedExec(`
		INSERT INTO transfer_journal (
			id, image_id, direction, target, size, status, started_at
		) VALUES (
			:id, :image_id, :direction, :target, :size, :status, :started_at
		)
	`, r)
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

// Finish records the terminal state of session id, deriving the status from
// transferErr: succeeded, timed_out or failed.
func (j *Journal) Finish(id string, transferErr error) error {
	status := JournalStatusSucceeded
	msg := ""
	if transferErr != nil {
		if errors.Is(transferErr, context.DeadlineExceeded) {
			status = JournalStatusTimedOut
		} else {
			status = JournalStatusFailed
		}
		msg = transferErr.Error()
	}
	res, err := j.db.Exec(`
		UPDATE transfer_journal
		SET status = ?, error = ?, ended_at = ?
		WHERE id = ?
	`, status, msg, j.clk.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Get returns the journal record with the given id.
func (j *Journal) Get(id string) (*JournalRecord, error) {
	var r JournalRecord
	if err := j.db.Get(&r, `
		SELECT id, image_id, direction, target, size, status, error, started_at, ended_at
		FROM transfer_journal
		WHERE id = ?
	`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &r, nil
}

// List returns all journal records for imageID, most recent first.
func (j *Journal) List(imageID string) ([]*JournalRecord, error) {
	var rs []*JournalRecord
	if err := j.db.Select(&rs, `
		SELECT id, image_id, direction, target, size, status, error, started_at, ended_at
		FROM transfer_journal
		WHERE image_id = ?
		ORDER BY started_at DESC
	`, imageID); err != nil {
		return nil, err
	}
	return rs, nil
}
