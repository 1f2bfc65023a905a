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
package migrations

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(up00001, down00001)
}

func up00001(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS transfer_journal (
			id         text      NOT NULL,
			image_id   text      NOT NULL,
			direction  text      NOT NULL,
			target     text      NOT NULL,
			size       integer   NOT NULL,
			status     text      NOT NULL,
			error      text      NOT NULL DEFAULT '',
			started_at timestamp NOT NULL,
			ended_at   timestamp,
			PRIMARY KEY(id)
		);`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		CREATE INDEX IF NOT EXISTS transfer_journal_image_id_idx
		ON transfer_journal (image_id);`)
	return err
}

func down00001(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS transfer_journal;`)
	return err
}
