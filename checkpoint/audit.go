/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package checkpoint

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const createAuditTableQuery = `
CREATE TABLE IF NOT EXISTS checkpoint_audit (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	operation TEXT NOT NULL,
	epoch INTEGER NOT NULL,
	tick INTEGER NOT NULL,
	result_code INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	recorded_at DATETIME NOT NULL
)`

const insertAuditQuery = `
INSERT INTO checkpoint_audit (operation, epoch, tick, result_code, duration_ms, recorded_at)
VALUES (?, ?, ?, ?, ?, ?)`

// AuditLog records every checkpoint save/load attempt, success or failure,
// to a sqlite database. A nil *AuditLog is valid and every method on it is
// a no-op; Store.Audit is optional.
type AuditLog struct {
	db *sql.DB
}

// OpenAuditLog opens (creating if necessary) a sqlite database at path and
// ensures its schema exists.
func OpenAuditLog(path string) (*AuditLog, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open audit log: %w", err)
	}
	if _, err := db.Exec(createAuditTableQuery); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("checkpoint: create audit schema: %w", err)
	}
	return &AuditLog{db: db}, nil
}

func (a *AuditLog) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// RecordSave and RecordLoad are best-effort: a failure to write the audit
// row is logged and swallowed rather than surfaced, the same as the
// original's attitude toward a failed analytics write alongside a
// perfectly good trade.
func (a *AuditLog) RecordSave(epoch, tick uint32, code int, d time.Duration) {
	a.record("save", epoch, tick, code, d)
}

func (a *AuditLog) RecordLoad(epoch uint32, code int, d time.Duration) {
	a.record("load", epoch, 0, code, d)
}

func (a *AuditLog) record(operation string, epoch, tick uint32, code int, d time.Duration) {
	if a == nil || a.db == nil {
		return
	}
	_, err := a.db.Exec(insertAuditQuery, operation, epoch, tick, code, d.Milliseconds(), time.Now())
	if err != nil {
		log.Printf("checkpoint: failed to record audit row: %v", err)
	}
}
