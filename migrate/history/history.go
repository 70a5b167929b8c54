// Package history keeps a ledger of applied table synchronizations.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	qexec "github.com/satishbabariya/sqlorm/query/executor"
)

// TableName is the ledger table.
const TableName = "_sqlorm_sync_history"

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Record is one applied synchronization.
type Record struct {
	ID            string
	Table         string
	Outcome       string
	Statements    []string
	Checksum      string
	AppliedAt     time.Time
	ExecutionTime int64 // milliseconds
	// Snapshot is the live column list before the synchronization, as JSON.
	Snapshot string
}

// Manager reads and writes the ledger.
type Manager struct {
	backend qexec.Backend
}

// NewManager returns a manager over backend.
func NewManager(backend qexec.Backend) *Manager {
	return &Manager{backend: backend}
}

// InitTable creates the ledger table if needed.
func (m *Manager) InitTable(ctx context.Context) error {
	err := m.backend.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+TableName+` (
		id TEXT PRIMARY KEY NOT NULL,
		table_name TEXT NOT NULL,
		outcome TEXT NOT NULL,
		statements TEXT NOT NULL,
		checksum TEXT NOT NULL,
		applied_at TEXT NOT NULL,
		execution_time INTEGER NOT NULL,
		schema_snapshot TEXT
	)`)
	if err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}
	return nil
}

// Record stores r, assigning its ID when empty.
func (m *Manager) Record(ctx context.Context, r *Record) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.AppliedAt.IsZero() {
		r.AppliedAt = time.Now()
	}
	stmts, err := encodeStatements(r.Statements)
	if err != nil {
		return err
	}

	stmt, err := m.backend.Prepare(ctx, `INSERT INTO `+TableName+`
		(id, table_name, outcome, statements, checksum, applied_at, execution_time, schema_snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to record sync of %s: %w", r.Table, err)
	}
	defer stmt.Finalize()

	args := []any{
		r.ID, r.Table, r.Outcome, stmts, r.Checksum,
		r.AppliedAt.UTC().Format(timeLayout), r.ExecutionTime, nullable(r.Snapshot),
	}
	for i, arg := range args {
		if err := stmt.Bind(i+1, arg); err != nil {
			return err
		}
	}
	if _, err := stmt.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record sync of %s: %w", r.Table, err)
	}
	return nil
}

// GetAll returns every record, oldest first.
func (m *Manager) GetAll(ctx context.Context) ([]Record, error) {
	return m.query(ctx, `SELECT id, table_name, outcome, statements, checksum, applied_at, execution_time, schema_snapshot
		FROM `+TableName+` ORDER BY applied_at ASC, rowid ASC`)
}

// Latest returns the newest record for table, reporting false when there
// is none.
func (m *Manager) Latest(ctx context.Context, table string) (*Record, bool, error) {
	records, err := m.query(ctx, `SELECT id, table_name, outcome, statements, checksum, applied_at, execution_time, schema_snapshot
		FROM `+TableName+` WHERE table_name = ? ORDER BY applied_at DESC, rowid DESC LIMIT 1`, table)
	if err != nil || len(records) == 0 {
		return nil, false, err
	}
	return &records[0], true, nil
}

func (m *Manager) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	stmt, err := m.backend.Prepare(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer stmt.Finalize()
	for i, arg := range args {
		if err := stmt.Bind(i+1, arg); err != nil {
			return nil, err
		}
	}

	var records []Record
	for {
		ok, err := stmt.Step(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query history: %w", err)
		}
		if !ok {
			return records, nil
		}
		var (
			r         Record
			stmts     string
			appliedAt string
			snapshot  sql.NullString
		)
		if err := stmt.Scan(&r.ID, &r.Table, &r.Outcome, &stmts, &r.Checksum, &appliedAt, &r.ExecutionTime, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		if r.Statements, err = decodeStatements(stmts); err != nil {
			return nil, err
		}
		if r.AppliedAt, err = time.Parse(timeLayout, appliedAt); err != nil {
			return nil, fmt.Errorf("history record %s: %w", r.ID, err)
		}
		r.Snapshot = snapshot.String
		records = append(records, r)
	}
}

// CalculateChecksum returns the hex SHA-256 of the applied SQL.
func CalculateChecksum(sqlText string) string {
	hash := sha256.Sum256([]byte(sqlText))
	return hex.EncodeToString(hash[:])
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
