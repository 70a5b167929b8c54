package history

import (
	"encoding/json"
	"fmt"

	"github.com/satishbabariya/sqlorm/migrate/introspect"
)

// SerializeSnapshot encodes live columns as JSON. A nil list encodes as "".
func SerializeSnapshot(cols []introspect.ColumnMeta) (string, error) {
	if cols == nil {
		return "", nil
	}
	data, err := json.Marshal(cols)
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	return string(data), nil
}

// DeserializeSnapshot decodes a snapshot written by SerializeSnapshot.
func DeserializeSnapshot(s string) ([]introspect.ColumnMeta, error) {
	if s == "" {
		return nil, nil
	}
	var cols []introspect.ColumnMeta
	if err := json.Unmarshal([]byte(s), &cols); err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot: %w", err)
	}
	return cols, nil
}

func encodeStatements(stmts []string) (string, error) {
	if stmts == nil {
		stmts = []string{}
	}
	data, err := json.Marshal(stmts)
	if err != nil {
		return "", fmt.Errorf("failed to encode statements: %w", err)
	}
	return string(data), nil
}

func decodeStatements(s string) ([]string, error) {
	var stmts []string
	if err := json.Unmarshal([]byte(s), &stmts); err != nil {
		return nil, fmt.Errorf("failed to decode statements: %w", err)
	}
	return stmts, nil
}
