package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attributes stores descriptive physical properties as a JSON object
// (width, GSM, micron, supplier lot number, and the like). The ledger
// carries them as an opaque snapshot; they never take part in invariant
// checks. Stored as JSONB in PostgreSQL.
type Attributes map[string]any

// Value implements driver.Valuer for database storage.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for database retrieval.
func (a *Attributes) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported attributes type %T", value)
	}

	return json.Unmarshal(data, a)
}

// Clone returns a shallow copy so snapshots on derived batches do not
// alias the parent's map.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
