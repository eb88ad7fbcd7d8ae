package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// NoteList is an ordered list of processing notes stored as JSONB.
type NoteList []string

// Value implements driver.Valuer for JSONB storage.
func (n NoteList) Value() (driver.Value, error) {
	if n == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(n)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (n *NoteList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*n = nil
		return nil
	case []byte:
		return json.Unmarshal(v, n)
	case string:
		return json.Unmarshal([]byte(v), n)
	default:
		return fmt.Errorf("NoteList.Scan: unsupported type %T", src)
	}
}
