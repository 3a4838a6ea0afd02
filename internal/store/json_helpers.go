package store

import (
	"database/sql"
	"encoding/json"
)

// marshalStrings JSON-encodes a string slice for a *_json column, storing
// NULL for an empty/nil slice so the column round-trips cleanly.
func marshalStrings(v []string) any {
	if len(v) == 0 {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

func unmarshalStrings(raw *string) []string {
	if raw == nil || *raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(*raw), &out); err != nil {
		return nil
	}
	return out
}

// marshalJSON JSON-encodes any value for a *_json column, NULL on zero
// value/error — used for the richer nested shapes (path_to_root,
// location_overrides).
func marshalJSON(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		if len(t) == 0 {
			return nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return nil
	}
	return string(b)
}

func unmarshalJSON(raw *string, out any) {
	if raw == nil || *raw == "" {
		return
	}
	_ = json.Unmarshal([]byte(*raw), out)
}

func nullableBoolToPtr(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func intToBool(i sql.NullInt64) *bool {
	if !i.Valid {
		return nil
	}
	v := i.Int64 != 0
	return &v
}
