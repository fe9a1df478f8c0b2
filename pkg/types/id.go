package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a backend identifier. The backend emits numeric ids for some
// resources and string ids for others; both decode into the same value.
type ID string

// String implements fmt.Stringer.
func (i ID) String() string {
	return string(i)
}

// IsZero reports whether the identifier is unset.
func (i ID) IsZero() bool {
	return strings.TrimSpace(string(i)) == ""
}

// FirstID returns the first non-empty identifier.
func FirstID(ids ...ID) ID {
	for _, id := range ids {
		if !id.IsZero() {
			return id
		}
	}
	return ""
}

// MarshalJSON keeps numeric ids numeric on the way back to the backend.
func (i ID) MarshalJSON() ([]byte, error) {
	if i.IsZero() {
		return []byte("null"), nil
	}
	var n json.Number = json.Number(i)
	if _, err := n.Int64(); err == nil {
		return []byte(i), nil
	}
	return json.Marshal(string(i))
}

// UnmarshalJSON accepts strings, numbers and null.
func (i *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*i = ""
		return nil
	case trimmed[0] == '"':
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*i = ID(strings.TrimSpace(raw))
		return nil
	case trimmed[0] == '{':
		// some order items embed the product where its id belongs
		var nested struct {
			ProductID ID `json:"productId"`
			ID        ID `json:"id"`
		}
		if err := json.Unmarshal(trimmed, &nested); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*i = FirstID(nested.ProductID, nested.ID)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*i = ID(n.String())
		return nil
	}
}
