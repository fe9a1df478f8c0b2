package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Address is a delivery address as stored on the user profile. Older
// accounts carry a single free-form string; newer ones the structured form.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`

	Line string `json:"-"`
}

// Format renders the address the way the order payload expects it. State is
// collected at registration but not part of the delivery line.
func (a Address) Format() string {
	if line := strings.TrimSpace(a.Line); line != "" {
		return line
	}
	var b strings.Builder
	if a.Street != "" {
		b.WriteString(a.Street)
		b.WriteString(", ")
	}
	if a.City != "" {
		b.WriteString(a.City)
		b.WriteString(", ")
	}
	b.WriteString(a.ZipCode)
	return strings.TrimSpace(b.String())
}

// IsZero reports whether nothing usable was provided.
func (a Address) IsZero() bool {
	return strings.Trim(a.Format(), ", ") == ""
}

func (a Address) MarshalJSON() ([]byte, error) {
	if a.Line != "" {
		return json.Marshal(a.Line)
	}
	type structured Address
	return json.Marshal(structured(a))
}

func (a *Address) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = Address{}
		return nil
	}
	if trimmed[0] == '"' {
		var line string
		if err := json.Unmarshal(trimmed, &line); err != nil {
			return err
		}
		*a = Address{Line: line}
		return nil
	}
	type structured Address
	var s structured
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	*a = Address(s)
	return nil
}
