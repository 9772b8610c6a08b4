package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID is an upstream identifier. The school API emits ids as JSON numbers on
// some endpoints and strings on others; both decode to the same value.
type ID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// String returns the raw identifier.
func (id ID) String() string { return string(id) }

// IDFromInt formats an integer id.
func IDFromInt(v int64) ID { return ID(strconv.FormatInt(v, 10)) }

// NamedRef is the {id,name} pair the school API nests inside records.
type NamedRef struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}
