package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Toggle is a tri-state flag: a setting may be reported on, reported off, or
// not reported at all. Unknown is the zero value.
type Toggle int

const (
	Unknown Toggle = iota
	True
	False
)

// ToggleOf converts a bool into a known Toggle.
func ToggleOf(b bool) Toggle {
	if b {
		return True
	}
	return False
}

func (t Toggle) IsTrue() bool    { return t == True }
func (t Toggle) IsFalse() bool   { return t == False }
func (t Toggle) IsUnknown() bool { return t != True && t != False }

func (t Toggle) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

func (t Toggle) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts JSON booleans, null, and the string forms agents use
// for firmware state ("enabled", "not present", ...).
func (t *Toggle) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "":
		*t = Unknown
		return nil
	case "true":
		*t = True
		return nil
	case "false":
		*t = False
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("toggle: expected bool, null or string, got %s", data)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "enabled", "on", "yes", "1":
		*t = True
	case "false", "disabled", "off", "no", "0", "not present":
		*t = False
	default:
		*t = Unknown
	}
	return nil
}
