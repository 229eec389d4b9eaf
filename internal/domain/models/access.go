package models

import (
	"encoding/json"
	"fmt"
)

// AccessLevel is the ordered set of capabilities a grant can confer on a
// folder. Levels are totally ordered: ADMIN implies WRITE implies READ.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessRead
	AccessWrite
	AccessAdmin
)

var accessLevelNames = map[AccessLevel]string{
	AccessNone:  "NONE",
	AccessRead:  "READ",
	AccessWrite: "WRITE",
	AccessAdmin: "ADMIN",
}

// String returns the canonical uppercase name of the level.
func (l AccessLevel) String() string {
	if name, ok := accessLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("AccessLevel(%d)", int(l))
}

// Allows reports whether this level satisfies the required level.
func (l AccessLevel) Allows(required AccessLevel) bool {
	return l >= required
}

// Max returns the higher of two levels. Grants combine additively by
// taking the maximum, never by intersection.
func (l AccessLevel) Max(other AccessLevel) AccessLevel {
	if other > l {
		return other
	}
	return l
}

// ParseAccessLevel parses a canonical level name. NONE is not accepted as an
// input value: a grant always confers at least READ.
func ParseAccessLevel(s string) (AccessLevel, error) {
	switch s {
	case "READ":
		return AccessRead, nil
	case "WRITE":
		return AccessWrite, nil
	case "ADMIN":
		return AccessAdmin, nil
	}
	return AccessNone, fmt.Errorf("unknown access level %q", s)
}

// MarshalJSON encodes the level as its canonical name.
func (l AccessLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a canonical level name.
func (l *AccessLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAccessLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
