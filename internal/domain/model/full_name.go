package model

import "strings"

// FullName is a two-part user name. Either part may be empty on its own; a
// value with both parts empty means "no name recorded".
type FullName struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// NewFullName builds a FullName from both hint fields of a private chat.
// It returns nil unless both parts are present, mirroring the platform
// guarantee that first/last hints arrive together or not at all.
func NewFullName(first, last string) *FullName {
	if first == "" || last == "" {
		return nil
	}
	return &FullName{First: first, Last: last}
}

// ParseFullName splits free text on whitespace. One token fills First only;
// with more tokens the remainder is rejoined into Last, so multi-word
// surnames survive a round trip through storage. Empty input gives nil.
func ParseFullName(text string) *FullName {
	tokens := strings.Fields(text)
	switch len(tokens) {
	case 0:
		return nil
	case 1:
		return &FullName{First: tokens[0]}
	default:
		return &FullName{First: tokens[0], Last: strings.Join(tokens[1:], " ")}
	}
}

// IsEmpty reports whether no name is recorded at all.
func (n FullName) IsEmpty() bool {
	return n.First == "" && n.Last == ""
}

func (n FullName) String() string {
	if n.IsEmpty() {
		return "Unknown user name"
	}
	return strings.TrimSpace(n.First + " " + n.Last)
}
