package domain

import "time"

// Timestamps holds the standard creation and modification times for persisted entities.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Metadata is a free-form JSON object stored alongside journals, runs and issues.
type Metadata map[string]any

// String returns the value stored under key if it is a non-empty string.
func (m Metadata) String(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Contains reports whether every key/value in subset is present in m.
// Values are compared with ==, which is enough for the flat string/number
// predicates used by the journal existence fallback.
func (m Metadata) Contains(subset Metadata) bool {
	for k, want := range subset {
		got, ok := m[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}
