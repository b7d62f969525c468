package transform

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; the first successful parse wins. The order
// is a policy decision, not an accident: keep it stable.
var dateLayouts = []string{
	"2006/01/02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"02-01-2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateSafe parses a free-text date by trying each supported layout in
// turn. Nil, empty, or unparseable input returns nil.
func ParseDateSafe(value *string) *time.Time {
	if value == nil {
		return nil
	}
	raw := strings.TrimSpace(*value)
	if raw == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	return nil
}
