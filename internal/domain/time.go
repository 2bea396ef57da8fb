package domain

import "time"

// publishedAtLayouts covers the timestamp shapes adapters emit: ISO-8601
// plus the common syndication date formats passed through from feeds.
var publishedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999Z07:00",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePublishedAt parses an item timestamp leniently. ok is false for an
// empty or unparseable value; callers treat that as the minimum time.
func ParsePublishedAt(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
