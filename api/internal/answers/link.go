package answers

import (
	"errors"
	"strings"
)

// ErrInvalidLink is returned when a message does not carry a task hash.
var ErrInvalidLink = errors.New("invalid task link")

const minHashLen = 5

var linkPrefixes = []string{
	"https://edu.skysmart.ru/student/",
	"http://edu.skysmart.ru/student/",
	"edu.skysmart.ru/student/",
}

// ParseTaskHash extracts the task set hash from a student link. A bare hash
// is accepted as is.
func ParseTaskHash(text string) (string, error) {
	s := strings.TrimSpace(text)
	for _, p := range linkPrefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			s = s[len(p):]
			break
		}
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "/")

	if len(s) < minHashLen || strings.ContainsAny(s, " \t\n/") {
		return "", ErrInvalidLink
	}
	return s, nil
}
