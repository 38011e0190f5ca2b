// Package ingestion turns raw form submissions into normalized Submission
// values, whether they arrive as webhook payloads or are pulled from the
// Forms API.
package ingestion

import (
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/rafael/certificate-automator/internal/types"
)

// FormEvent is one raw form submission: question titles mapped to answers,
// plus the respondent email when the form collects it.
type FormEvent struct {
	Answers         map[string]string `json:"answers"`
	RespondentEmail string            `json:"respondent_email,omitempty"`
}

// Normalized answer keys.
const (
	keyFullName       = "full_name"
	keyEmail          = "email"
	keyEmailAddress   = "email_address"
	keyCourseName     = "course_name"
	keyCourseDuration = "course_duration"
	keyCompletionDate = "course_completion_date"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// NormalizeKey lowers a question title to its canonical snake_case form.
func NormalizeKey(title string) string {
	return whitespacePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "_")
}

// Normalize maps a raw form event to a Submission. Question titles are
// snake_cased before lookup, the completion date is coerced from either a
// bare date or a full timestamp (defaulting to now), and a bare numeric
// duration gets the " horas" suffix so certificates read naturally. A
// collected respondent email always overrides an answered one; the platform
// verified it.
func Normalize(event FormEvent, now time.Time) types.Submission {
	answers := map[string]string{}
	for title, value := range event.Answers {
		answers[NormalizeKey(title)] = strings.TrimSpace(value)
	}

	email := answers[keyEmail]
	if email == "" {
		email = answers[keyEmailAddress]
	}
	if respondent := strings.TrimSpace(event.RespondentEmail); respondent != "" {
		email = respondent
	}

	sub := types.Submission{
		FullName:       answers[keyFullName],
		Email:          email,
		CourseName:     answers[keyCourseName],
		CourseDuration: normalizeDuration(answers[keyCourseDuration]),
		CompletionDate: parseCompletionDate(answers[keyCompletionDate], now),
	}
	return sub
}

func normalizeDuration(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.Contains(strings.ToLower(raw), "hora") {
		return raw
	}
	return raw + " horas"
}

func parseCompletionDate(raw string, now time.Time) time.Time {
	if raw == "" {
		return now
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339, "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	log.Printf("ingestion: unparseable completion date %q, using current time", raw)
	return now
}
