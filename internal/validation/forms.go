// Package validation contains field-level validation for submitted forms.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
)

const (
	maxTitleLen   = 200
	maxSummaryLen = 500
	maxBodyLen    = 10000
)

// PostForm validates the writable post fields. Returns a field-to-message
// map, empty when the input is valid.
func PostForm(title, summary, content string) map[string]string {
	fields := map[string]string{}

	switch {
	case strings.TrimSpace(title) == "":
		fields["title"] = "Title is required"
	case utf8.RuneCountInString(title) > maxTitleLen:
		fields["title"] = fmt.Sprintf("Title must be at most %d characters", maxTitleLen)
	}

	if utf8.RuneCountInString(summary) > maxSummaryLen {
		fields["summary"] = fmt.Sprintf("Summary must be at most %d characters", maxSummaryLen)
	}

	switch {
	case strings.TrimSpace(content) == "":
		fields["content"] = "Content is required"
	case utf8.RuneCountInString(content) > maxBodyLen:
		fields["content"] = fmt.Sprintf("Content must be at most %d characters", maxBodyLen)
	}

	return fields
}

// CommentForm validates a comment submission.
func CommentForm(body string) map[string]string {
	fields := map[string]string{}

	switch {
	case strings.TrimSpace(body) == "":
		fields["body"] = "Body is required"
	case utf8.RuneCountInString(body) > maxBodyLen:
		fields["body"] = fmt.Sprintf("Body must be at most %d characters", maxBodyLen)
	}

	return fields
}

// MarkForm validates a mark submission.
func MarkForm(value int) map[string]string {
	fields := map[string]string{}

	if value < models.MarkValueMin || value > models.MarkValueMax {
		fields["value"] = fmt.Sprintf("Value must be between %d and %d", models.MarkValueMin, models.MarkValueMax)
	}

	return fields
}
