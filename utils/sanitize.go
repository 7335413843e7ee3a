package utils

import "github.com/microcosm-cc/bluemonday"

var (
	// ugcPolicy allows a safe subset of HTML, used for announcement bodies.
	ugcPolicy = bluemonday.UGCPolicy()
	// strictPolicy strips all markup, used for plain-text fields such as
	// complaint titles and rating comments.
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS while keeping safe formatting.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizeText strips all HTML from a plain-text field.
func SanitizeText(input string) string {
	return strictPolicy.Sanitize(input)
}
