package utils

import (
	"github.com/microcosm-cc/bluemonday"
)

// card faces may carry inline math markup; everything else is stripped
var cardPolicy = bluemonday.UGCPolicy().
	AllowElements("math", "span", "sup", "sub").
	AllowAttrs("class").OnElements("span")

// SanitizeHTML strips unsafe markup from user-authored card text
func SanitizeHTML(input string) string {
	return cardPolicy.Sanitize(input)
}
