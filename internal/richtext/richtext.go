// Package richtext bounds and cleans task descriptions. The editor on the client is
// opaque; all the server sees is the markup it produced.
package richtext

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultLimit is the maximum length of a description's raw markup
const DefaultLimit = 300

var ErrTooLong = errors.New("description too long")

// inline styles the editor can apply, plus the block wrappers contenteditable emits
var inlinePolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "s", "strike", "del", "u", "br", "div", "p", "span")
	return p
}()

// bluemonday entity-encodes text. The policy allows no attributes, so these only
// occur in text nodes where the literal characters are safe.
var punctuation = strings.NewReplacer("&#39;", "'", "&#34;", `"`, "&amp;", "&")

// Sanitize keeps bold, italic and strikethrough markup and drops everything else
func Sanitize(markup string) string {
	return strings.TrimSpace(punctuation.Replace(inlinePolicy.Sanitize(markup)))
}

// Length counts the characters of markup with tags kept and entities decoded
func Length(markup string) int {
	return utf8.RuneCountInString(html.UnescapeString(markup))
}

// Remaining is what the editor's character counter shows
func Remaining(markup string, limit int) int {
	return limit - Length(markup)
}

// Validate rejects descriptions longer than limit characters
func Validate(markup string, limit int) error {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if n := Length(markup); n > limit {
		return fmt.Errorf("%w: %d characters, limit %d", ErrTooLong, n, limit)
	}
	return nil
}
