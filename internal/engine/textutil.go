package engine

import (
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "GoTLDR/1.0"
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// StripTags removes inline markup tags.
func StripTags(s string) string {
	return htmlTagRe.ReplaceAllString(s, "")
}

var elementTagRe = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)

// StripElementTags removes only element-shaped tags ("<b>", "</font>").
// Comparisons such as "a < b and c > d" are left intact.
func StripElementTags(s string) string {
	return elementTagRe.ReplaceAllString(s, "")
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&#x27;", "'",
	"&apos;", "'",
	"&nbsp;", " ",
)

// UnescapeEntities decodes the basic HTML entities found in caption text.
func UnescapeEntities(s string) string {
	return entityReplacer.Replace(s)
}

var spaceRe = regexp.MustCompile(`\s+`)

// CollapseSpace folds whitespace runs (including newlines) into single spaces.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix.
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
