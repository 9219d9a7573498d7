package prompt

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"docchat/internal/files"
)

const (
	// DefaultMaxContextChars bounds the assembled context when no limit is configured.
	DefaultMaxContextChars = 4000

	// TruncationMarker is appended whenever context had to be cut to fit the limit.
	TruncationMarker = "\n... (truncated)"
)

// textExtensions is the set of final extensions treated as text. Upload
// validation and context inclusion both consult this set, so a file that can
// be uploaded can also appear in context.
var textExtensions = map[string]struct{}{
	"txt": {}, "md": {}, "js": {}, "ts": {}, "jsx": {}, "tsx": {},
	"json": {}, "yaml": {}, "yml": {}, "html": {}, "css": {}, "csv": {},
	"xml": {}, "log": {}, "env": {}, "py": {}, "java": {}, "cpp": {},
	"c": {}, "h": {},
}

// Prompt is a rendered model prompt together with the context blob it embeds.
type Prompt struct {
	Text       string
	RawContext string
}

const promptTemplate = `You are a helpful assistant that answers questions about the user's files.

--- BEGIN CONTEXT ---
%s
--- END CONTEXT ---

Question: %s

Answer using only the information between the context markers. If the context does not contain the answer, say so.`

// IsTextFile reports whether name's final extension is a recognized text
// type. The match is case-insensitive.
func IsTextFile(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	_, ok := textExtensions[ext]
	return ok
}

// BuildContext concatenates the text-typed records into one blob, keeping
// record order. Each surviving record contributes a "File: <name>" header
// followed by its content; records are separated by a blank line. Records
// without content (directories) and non-text files are skipped.
func BuildContext(records []files.Record) string {
	var parts []string
	for _, rec := range records {
		if rec.Content == "" || !IsTextFile(rec.Name) {
			continue
		}
		parts = append(parts, fmt.Sprintf("File: %s\n%s", rec.Name, rec.Content))
	}
	return strings.Join(parts, "\n\n")
}

// TruncateContext cuts s down to at most max bytes plus the truncation
// marker. The cut backs up to the last newline inside the limit when that
// newline sits at or past 80% of the limit, so lines are not split mid-way;
// otherwise it backs up to a rune boundary so multi-byte characters are
// never split. Content at or under the limit is returned unchanged, without
// a marker.
func TruncateContext(s string, max int) string {
	if max <= 0 {
		max = DefaultMaxContextChars
	}
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndexByte(cut, '\n'); idx >= max*80/100 {
		cut = cut[:idx]
	} else {
		for len(cut) > 0 && !utf8.RuneStart(s[len(cut)]) {
			cut = cut[:len(cut)-1]
		}
	}
	return cut + TruncationMarker
}

// Build assembles the full prompt for a query: filter and concatenate the
// records, truncate to maxChars, and render the instructional template
// around the result. An empty record set produces an empty context section.
func Build(records []files.Record, query string, maxChars int) Prompt {
	raw := TruncateContext(BuildContext(records), maxChars)
	return Prompt{
		Text:       fmt.Sprintf(promptTemplate, raw, query),
		RawContext: raw,
	}
}
