package store

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var keyEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`)

// Key joins segments into a settings key. Dots and backslashes inside a
// segment are escaped so the segment stays a single path element.
func Key(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = keyEscaper.Replace(s)
	}

	return strings.Join(escaped, ".")
}

// splitKey splits "workspaces.43.<id>" into the root document name and the
// path inside it. A backslash makes the next character literal.
func splitKey(key string) (string, []string, error) {
	if key == "" {
		return "", nil, ErrInvalidKey
	}

	var (
		segments []string
		current  strings.Builder
		escaped  bool
	)

	for _, r := range key {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '.':
			segments = append(segments, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	if escaped {
		return "", nil, fmt.Errorf("%w: trailing escape in %q", ErrInvalidKey, key)
	}

	segments = append(segments, current.String())

	for _, s := range segments {
		if s == "" {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}

	return segments[0], segments[1:], nil
}

// readPath builds a gjson path.
func readPath(segments []string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = escape(s)
	}

	return strings.Join(escaped, ".")
}

// writePath builds an sjson path. Numeric segments are prefixed with ':' so
// sjson creates object keys instead of array slots.
func writePath(segments []string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		if isNumeric(s) {
			escaped[i] = ":" + s
			continue
		}

		escaped[i] = escape(s)
	}

	return strings.Join(escaped, ".")
}

func escape(s string) string {
	if !strings.ContainsAny(s, `\.*?|#@`) {
		return s
	}

	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '.', '*', '?', '|', '#', '@':
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	return b.String()
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return s != ""
}

// lookup returns the raw JSON at path inside doc.
func lookup(doc []byte, path []string) ([]byte, bool) {
	if doc == nil {
		return nil, false
	}

	if len(path) == 0 {
		return doc, true
	}

	res := gjson.GetBytes(doc, readPath(path))
	if !res.Exists() {
		return nil, false
	}

	return []byte(res.Raw), true
}

// assign writes raw at path inside doc, creating intermediate objects.
func assign(doc []byte, path []string, raw []byte) ([]byte, error) {
	if len(path) == 0 {
		return raw, nil
	}

	if doc == nil || !gjson.ParseBytes(doc).IsObject() {
		doc = []byte("{}")
	}

	out, err := sjson.SetRawBytes(doc, writePath(path), raw)
	if err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", strings.Join(path, "."), err)
	}

	return out, nil
}

// remove deletes path inside doc. A nil result means the whole document goes.
func remove(doc []byte, path []string) ([]byte, error) {
	if len(path) == 0 || doc == nil {
		return nil, nil
	}

	if _, ok := lookup(doc, path); !ok {
		return doc, nil
	}

	out, err := sjson.DeleteBytes(doc, writePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to delete %s: %w", strings.Join(path, "."), err)
	}

	return out, nil
}
