package llm

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	objectPattern     = regexp.MustCompile(`(?s)\{.*\}`)
	listMarkerPattern = regexp.MustCompile(`^[\d\-\*\.\s]+`)
)

// Object is a JSON object decoded from free-text model output.
type Object map[string]any

// DecodeObject finds the outermost {...} span in text and decodes it.
// It reports false when the reply carries no decodable object.
func DecodeObject(text string) (Object, bool) {
	candidate := objectPattern.FindString(cleanMarkdownWrapper(text))
	if candidate == "" {
		return nil, false
	}

	var obj Object
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// Fields flattens the object's values to strings. Null values become empty
// strings and arrays are joined with commas. Nested objects render as
// "key: value" pairs.
func (o Object) Fields() map[string]string {
	fields := make(map[string]string, len(o))
	for key, value := range o {
		fields[key] = stringify(value)
	}
	return fields
}

// Section returns the nested object stored under key.
func (o Object) Section(key string) (Object, bool) {
	nested, ok := o[key].(map[string]any)
	if !ok {
		return nil, false
	}
	return Object(nested), true
}

// List returns the value under key as a list of non-empty strings. A single
// string is split into lines.
func (o Object) List(key string) ([]string, bool) {
	value, ok := o[key]
	if !ok {
		return nil, false
	}

	var items []string
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if s := strings.TrimSpace(stringify(item)); s != "" {
				items = append(items, s)
			}
		}
	case string:
		items = ParseListLines(v)
	case nil:
	default:
		if s := strings.TrimSpace(stringify(v)); s != "" {
			items = append(items, s)
		}
	}
	return items, true
}

// Without returns a copy of o minus the given keys.
func (o Object) Without(keys ...string) Object {
	out := make(Object, len(o))
	for k, v := range o {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// ParseListLines turns a one-item-per-line reply into phrases, dropping
// preambles and leading list markers such as "1.", "-" or "*".
func ParseListLines(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Assistant:") || strings.HasPrefix(line, "Here are") {
			continue
		}
		if item := strings.TrimSpace(listMarkerPattern.ReplaceAllString(line, "")); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := stringify(v[k]); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// cleanMarkdownWrapper strips a ```json fenced block around a reply.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```JSON")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
