package frontmatter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

var (
	// ErrMalformed is returned when the leading block is not valid YAML.
	ErrMalformed = errors.New("malformed frontmatter")
	// ErrNotObject is returned when the leading block parses to something
	// other than a key/value mapping.
	ErrNotObject = errors.New("frontmatter is not an object")
)

// Document is a note split into its metadata block and body.
type Document struct {
	Data           map[string]any
	Body           string
	HasFrontmatter bool
}

// Parse extracts the leading metadata block from content. Content without a
// block is returned whole as the body with empty data.
func Parse(content string) (*Document, error) {
	content = strings.TrimPrefix(content, "\ufeff")

	block, body, ok := split(content)
	if !ok {
		return &Document{Data: map[string]any{}, Body: content}, nil
	}

	doc := &Document{Data: map[string]any{}, Body: body, HasFrontmatter: true}
	if strings.TrimSpace(block) == "" {
		return doc, nil
	}

	var raw any
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch v := raw.(type) {
	case nil:
		// a block holding only comments
	case map[string]any:
		doc.Data = v
	case map[any]any:
		for k, val := range v {
			doc.Data[fmt.Sprint(k)] = val
		}
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, raw)
	}

	return doc, nil
}

// split finds a block opened by a delimiter line at the very top and closed by
// the next delimiter line.
func split(content string) (string, string, bool) {
	lines := strings.SplitAfter(content, "\n")
	if len(lines) == 0 || trimLine(lines[0]) != delimiter {
		return "", content, false
	}

	for i := 1; i < len(lines); i++ {
		if trimLine(lines[i]) == delimiter {
			block := strings.Join(lines[1:i], "")
			body := strings.Join(lines[i+1:], "")
			return block, body, true
		}
	}
	return "", content, false
}

func trimLine(line string) string {
	return strings.TrimRight(line, " \t\r\n")
}

// Tags returns the document's tags in declaration order, without duplicates.
// A sequence contributes each scalar element; a single scalar is one tag.
func (d *Document) Tags() []string {
	if d == nil {
		return nil
	}
	raw, ok := d.Data["tags"]
	if !ok || raw == nil {
		return nil
	}

	var candidates []any
	switch v := raw.(type) {
	case []any:
		candidates = v
	default:
		candidates = []any{v}
	}

	var tags []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		tag, ok := scalarString(c)
		if !ok || tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(s), true
	case time.Time:
		if s.Hour() == 0 && s.Minute() == 0 && s.Second() == 0 && s.Nanosecond() == 0 {
			return s.Format("2006-01-02"), true
		}
		return s.Format(time.RFC3339), true
	default:
		return "", false
	}
}
