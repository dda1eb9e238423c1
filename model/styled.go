package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	styledIndent      = "   "
	styledRightMargin = 74
)

// Member is one pre-rendered object member.
type Member struct {
	Key string
	Raw string
}

// StyledObject renders members as a styled JSON object: keys sorted, one
// member per line, three space indentation, " : " separators and a trailing
// newline. Raw values are emitted as given.
func StyledObject(members []Member) string {
	sorted := append([]Member(nil), members...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	var b strings.Builder
	if len(sorted) == 0 {
		b.WriteString("{}\n")
		return b.String()
	}
	b.WriteString("{\n")
	for i, m := range sorted {
		b.WriteString(styledIndent)
		b.WriteString(Quote(m.Key))
		b.WriteString(" : ")
		b.WriteString(m.Raw)
		if i < len(sorted)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")
	return b.String()
}

// Styled renders an arbitrary JSON value the way it is echoed back in
// diagnostics: the styled form followed by a newline. A string value
// "x" renders as "\"x\"\n". Input that is not valid UTF-8 is echoed as
// written, since decoding would replace the offending bytes.
func Styled(raw json.RawMessage) string {
	if !utf8.Valid(raw) {
		return strings.TrimSpace(string(raw)) + "\n"
	}
	v, err := decodeValue(raw)
	if err != nil {
		return strings.TrimSpace(string(raw)) + "\n"
	}
	var b strings.Builder
	writeStyled(&b, v, "")
	b.WriteByte('\n')
	return b.String()
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func writeStyled(b *strings.Builder, v any, indent string) {
	switch x := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		fmt.Fprintf(b, "%t", x)
	case json.Number:
		b.WriteString(x.String())
	case string:
		b.WriteString(Quote(x))
	case []any:
		writeStyledArray(b, x, indent)
	case map[string]any:
		if len(x) == 0 {
			b.WriteString("{}")
			return
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		inner := indent + styledIndent
		b.WriteString("{\n")
		for i, k := range keys {
			b.WriteString(inner)
			b.WriteString(Quote(k))
			b.WriteString(" : ")
			writeStyled(b, x[k], inner)
			if i < len(keys)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(indent)
		b.WriteByte('}')
	}
}

func writeStyledArray(b *strings.Builder, items []any, indent string) {
	if len(items) == 0 {
		b.WriteString("[]")
		return
	}
	// Short arrays of scalars stay on one line.
	flat := make([]string, 0, len(items))
	width := 0
	multiline := false
	for _, it := range items {
		switch it.(type) {
		case []any, map[string]any:
			multiline = true
		}
		if multiline {
			break
		}
		var s strings.Builder
		writeStyled(&s, it, indent)
		flat = append(flat, s.String())
		width += len(s.String()) + 2
	}
	if !multiline && width+len(indent)+4 <= styledRightMargin {
		b.WriteString("[ ")
		b.WriteString(strings.Join(flat, ", "))
		b.WriteString(" ]")
		return
	}
	inner := indent + styledIndent
	b.WriteString("[\n")
	for i, it := range items {
		b.WriteString(inner)
		writeStyled(b, it, inner)
		if i < len(items)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(indent)
	b.WriteByte(']')
}

// Quote returns s as a JSON string literal. Only quotes, backslashes and
// control characters are escaped; every other byte, including bytes that
// are not valid UTF-8, passes through unchanged.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
