package relay

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Reply is the decoded shape of a successful webhook response.
// It is one of TextReply, FieldReply, OpaqueReply or NullReply.
type Reply interface {
	// Display is the text shown to the user.
	Display() string
	isReply()
}

// TextReply is a body that was a bare string: plain text or a JSON string.
type TextReply struct {
	Text string
}

// FieldReply is a structured body where one of the priority fields held a string.
type FieldReply struct {
	Field string
	Text  string
}

// OpaqueReply is any other body. It is displayed as indented JSON.
type OpaqueReply struct {
	Raw json.RawMessage
}

// NullReply is a body that decoded to JSON null. It carries nothing to show
// and is reported as a failed call.
type NullReply struct{}

func (r TextReply) Display() string  { return r.Text }
func (r FieldReply) Display() string { return r.Text }

// Display indents with two spaces and keeps the original key order.
func (r OpaqueReply) Display() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Raw, "", "  "); err != nil {
		return string(r.Raw)
	}
	return buf.String()
}

func (NullReply) Display() string { return "" }

func (TextReply) isReply()   {}
func (FieldReply) isReply()  {}
func (OpaqueReply) isReply() {}
func (NullReply) isReply()   {}

// DecodeReply classifies body and returns the decoded payload alongside it.
// Non-JSON bodies are treated as plain text.
func DecodeReply(body []byte, priority []string) (Reply, any) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return TextReply{}, ""
	}
	if !json.Valid(trimmed) {
		s := string(body)
		return TextReply{Text: s}, s
	}

	var data any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		s := string(body)
		return TextReply{Text: s}, s
	}

	switch v := data.(type) {
	case nil:
		return NullReply{}, nil
	case string:
		return TextReply{Text: v}, v
	case map[string]any:
		for _, field := range priority {
			val, ok := v[field]
			if !ok || !present(val) {
				continue
			}
			if s, isString := val.(string); isString {
				return FieldReply{Field: field, Text: s}, data
			}
			// first present field is not a string: show the whole body
			break
		}
	}
	return OpaqueReply{Raw: json.RawMessage(trimmed)}, data
}

// present mirrors truthiness: null, "", false and 0 do not count.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	}
	return true
}

// errorSnippet trims and caps an error body for display.
func errorSnippet(body []byte, max int) string {
	s := strings.TrimSpace(string(body))
	if r := []rune(s); len(r) > max {
		s = string(r[:max]) + "…"
	}
	return s
}
