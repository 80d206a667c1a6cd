package format

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// WriteEDN writes an EDN representation of v.
//
// v is marshaled to JSON first so json tags decide field names, then walked
// with gjson so object keys keep their document order. Keys that are valid
// keywords become keywords; anything else (e.g. activity names with spaces)
// stays a string key.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := ednEncoder{pretty: pretty, indent: 2}
	enc.writeValue(&buf, gjson.ParseBytes(b), 0)
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

type ednEncoder struct {
	pretty bool
	indent int
}

func (e ednEncoder) writeValue(buf *bytes.Buffer, v gjson.Result, level int) {
	switch v.Type {
	case gjson.Null:
		buf.WriteString("nil")
	case gjson.False:
		buf.WriteString("false")
	case gjson.True:
		buf.WriteString("true")
	case gjson.String:
		buf.WriteString(strconv.Quote(v.Str))
	case gjson.Number:
		// JSON number literals are valid EDN numbers.
		buf.WriteString(v.Raw)
	case gjson.JSON:
		if v.IsArray() {
			e.writeVec(buf, v.Array(), level)
		} else {
			e.writeMap(buf, v, level)
		}
	}
}

func (e ednEncoder) open(buf *bytes.Buffer, level int) {
	if e.pretty {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(" ", (level+1)*e.indent))
	}
}

func (e ednEncoder) sep(buf *bytes.Buffer, level int) {
	if e.pretty {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(" ", (level+1)*e.indent))
		return
	}
	buf.WriteByte(' ')
}

func (e ednEncoder) close(buf *bytes.Buffer, level int) {
	if e.pretty {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(" ", level*e.indent))
	}
}

func (e ednEncoder) writeVec(buf *bytes.Buffer, xs []gjson.Result, level int) {
	buf.WriteByte('[')
	if len(xs) == 0 {
		buf.WriteByte(']')
		return
	}
	e.open(buf, level)
	for i, it := range xs {
		if i > 0 {
			e.sep(buf, level)
		}
		e.writeValue(buf, it, level+1)
	}
	e.close(buf, level)
	buf.WriteByte(']')
}

func (e ednEncoder) writeMap(buf *bytes.Buffer, m gjson.Result, level int) {
	buf.WriteByte('{')
	n := 0
	m.ForEach(func(key, value gjson.Result) bool {
		if n == 0 {
			e.open(buf, level)
		} else {
			e.sep(buf, level)
		}
		buf.WriteString(ednKey(key.Str))
		buf.WriteByte(' ')
		e.writeValue(buf, value, level+1)
		n++
		return true
	})
	if n > 0 {
		e.close(buf, level)
	}
	buf.WriteByte('}')
}

// ednKey renders k as a keyword when it is a plain identifier, else as a string.
func ednKey(k string) string {
	if isKeywordName(k) {
		return ":" + k
	}
	return strconv.Quote(k)
}

func isKeywordName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r == '*', r == '+', r == '!', r == '_', r == '?', r == '-':
		case i > 0 && (r >= '0' && r <= '9' || r == '.'):
		default:
			return false
		}
	}
	return true
}
