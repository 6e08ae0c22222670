package gribio

import (
	"encoding/json"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/exp/maps"
)

// fragment is one {"key": ..., "value": ...} object from grib_dump -j. A
// missing value leaves Value nil; a JSON null sets it to "null".
type fragment struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func (f fragment) complete() bool {
	return f.Key != "" && f.Value != nil
}

// Accumulator reassembles line-streamed grib_dump -j output into messages.
//
// Lines are appended to a pending buffer until it ends with "}" or "},", at
// which point the buffer is parsed as a single key/value fragment. A
// successful parse adds the field to the message being built. A failed parse
// marks a message boundary: the fields collected so far are emitted as a
// message, and the pending text is searched for a complete fragment glued to
// the record separator (grib_dump prints "],", "[" and "{" on their own
// lines), which then opens the next message. Text belonging to the broken
// fragment itself never yields a field.
//
// The zero value is ready to use. An Accumulator is not safe for concurrent
// use.
type Accumulator struct {
	pending  strings.Builder
	current  Message
	messages []Message
}

// Feed consumes one line of decoder output.
func (a *Accumulator) Feed(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	a.pending.WriteString(line)

	if !strings.HasSuffix(line, "}") && !strings.HasSuffix(line, "},") {
		return
	}
	text := strings.TrimSuffix(a.pending.String(), ",")
	a.pending.Reset()

	f, err := parseFragment(text)
	if err == nil {
		if f.complete() {
			a.set(f)
		}
		return
	}

	glog.V(3).Infof("fragment did not parse (%v), treating as message boundary", err)
	a.boundary()
	if f, ok := recoverFragment(text); ok {
		a.set(f)
	}
}

// Flush emits the message being built, if it has any fields. It is called at
// the end of the stream.
func (a *Accumulator) Flush() {
	a.boundary()
}

// Messages returns the completed messages in the order their boundaries were
// detected.
func (a *Accumulator) Messages() []Message {
	if a.messages == nil {
		return []Message{}
	}
	return a.messages
}

// Len returns the number of fields collected for the message being built.
func (a *Accumulator) Len() int {
	return len(a.current)
}

func (a *Accumulator) set(f fragment) {
	v, err := decodeValue(f.Value)
	if err != nil {
		// Unreachable for a fragment that has already been parsed.
		glog.Warningf("dropping value of key %q: %v", f.Key, err)
		return
	}
	if a.current == nil {
		a.current = Message{}
	}
	a.current[f.Key] = v
}

func (a *Accumulator) boundary() {
	if len(a.current) == 0 {
		return
	}
	glog.V(2).Infof("message %d complete with %d keys", len(a.messages), len(a.current))
	a.messages = append(a.messages, a.current.Clone())
	maps.Clear(a.current)
}

func parseFragment(text string) (fragment, error) {
	var f fragment
	err := json.Unmarshal([]byte(text), &f)
	return f, err
}

// recoverFragment finds a complete fragment that ends the text and is preceded
// only by record separators or the document opener. A fragment nested in the
// value of a broken one is not recovered.
func recoverFragment(text string) (fragment, bool) {
	for i := 1; i < len(text); i++ {
		j := strings.IndexByte(text[i:], '{')
		if j < 0 {
			break
		}
		i += j
		if !isSeparator(text[:i]) {
			continue
		}
		if f, err := parseFragment(text[i:]); err == nil && f.complete() {
			return f, true
		}
	}
	return fragment{}, false
}

// documentOpener is the start of grib_dump -j output with whitespace removed.
const documentOpener = `{"messages":`

func isSeparator(prefix string) bool {
	rest := strings.Trim(prefix, " \t\r\n[],")
	if rest == "" {
		return true
	}
	return strings.Join(strings.Fields(rest), "") == documentOpener
}
