package validation

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// NonFieldErrorsKey collects errors that do not belong to a single field.
const NonFieldErrorsKey = "non_field_errors"

// Errors maps field keys to messages. Keys are emitted in the declared order,
// then in insertion order for undeclared keys, with non_field_errors last.
type Errors struct {
	declared []string
	inserted []string
	fields   map[string][]string
}

func NewErrors(declared ...string) *Errors {
	return &Errors{
		declared: declared,
		fields:   make(map[string][]string),
	}
}

func (e *Errors) Add(field, message string) {
	if _, ok := e.fields[field]; !ok {
		e.inserted = append(e.inserted, field)
	}
	e.fields[field] = append(e.fields[field], message)
}

func (e *Errors) AddNonField(message string) {
	e.Add(NonFieldErrorsKey, message)
}

func (e *Errors) Has(field string) bool {
	_, ok := e.fields[field]
	return ok
}

func (e *Errors) Get(field string) []string {
	return e.fields[field]
}

func (e *Errors) Empty() bool {
	return len(e.fields) == 0
}

// Fields returns the keys that carry at least one message, in output order.
func (e *Errors) Fields() []string {
	rank := make(map[string]int, len(e.declared))
	for i, f := range e.declared {
		rank[f] = i
	}

	keys := make([]string, 0, len(e.fields))
	keys = append(keys, e.inserted...)
	position := func(k string) int {
		if k == NonFieldErrorsKey {
			return len(e.declared) + len(e.inserted)
		}
		if r, ok := rank[k]; ok {
			return r
		}
		return len(e.declared)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return position(keys[i]) < position(keys[j])
	})
	return keys
}

// ErrorOrNil returns e as an error when it holds messages.
func (e *Errors) ErrorOrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.fields))
	for _, k := range e.Fields() {
		parts = append(parts, k+": "+strings.Join(e.fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Errors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range e.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
