// Package document provides the ordered key/value mapping that flows through
// the target: structured payloads, context and normalized documents.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Document is a string-keyed mapping that remembers insertion order. The
// order is kept when the document is encoded to JSON. The zero value is an
// empty document ready to use.
type Document struct {
	keys   []string
	values map[string]any
}

func New() *Document {
	return &Document{values: make(map[string]any)}
}

// FromMap copies m into a new Document. Go maps carry no order, so keys are
// sorted to keep the result deterministic.
func FromMap(m map[string]any) *Document {
	d := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d.Set(k, m[k])
	}
	return d
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position and gets the new value.
func (d *Document) Set(key string, v any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

func (d *Document) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

func (d *Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

func (d *Document) Delete(key string) {
	if d == nil {
		return
	}
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns a copy of the keys in order.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Range calls fn for every entry in order until fn returns false.
func (d *Document) Range(fn func(key string, v any) bool) {
	if d == nil {
		return
	}
	for _, k := range d.keys {
		if !fn(k, d.values[k]) {
			return
		}
	}
}

// Values returns the values in key order.
func (d *Document) Values() []any {
	if d == nil {
		return nil
	}
	out := make([]any, 0, len(d.keys))
	for _, k := range d.keys {
		out = append(out, d.values[k])
	}
	return out
}

// Merge sets every entry of other on d, in other's order.
func (d *Document) Merge(other *Document) {
	other.Range(func(k string, v any) bool {
		d.Set(k, v)
		return true
	})
}

// Clone returns a shallow copy.
func (d *Document) Clone() *Document {
	c := New()
	c.Merge(d)
	return c
}

// Encodable returns a copy of d in which every value that cannot be encoded
// as JSON is replaced by its %v text. Nested documents are checked entry by
// entry.
func (d *Document) Encodable() *Document {
	out := New()
	d.Range(func(k string, v any) bool {
		out.Set(k, Encodable(v))
		return true
	})
	return out
}

// Encodable returns v when it encodes as JSON, otherwise its %v text.
func Encodable(v any) any {
	if d, ok := v.(*Document); ok {
		if d == nil {
			return nil
		}
		return d.Encodable()
	}
	if _, err := encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return v
}

// Map returns the entries as a plain map. Nested documents are converted too.
func (d *Document) Map() map[string]any {
	if d == nil {
		return nil
	}
	m := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		v := d.values[k]
		if nested, ok := v.(*Document); ok {
			v = nested.Map()
		}
		m[k] = v
	}
	return m
}

func (d *Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := encode(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := encode(d.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Document) UnmarshalJSON(b []byte) error {
	parsed, err := Parse(b)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

// Encode renders v as compact JSON without HTML escaping.
func Encode(v any) ([]byte, error) {
	return encode(v)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
