package normalize

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"logtarget/internal/document"
	"logtarget/internal/record"
)

type locator interface {
	Location() (file string, line int)
}

type coder interface {
	ErrorCode() int
}

type framer interface {
	Frames() []record.Frame
}

// Payload converts a raw payload into a document holding at least
// "@message". It never fails: unsupported shapes yield a warning message.
func (n *Normalizer) Payload(payload any) *document.Document {
	if isNilPointer(payload) {
		return wrongType(payload)
	}
	switch p := payload.(type) {
	case string:
		d := document.New()
		d.Set(KeyMessage, p)
		return d
	case *document.Document:
		return withMessage(p.Encodable())
	case map[string]any:
		return withMessage(document.FromMap(p).Encodable())
	case error:
		return n.fromError(p)
	}
	return n.fromValue(payload)
}

// withMessage synthesizes "@message" by joining the values with ";" when the
// mapping has none.
func withMessage(d *document.Document) *document.Document {
	if d.Has(KeyMessage) {
		return d
	}
	values := d.Values()
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, Stringify(v))
	}
	d.Set(KeyMessage, strings.Join(parts, ";"))
	return d
}

func (n *Normalizer) fromError(err error) *document.Document {
	var (
		file   string
		line   int
		code   int
		frames = []record.Frame{}
	)
	var loc locator
	if errors.As(err, &loc) {
		file, line = loc.Location()
	}
	var c coder
	if errors.As(err, &c) {
		code = c.ErrorCode()
	}
	var f framer
	if errors.As(err, &f) && f.Frames() != nil {
		frames = f.Frames()
	}

	d := document.New()
	d.Set(KeyMessage, err.Error())
	d.Set("file", file)
	d.Set("line", line)
	d.Set("unique", n.unique(file, line))
	d.Set(KeyTrace, frames)
	d.Set("code", code)
	d.Set("Exception", describeError(err))
	return d
}

func (n *Normalizer) unique(file string, line int) string {
	if file == "" {
		return ""
	}
	if n.opts.BasePath != "" {
		file = strings.TrimPrefix(file, n.opts.BasePath)
	}
	return file + ":" + strconv.Itoa(line)
}

func describeError(err error) string {
	if s, ok := err.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T: %s", err, err.Error())
}

func (n *Normalizer) fromValue(payload any) *document.Document {
	rv := reflect.ValueOf(payload)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return wrongType(payload)
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return wrongType(payload)
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return wrongType(payload)
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return withMessage(document.FromMap(m).Encodable())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return wrongType(payload)
		}
		items := document.New()
		for i := 0; i < rv.Len(); i++ {
			items.Set(strconv.Itoa(i), document.Encodable(rv.Index(i).Interface()))
		}
		return withMessage(items)
	case reflect.Struct:
		fields := document.New()
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			fields.Set(sf.Name, document.Encodable(rv.Field(i).Interface()))
		}
		str := ""
		if s, ok := payload.(fmt.Stringer); ok {
			str = s.String()
		}
		d := document.New()
		d.Set(KeyMessage, t.String())
		d.Set("Object", fields)
		d.Set("__toString", str)
		return d
	}
	return wrongType(payload)
}

// isNilPointer reports a typed nil pointer, which would otherwise reach
// methods that dereference their receiver.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func wrongType(payload any) *document.Document {
	name := "nil"
	if payload != nil {
		name = fmt.Sprintf("%T", payload)
	}
	d := document.New()
	d.Set(KeyMessage, fmt.Sprintf("Warning, wrong log message type '%s'.", name))
	return d
}

// Stringify renders a mapping value for the synthesized "@message".
// Scalars use their natural text form, nil is empty and composite values are
// encoded as JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x)
	}
	b, err := document.Encode(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
