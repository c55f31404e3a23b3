package document

import (
	"errors"
	"fmt"

	"github.com/valyala/fastjson"
)

// ErrNotObject is returned by Parse when the input is valid JSON but not an
// object.
var ErrNotObject = errors.New("document: JSON value is not an object")

// Parse decodes a JSON object keeping the order of its keys.
func Parse(b []byte) (*Document, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(b)
	if err != nil {
		return nil, fmt.Errorf("document: parse: %w", err)
	}
	if v.Type() != fastjson.TypeObject {
		return nil, ErrNotObject
	}
	return FromValue(v).(*Document), nil
}

// FromValue converts a fastjson value into plain Go values. Objects become
// *Document, arrays []any, integral numbers int64 and other numbers float64.
func FromValue(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeObject:
		d := New()
		o, _ := v.Object()
		o.Visit(func(key []byte, val *fastjson.Value) {
			d.Set(string(key), FromValue(val))
		})
		return d
	case fastjson.TypeArray:
		arr, _ := v.Array()
		out := make([]any, 0, len(arr))
		for _, item := range arr {
			out = append(out, FromValue(item))
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		if n, err := v.Int64(); err == nil {
			return n
		}
		f, _ := v.Float64()
		return f
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return nil
	}
}
