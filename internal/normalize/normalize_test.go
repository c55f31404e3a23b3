package normalize

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logtarget/internal/document"
	"logtarget/internal/record"
)

var ts = time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("", 2*3600))

func get(t *testing.T, d *document.Document, key string) any {
	t.Helper()
	v, ok := d.Get(key)
	require.True(t, ok, "missing key %q in %v", key, d.Keys())
	return v
}

func TestNormalize_Text(t *testing.T) {
	n := New(Options{})
	doc := n.Normalize(record.New("hello", record.LevelInfo, "app", ts), nil)

	assert.Equal(t, []string{"@message", "level", "category", "@timestamp"}, doc.Keys())
	assert.Equal(t, "hello", get(t, doc, "@message"))
	assert.Equal(t, "info", get(t, doc, "level"))
	assert.Equal(t, "app", get(t, doc, "category"))
	assert.Equal(t, "2024-05-06T07:08:09+02:00", get(t, doc, "@timestamp"))
}

func TestNormalize_MappingSynthesizesMessage(t *testing.T) {
	n := New(Options{})
	payload := document.New()
	payload.Set("user", "bob")
	payload.Set("count", 3)
	payload.Set("ok", true)
	payload.Set("gone", nil)

	doc := n.Normalize(record.New(payload, record.LevelWarning, "c", ts), nil)

	assert.Equal(t, "bob;3;true;", get(t, doc, "@message"))
	assert.Equal(t, "bob", get(t, doc, "user"))
	assert.Equal(t, "warning", get(t, doc, "level"))
	assert.False(t, payload.Has("@message"), "payload must not be modified")
}

func TestNormalize_MappingKeepsMessage(t *testing.T) {
	n := New(Options{})
	doc := n.Normalize(record.New(map[string]any{"@message": "given", "x": 1}, record.LevelInfo, "c", ts), nil)
	assert.Equal(t, "given", get(t, doc, "@message"))
	assert.Equal(t, 1, get(t, doc, "x"))
}

func TestNormalize_UnknownLevel(t *testing.T) {
	n := New(Options{})
	doc := n.Normalize(record.New("m", record.Level(3), "c", ts), nil)
	assert.Equal(t, "unknown", get(t, doc, "level"))
}

func TestNormalize_Error(t *testing.T) {
	n := New(Options{BasePath: "/srv/app"})
	exc := &record.Exception{
		Err:   errors.New("boom"),
		Code:  42,
		File:  "/srv/app/src/db.go",
		Line:  17,
		Stack: []record.Frame{{File: "/srv/app/src/db.go", Line: 17, Function: "db.Open"}},
	}
	doc := n.Normalize(record.New(exc, record.LevelError, "db", ts), nil)

	assert.Equal(t, "boom", get(t, doc, "@message"))
	assert.Equal(t, "/srv/app/src/db.go", get(t, doc, "file"))
	assert.Equal(t, 17, get(t, doc, "line"))
	assert.Equal(t, "/src/db.go:17", get(t, doc, "unique"))
	assert.Equal(t, 42, get(t, doc, "code"))
	assert.Equal(t, exc.Stack, get(t, doc, "trace"))
	assert.True(t, strings.HasPrefix(get(t, doc, "Exception").(string), "*errors.errorString: boom in /srv/app/src/db.go:17"))
}

func TestNormalize_WrappedError(t *testing.T) {
	n := New(Options{})
	exc := &record.Exception{Err: errors.New("inner"), Code: 5, File: "f.go", Line: 3}
	err := fmt.Errorf("outer: %w", exc)

	doc := n.Normalize(record.New(err, record.LevelError, "c", ts), nil)
	assert.Equal(t, "outer: inner", get(t, doc, "@message"))
	assert.Equal(t, 5, get(t, doc, "code"))
	assert.Equal(t, "f.go:3", get(t, doc, "unique"))
}

func TestNormalize_PlainError(t *testing.T) {
	n := New(Options{})
	doc := n.Normalize(record.New(errors.New("plain"), record.LevelError, "c", ts), nil)

	assert.Equal(t, "plain", get(t, doc, "@message"))
	assert.Equal(t, "", get(t, doc, "file"))
	assert.Equal(t, 0, get(t, doc, "line"))
	assert.Equal(t, "", get(t, doc, "unique"))
	assert.Equal(t, 0, get(t, doc, "code"))
	assert.Equal(t, []record.Frame{}, get(t, doc, "trace"))
	assert.Equal(t, "*errors.errorString: plain", get(t, doc, "Exception"))
}

type point struct {
	X, Y   int
	hidden string
}

func (p point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

type bare struct{ Name string }

func TestNormalize_Object(t *testing.T) {
	n := New(Options{})
	doc := n.Normalize(record.New(point{X: 1, Y: 2, hidden: "h"}, record.LevelInfo, "c", ts), nil)

	assert.Equal(t, "normalize.point", get(t, doc, "@message"))
	assert.Equal(t, "(1,2)", get(t, doc, "__toString"))
	obj := get(t, doc, "Object").(*document.Document)
	assert.Equal(t, []string{"X", "Y"}, obj.Keys())

	doc = n.Normalize(record.New(&bare{Name: "n"}, record.LevelInfo, "c", ts), nil)
	assert.Equal(t, "normalize.bare", get(t, doc, "@message"))
	assert.Equal(t, "", get(t, doc, "__toString"))
}

func TestNormalize_WrongType(t *testing.T) {
	n := New(Options{})
	cases := []struct {
		payload any
		want    string
	}{
		{42, "Warning, wrong log message type 'int'."},
		{nil, "Warning, wrong log message type 'nil'."},
		{[]string(nil), "Warning, wrong log message type '[]string'."},
		{make(chan int), "Warning, wrong log message type 'chan int'."},
		{(*record.Exception)(nil), "Warning, wrong log message type '*record.Exception'."},
		{map[int]string{1: "a"}, "Warning, wrong log message type 'map[int]string'."},
	}
	for _, c := range cases {
		doc := n.Normalize(record.New(c.payload, record.LevelInfo, "c", ts), nil)
		assert.Equal(t, c.want, get(t, doc, "@message"))
		assert.Equal(t, "info", get(t, doc, "level"))
	}
}

func TestNormalize_ContextCannotOverrideReserved(t *testing.T) {
	n := New(Options{})
	ctx := document.New()
	ctx.Set("@message", "ctx")
	ctx.Set("level", "ctx")
	ctx.Set("category", "ctx")
	ctx.Set("@timestamp", "ctx")
	ctx.Set("userId", "7")

	doc := n.Normalize(record.New("real", record.LevelError, "app", ts), ctx)

	assert.Equal(t, "real", get(t, doc, "@message"))
	assert.Equal(t, "error", get(t, doc, "level"))
	assert.Equal(t, "app", get(t, doc, "category"))
	assert.Equal(t, "2024-05-06T07:08:09+02:00", get(t, doc, "@timestamp"))
	assert.Equal(t, "7", get(t, doc, "userId"))
}

func TestNormalize_ContextOverridesPayloadField(t *testing.T) {
	n := New(Options{})
	payload := map[string]any{"@message": "m", "host": "payload"}
	ctx := document.New()
	ctx.Set("host", "context")

	doc := n.Normalize(record.New(payload, record.LevelInfo, "c", ts), ctx)
	assert.Equal(t, "context", get(t, doc, "host"))
}

func TestNormalize_TraceAndDuration(t *testing.T) {
	n := New(Options{})

	rec := record.New("m", record.LevelProfileEnd, "db", ts)
	doc := n.Normalize(rec, nil)
	assert.False(t, doc.Has("trace"))
	assert.False(t, doc.Has("duration"))

	rec.Trace = []record.Frame{}
	doc = n.Normalize(rec, nil)
	assert.False(t, doc.Has("trace"), "empty trace is left out")

	rec.Trace = []record.Frame{{File: "a.go", Line: 1}}
	rec = rec.WithDuration(0)
	doc = n.Normalize(rec, nil)
	assert.Equal(t, rec.Trace, get(t, doc, "trace"))
	assert.Equal(t, 0.0, get(t, doc, "duration"))
	assert.Equal(t, "profile end", get(t, doc, "level"))
}

func TestNormalize_Prefix(t *testing.T) {
	n := New(Options{Prefix: func(r record.LogRecord) string { return "[" + r.Category + "]" }})
	doc := n.Normalize(record.New("m", record.LevelInfo, "app", ts), nil)
	assert.Equal(t, "[app]", get(t, doc, "info"))
}

func TestNormalize_Deterministic(t *testing.T) {
	n := New(Options{})
	rec := record.New(map[string]any{"b": 1, "a": 2}, record.LevelInfo, "c", ts)
	first, err := n.Normalize(rec, nil).MarshalJSON()
	require.NoError(t, err)
	second, err := n.Normalize(rec, nil).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestStringify(t *testing.T) {
	nested := document.New()
	nested.Set("k", "v")

	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{false, "false"},
		{12, "12"},
		{1.5, "1.5"},
		{time.Second, "1s"},
		{[]any{1, "a"}, `[1,"a"]`},
		{nested, `{"k":"v"}`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Stringify(c.in), "Stringify(%#v)", c.in)
	}
}

type withHook struct {
	Name string
	Hook func()
	Ch   chan int
}

func TestNormalize_UnencodableFieldsDegrade(t *testing.T) {
	n := New(Options{})

	doc := n.Normalize(record.New(withHook{Name: "x", Hook: func() {}, Ch: make(chan int)}, record.LevelInfo, "c", ts), nil)
	_, err := doc.MarshalJSON()
	require.NoError(t, err)
	obj := get(t, doc, "Object").(*document.Document)
	assert.Equal(t, "x", get(t, obj, "Name"))
	assert.IsType(t, "", get(t, obj, "Hook"))

	doc = n.Normalize(record.New(map[string]any{"f": func() {}, "v": 1}, record.LevelInfo, "c", ts), nil)
	_, err = doc.MarshalJSON()
	require.NoError(t, err)

	ctx := document.New()
	ctx.Set("ch", make(chan int))
	rec := record.New("m", record.LevelProfile, "c", ts).WithDuration(math.NaN())
	doc = n.Normalize(rec, ctx)
	_, err = doc.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "NaN", get(t, doc, "duration"))
}

func TestNormalize_TypedNilErrorKeepsBatchGoing(t *testing.T) {
	n := New(Options{})
	var exc *record.Exception
	var err error = exc

	doc := n.Normalize(record.New(err, record.LevelError, "c", ts), nil)
	assert.Equal(t, "Warning, wrong log message type '*record.Exception'.", get(t, doc, "@message"))
	assert.Equal(t, "error", get(t, doc, "level"))
}

func TestNormalize_List(t *testing.T) {
	n := New(Options{})

	doc := n.Normalize(record.New([]any{"a", 2, true}, record.LevelInfo, "c", ts), nil)
	assert.Equal(t, []string{"0", "1", "2", "@message", "level", "category", "@timestamp"}, doc.Keys())
	assert.Equal(t, "a;2;true", get(t, doc, "@message"))

	doc = n.Normalize(record.New([2]string{"x", "y"}, record.LevelInfo, "c", ts), nil)
	assert.Equal(t, "x;y", get(t, doc, "@message"))

	doc = n.Normalize(record.New([]string{}, record.LevelInfo, "c", ts), nil)
	assert.Equal(t, "", get(t, doc, "@message"))
}
