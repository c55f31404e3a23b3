package emergency

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logtarget/internal/document"
)

func doc(kv ...any) *document.Document {
	d := document.New()
	for i := 0; i+1 < len(kv); i += 2 {
		d.Set(kv[i].(string), kv[i+1])
	}
	return d
}

func TestRender_Banner(t *testing.T) {
	b, err := Render(Entry{Data: doc("elasticExportError", doc("index", "yii"))})
	require.NoError(t, err)
	want := "\n" + Border + "\n" + `{"elasticExportError":{"index":"yii"}}` + "\n" + Border + "\n"
	assert.Equal(t, want, string(b))
	assert.Len(t, Border, 41)
}

func TestRender_Queue(t *testing.T) {
	data := doc("index", "yii")
	b, err := Render(Entry{
		Data:         data,
		IncludeQueue: true,
		Queue:        []*document.Document{doc("@message", "a")},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"index":"yii","messageQueue":[{"@message":"a"}]}`, string(b))
	assert.False(t, data.Has(KeyQueue), "entry data must not be modified")

	b, err = Render(Entry{Data: doc("x", 1), IncludeQueue: true})
	require.NoError(t, err)
	assert.Equal(t, `{"x":1,"messageQueue":[]}`, string(b))
}

func TestResolvePath(t *testing.T) {
	aliases := map[string]string{"@runtime": "/var/app/runtime"}

	got, err := ResolvePath("@runtime/logs/logService.log", aliases)
	require.NoError(t, err)
	assert.Equal(t, "/var/app/runtime/logs/logService.log", got)

	got, err = ResolvePath("/tmp/./x.log", nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.log", got)

	_, err = ResolvePath("@missing/x.log", aliases)
	assert.True(t, errors.Is(err, ErrUnknownAlias))

	home, err := os.UserHomeDir()
	if err == nil {
		got, err = ResolvePath("~/x.log", nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "x.log"), got)
	}
}

func TestFileRecorder_AppendsAndCreatesDirs(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewFileRecorder("@runtime/logs/logService.log", map[string]string{"@runtime": dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "logs", "logService.log"), rec.Path())

	require.NoError(t, rec.Record(Entry{Data: doc("a", 1), IncludeQueue: true}))
	require.NoError(t, rec.Record(Entry{Data: doc("b", 2), IncludeQueue: true}))
	require.NoError(t, rec.Record(Entry{Data: doc("c", 3)}))

	content, err := os.ReadFile(rec.Path())
	require.NoError(t, err)
	want := `{"a":1,"messageQueue":[]}{"b":2,"messageQueue":[]}` +
		"\n" + Border + "\n" + `{"c":3}` + "\n" + Border + "\n"
	assert.Equal(t, want, string(content))
}

func TestFileRecorder_KeepsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "e.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o640))

	rec, err := NewFileRecorder(path, nil, nil)
	require.NoError(t, err)
	require.NoError(t, rec.Record(Entry{Data: doc("x", 1)}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "old\n"))
}

func TestFileRecorder_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o640))

	rec, err := NewFileRecorder(filepath.Join(blocker, "sub", "e.log"), nil, nil)
	require.NoError(t, err)
	assert.Error(t, rec.Record(Entry{Data: doc("x", 1)}))
}

func TestScan(t *testing.T) {
	var buf bytes.Buffer
	for _, e := range []Entry{
		{Data: doc("a", 1), IncludeQueue: true, Queue: []*document.Document{doc("@message", "q")}},
		{Data: doc("b", 2), IncludeQueue: true},
		{Data: doc("elasticExportError", doc("error", "refused"))},
		{Data: doc("c", 3), IncludeQueue: true},
	} {
		b, err := Render(e)
		require.NoError(t, err)
		buf.Write(b)
	}

	records, err := Scan(&buf)
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, KindQueued, records[0].Kind)
	assert.Equal(t, KindQueued, records[1].Kind)
	assert.Equal(t, KindBanner, records[2].Kind)
	assert.Equal(t, KindQueued, records[3].Kind)

	assert.Equal(t, []string{"a", "messageQueue"}, records[0].Data.Keys())
	inner, _ := records[2].Data.Get("elasticExportError")
	msg, _ := inner.(*document.Document).Get("error")
	assert.Equal(t, "refused", msg)
	assert.Equal(t, "banner", records[2].Kind.String())
}

func TestScan_Malformed(t *testing.T) {
	_, err := Scan(strings.NewReader("\n" + Border + "\n{\"a\":1}\n"))
	assert.Error(t, err, "unterminated banner")

	records, err := Scan(strings.NewReader(`{"a":1}[1]`))
	assert.Error(t, err)
	assert.Len(t, records, 1)

	records, err = Scan(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestRender_UnencodableValuesDegrade(t *testing.T) {
	bad := doc("@message", "x", "Hook", func() {})
	data := doc("index", "yii", "message", bad)

	b, err := Render(Entry{Data: data, IncludeQueue: true, Queue: []*document.Document{doc("@message", "ok"), bad}})
	require.NoError(t, err)

	parsed, err := document.Parse(b)
	require.NoError(t, err)
	q, _ := parsed.Get(KeyQueue)
	assert.Len(t, q, 2)

	b, err = Render(Entry{Data: doc("error", make(chan int))})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "\n"+Border+"\n"))
}

func TestFileRecorder_UnencodableItemStillWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "em.log")
	rec, err := NewFileRecorder(path, nil, nil)
	require.NoError(t, err)

	bad := doc("@message", "x", "Hook", func() {})
	require.NoError(t, rec.Record(Entry{Data: doc("message", bad), IncludeQueue: true, Queue: []*document.Document{bad}}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := Scan(f)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
