package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fastjson"

	"logtarget/internal/document"
)

const maxResponseBytes = 1 << 20

type ElasticOptions struct {
	Endpoint string
	Index    string
	DocType  string
	Timeout  time.Duration
	Compress bool
	Username string
	Password string
	APIKey   string
	// Client overrides the HTTP client built from Timeout.
	Client *http.Client
}

// Elastic posts each document to {endpoint}/{index}/{type}. A write counts
// only when the reply carries a truthy "created" field.
type Elastic struct {
	opts   ElasticOptions
	client *http.Client
	url    string
	parser fastjson.ParserPool
	logger *slog.Logger
}

func NewElastic(opts ElasticOptions, logger *slog.Logger) *Elastic {
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Elastic{
		opts:   opts,
		client: client,
		url: strings.TrimRight(opts.Endpoint, "/") + "/" +
			url.PathEscape(opts.Index) + "/" + url.PathEscape(opts.DocType),
		logger: logger,
	}
}

func (e *Elastic) Destination() Destination {
	return Destination{Index: e.opts.Index, Type: e.opts.DocType}
}

func (e *Elastic) Export(ctx context.Context, batch []*document.Document) Outcome {
	out := Outcome{Destination: e.Destination()}
	for i, doc := range batch {
		out.Attempted++

		body, err := doc.MarshalJSON()
		if err != nil {
			out.Failures = append(out.Failures, ItemFailure{Position: i, Document: doc, Err: err})
			continue
		}

		reply, err := e.post(ctx, body)
		if err != nil {
			e.logger.Error("export aborted", "url", e.url, "position", i, "error", err)
			out.Fault = newFault(err, i)
			return out
		}
		if !reply.created {
			out.Failures = append(out.Failures, ItemFailure{
				Position: i,
				Document: doc,
				Response: reply.body,
				Status:   reply.status,
			})
			continue
		}
		out.Sent++
	}
	return out
}

// MalformedResponseError is a reply that is not a JSON document.
type MalformedResponseError struct {
	Status int
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response (HTTP %d): %v", e.Status, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Code() int { return e.Status }

type reply struct {
	status  int
	created bool
	body    any
}

func (e *Elastic) post(ctx context.Context, body []byte) (reply, error) {
	var reader io.Reader = bytes.NewReader(body)
	if e.opts.Compress {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(body); err != nil {
			return reply{}, fmt.Errorf("gzip body: %w", err)
		}
		if err := zw.Close(); err != nil {
			return reply{}, fmt.Errorf("gzip body: %w", err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, reader)
	if err != nil {
		return reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.opts.Compress {
		req.Header.Set("Content-Encoding", "gzip")
	}
	switch {
	case e.opts.APIKey != "":
		req.Header.Set("Authorization", "ApiKey "+e.opts.APIKey)
	case e.opts.Username != "":
		req.SetBasicAuth(e.opts.Username, e.opts.Password)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return reply{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return reply{}, fmt.Errorf("read response: %w", err)
	}

	// Values returned by the parser die with it, so convert before Put.
	p := e.parser.Get()
	defer e.parser.Put(p)
	v, err := p.ParseBytes(data)
	if err != nil {
		return reply{}, &MalformedResponseError{Status: resp.StatusCode, Err: err}
	}
	return reply{
		status:  resp.StatusCode,
		created: acknowledged(v),
		body:    document.FromValue(v),
	}, nil
}

func acknowledged(v *fastjson.Value) bool {
	created := v.Get("created")
	if created == nil {
		return false
	}
	switch created.Type() {
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeNumber:
		f, _ := created.Float64()
		return f != 0
	case fastjson.TypeString:
		s := strings.ToLower(string(created.GetStringBytes()))
		return s == "true" || s == "1"
	}
	return false
}
