package emergency

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/valyala/fastjson"

	"logtarget/internal/document"
)

type Kind int

const (
	// KindQueued is a bare record with the message queue attached.
	KindQueued Kind = iota
	// KindBanner is a record wrapped in the banner.
	KindBanner
)

func (k Kind) String() string {
	if k == KindBanner {
		return "banner"
	}
	return "queued"
}

type Record struct {
	Kind Kind
	Data *document.Document
}

// Scan reads every record from an emergency file. Records written back to
// back without separators are split apart. On malformed input the records
// read so far are returned with the error.
func Scan(r io.Reader) ([]Record, error) {
	var (
		records  []Record
		pending  strings.Builder
		inBanner bool
	)

	flush := func(kind Kind) error {
		text := strings.TrimSpace(pending.String())
		pending.Reset()
		if text == "" {
			return nil
		}
		var sc fastjson.Scanner
		sc.Init(text)
		for sc.Next() {
			d, ok := document.FromValue(sc.Value()).(*document.Document)
			if !ok {
				return fmt.Errorf("emergency: record is not an object")
			}
			records = append(records, Record{Kind: kind, Data: d})
		}
		return sc.Error()
	}

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return records, err
		}
		if strings.TrimRight(line, "\r\n") == Border {
			kind := KindQueued
			if inBanner {
				kind = KindBanner
			}
			if ferr := flush(kind); ferr != nil {
				return records, ferr
			}
			inBanner = !inBanner
		} else {
			pending.WriteString(line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if inBanner {
		return records, fmt.Errorf("emergency: unterminated banner record")
	}
	if err := flush(KindQueued); err != nil {
		return records, err
	}
	return records, nil
}
