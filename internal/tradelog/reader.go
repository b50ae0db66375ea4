package tradelog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

const byteOrderMark = "\ufeff"

// Row is one trade-log line keyed by header column. Missing columns read as "".
type Row map[string]string

// Get returns the trimmed value of a column.
func (r Row) Get(key string) string {
	return strings.TrimSpace(r[key])
}

// Reader reads semicolon-delimited trade-log rows.
type Reader struct {
	csv    *csv.Reader
	header []string
}

// NewReader consumes the header line. An empty input yields a reader with no rows.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(byteOrderMark)); err == nil && string(prefix) == byteOrderMark {
		br.Discard(len(byteOrderMark))
	}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Reader{csv: cr}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Reader{csv: cr, header: header}, nil
}

// Next returns the next row or io.EOF.
func (r *Reader) Next() (Row, error) {
	if r.header == nil {
		return nil, io.EOF
	}
	record, err := r.csv.Read()
	if err != nil {
		return nil, err
	}
	row := make(Row, len(r.header))
	for i, name := range r.header {
		if i < len(record) {
			row[name] = record[i]
		}
	}
	return row, nil
}

// Each calls fn for every row in order.
func (r *Reader) Each(fn func(Row)) error {
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		fn(row)
	}
}
