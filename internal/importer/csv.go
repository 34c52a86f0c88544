package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrEmptyFile     = errors.New("file is empty")
	ErrMissingHeader = errors.New("missing header row")
)

// csvReader reads header-mapped rows from a CSV stream
type csvReader struct {
	reader  *csv.Reader
	headers []string
	line    int
}

// row is one data line keyed by normalised header name
type row struct {
	line int
	data map[string]string
}

func (r row) get(column string) string {
	return r.data[column]
}

func (r row) isEmpty() bool {
	for _, v := range r.data {
		if v != "" {
			return false
		}
	}
	return true
}

// stripBOM removes a UTF-8 byte order mark if present
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if peek, err := br.Peek(3); err == nil && bytes.Equal(peek, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	return br
}

// normaliseHeader maps "Person Name" and "person_name" to the same column
func normaliseHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

func newCSVReader(r io.Reader) (*csvReader, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	record, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	headers := make([]string, len(record))
	for i, h := range record {
		headers[i] = normaliseHeader(h)
	}
	return &csvReader{reader: cr, headers: headers, line: 1}, nil
}

// missing returns the required columns absent from the header
func (p *csvReader) missing(required []string) []string {
	present := make(map[string]bool, len(p.headers))
	for _, h := range p.headers {
		present[h] = true
	}
	var out []string
	for _, c := range required {
		if !present[c] {
			out = append(out, c)
		}
	}
	return out
}

// next returns the next row or io.EOF. Malformed lines return an error
// wrapping the line number and the stream stays usable.
func (p *csvReader) next() (row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return row{}, io.EOF
	}
	p.line++
	if err != nil {
		return row{line: p.line}, fmt.Errorf("line %d: %w", p.line, err)
	}

	r := row{line: p.line, data: make(map[string]string, len(p.headers))}
	for i, h := range p.headers {
		if i < len(record) {
			r.data[h] = strings.TrimSpace(record[i])
		} else {
			r.data[h] = ""
		}
	}
	return r, nil
}
