package roster

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/sunthewhat/easy-cert-batch/common/util"
	"github.com/xuri/excelize/v2"
)

const sniffSize = 4096

// rowSource yields raw records together with their 1-based row position,
// blank rows included.
type rowSource interface {
	next() (record []string, line int, err error)
	close() error
}

// Reader is a single-pass cursor over a roster. It is not safe for concurrent use.
type Reader struct {
	src        rowSource
	columns    map[string]int
	headerLine int
	sheetDates bool
	done       bool
}

type rowInput struct {
	Name   string `json:"name" validate:"required"`
	Course string `json:"course" validate:"required"`
	Date   string `json:"date" validate:"required"`
}

// Open detects the format from filename and content, then reads the header row.
func Open(r io.Reader, filename string) (*Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)
	head, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	format, err := Detect(filename, head)
	if err != nil {
		return nil, err
	}

	return OpenFormat(br, format)
}

func OpenFormat(r io.Reader, format Format) (*Reader, error) {
	var (
		src rowSource
		err error
	)

	switch format {
	case FormatCSV:
		src, err = newCSVSource(r)
	case FormatXLSX:
		src, err = newXLSXSource(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	reader := &Reader{src: src, sheetDates: format == FormatXLSX}
	if err := reader.readHeader(); err != nil {
		src.close()
		return nil, err
	}

	return reader, nil
}

func (r *Reader) readHeader() error {
	for {
		record, line, err := r.src.next()
		if errors.Is(err, io.EOF) {
			return &SchemaError{}
		}
		if err != nil {
			return fmt.Errorf("failed to read roster header: %w", err)
		}
		if isBlank(record) {
			continue
		}

		r.headerLine = line
		r.columns = make(map[string]int, len(record))
		for i, col := range record {
			key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
			if _, seen := r.columns[key]; !seen {
				r.columns[key] = i
			}
		}
		break
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := r.columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}

	return nil
}

// Next returns the next non-blank data row, or io.EOF when the roster is exhausted.
func (r *Reader) Next() (RowResult, error) {
	if r.done {
		return RowResult{}, io.EOF
	}

	for {
		record, line, err := r.src.next()
		if errors.Is(err, io.EOF) {
			r.done = true
			return RowResult{}, io.EOF
		}
		if err != nil {
			r.done = true
			return RowResult{}, fmt.Errorf("failed to read roster row: %w", err)
		}
		if isBlank(record) {
			continue
		}

		return r.parseRow(record, line-r.headerLine), nil
	}
}

// All exposes the remaining rows as an iterator. Iteration stops at the first read error.
func (r *Reader) All() iter.Seq2[RowResult, error] {
	return func(yield func(RowResult, error) bool) {
		for {
			row, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

func (r *Reader) Close() error {
	r.done = true
	return r.src.close()
}

func (r *Reader) parseRow(record []string, row int) RowResult {
	getValue := func(colName string) string {
		if idx, exists := r.columns[colName]; exists && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	input := rowInput{
		Name:   getValue(ColumnName),
		Course: getValue(ColumnCourse),
		Date:   getValue(ColumnDate),
	}

	if err := util.ValidateStruct(input); err != nil {
		return RowResult{Invalid: &RowError{Row: row, Reason: strings.Join(util.GetValidationErrors(err), "; ")}}
	}

	normalize := NormalizeDate
	if r.sheetDates {
		normalize = normalizeSheetDate
	}

	date, err := normalize(input.Date)
	if err != nil {
		return RowResult{Invalid: &RowError{Row: row, Reason: err.Error()}}
	}

	return RowResult{Participant: &Participant{
		Row:    row,
		Name:   input.Name,
		Course: input.Course,
		Date:   date,
	}}
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

type csvSource struct {
	r *csv.Reader
	// row counts records and skipped blank lines read so far.
	row int
	// endLine is the physical line the previous record ended on.
	endLine int
}

func newCSVSource(r io.Reader) (*csvSource, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, sniffSize)
	}

	head, err := br.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	return &csvSource{r: cr}, nil
}

// next numbers records, not physical lines: a quoted cell spanning several
// lines is still one row. Empty lines, which encoding/csv drops, count as rows.
func (s *csvSource) next() ([]string, int, error) {
	record, err := s.r.Read()
	if err != nil {
		return nil, 0, err
	}

	start, _ := s.r.FieldPos(0)
	if gap := start - s.endLine - 1; gap > 0 {
		s.row += gap
	}
	s.row++

	last := len(record) - 1
	lastLine, _ := s.r.FieldPos(last)
	s.endLine = lastLine + strings.Count(record[last], "\n")

	return record, s.row, nil
}

func (s *csvSource) close() error {
	return nil
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab on the first line.
func sniffDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}

	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t'} {
		if n := strings.Count(string(line), string(candidate)); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

type xlsxSource struct {
	file *excelize.File
	rows *excelize.Rows
	line int
}

func newXLSXSource(r io.Reader) (*xlsxSource, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open spreadsheet: %v", ErrUnsupportedFormat, err)
	}

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		file.Close()
		return nil, &SchemaError{}
	}

	rows, err := file.Rows(sheets[0])
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	return &xlsxSource{file: file, rows: rows}, nil
}

func (s *xlsxSource) next() ([]string, int, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, 0, err
		}
		return nil, 0, io.EOF
	}
	s.line++

	record, err := s.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, 0, err
	}
	return record, s.line, nil
}

func (s *xlsxSource) close() error {
	if err := s.rows.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
