package roster

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// Detect picks the roster format from the file extension, falling back to
// sniffing the leading bytes.
func Detect(filename string, head []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatUnknown, fmt.Errorf("%w: legacy .xls workbooks are not supported, save as .xlsx", ErrUnsupportedFormat)
	}

	if len(head) == 0 {
		return FormatUnknown, fmt.Errorf("%w: empty file", ErrUnsupportedFormat)
	}

	detected := mimetype.Detect(head)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return FormatXLSX, nil
		}
		if m.Is("text/plain") {
			return FormatCSV, nil
		}
	}

	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, detected.String())
}
