package roster

import (
	"bytes"
	_ "embed"
)

//go:embed sample_participants.csv
var sampleCSV []byte

const (
	SampleFilename    = "sample_participants.csv"
	SampleContentType = "text/csv"
	// SampleRowCount is the number of participants in the embedded sample.
	SampleRowCount = 4
)

// Sample returns a copy of the static example roster.
func Sample() []byte {
	return bytes.Clone(sampleCSV)
}
