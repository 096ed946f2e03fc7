// Package batch runs one certificate generation from roster to archive.
//
// A run moves through Received, Parsing, Rendering and Packaging and ends in
// Completed or Failed. Row problems never fail a run on their own: they are
// collected into Result.Errors while the remaining rows carry on. Only schema
// errors, template defects, an empty result and packaging or ledger failures
// end a run as failed.
package batch

import (
	"errors"
	"fmt"
	"io"

	"github.com/sunthewhat/easy-cert-batch/internal/renderer"
	"github.com/sunthewhat/easy-cert-batch/internal/roster"
	"github.com/sunthewhat/easy-cert-batch/type/shared/model"
)

type State string

const (
	StateReceived  State = "received"
	StateParsing   State = "parsing"
	StateRendering State = "rendering"
	StatePackaging State = "packaging"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

type ErrorKind string

const (
	KindSchema      ErrorKind = "schema"
	KindTemplate    ErrorKind = "template"
	KindNoValidRows ErrorKind = "no_valid_rows"
	KindPackaging   ErrorKind = "packaging"
	KindLedger      ErrorKind = "ledger"
)

// ReasonCancelled is reported for rows left unrendered by a cancelled context.
const ReasonCancelled = "cancelled"

var (
	ErrPackaging   = errors.New("archive packaging failed")
	ErrNoValidRows = errors.New("no valid rows")
)

// BatchError is returned for failures that end the whole run.
type BatchError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %s error: %s", e.Kind, e.Reason)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Ledger persists the single record written per run.
type Ledger interface {
	Record(run *model.Run) error
}

// ReportStore keeps the row-level error report of a run.
type ReportStore interface {
	Save(runID string, errs []roster.RowError) error
}

type Renderer interface {
	Render(tpl *renderer.Template, p *roster.Participant, payload string) (*renderer.Artifact, error)
}

type Request struct {
	Filename string
	Roster   io.Reader
	Template *renderer.Template

	// TemplateErr reports a stored template that could not be loaded. The run
	// is recorded as failed without reading the roster.
	TemplateErr error
}

type Result struct {
	RunID            string
	Status           model.RunStatus
	Archive          []byte
	ArchiveKey       string
	ParticipantCount int
	TotalRows        int
	Errors           []roster.RowError
	Record           *model.Run
}

// FailedRows counts the rows that produced no certificate.
func (r *Result) FailedRows() int {
	return len(r.Errors)
}
