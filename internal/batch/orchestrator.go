package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/sunthewhat/easy-cert-batch/internal/qrcode"
	"github.com/sunthewhat/easy-cert-batch/internal/renderer"
	"github.com/sunthewhat/easy-cert-batch/internal/roster"
	"github.com/sunthewhat/easy-cert-batch/internal/storage"
	"github.com/sunthewhat/easy-cert-batch/type/shared/model"
)

const DefaultVerifyPrefix = "easycert"

type Config struct {
	// Workers bounds concurrent renders. Zero means runtime.NumCPU().
	Workers      int
	VerifyPrefix string
	Now          func() time.Time
}

type Orchestrator struct {
	renderer Renderer
	archives storage.Store
	ledger   Ledger
	reports  ReportStore
	workers  int
	prefix   string
	now      func() time.Time
}

func New(r Renderer, archives storage.Store, ledger Ledger, reports ReportStore, cfg Config) *Orchestrator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	prefix := cfg.VerifyPrefix
	if prefix == "" {
		prefix = DefaultVerifyPrefix
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		renderer: r,
		archives: archives,
		ledger:   ledger,
		reports:  reports,
		workers:  workers,
		prefix:   prefix,
		now:      now,
	}
}

type job struct {
	index       int
	participant *roster.Participant
}

// outcome is one row's fate. Exactly one of artifact, invalid, err or skipped
// is set.
type outcome struct {
	index    int
	row      int
	artifact *renderer.Artifact
	invalid  *roster.RowError
	err      error
	skipped  bool
}

// Run executes one batch. On a batch-level failure it returns the failed
// Result (with its ledger record) together with a *BatchError.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	startedAt := o.now()
	runID := NewRunID(startedAt)
	res := &Result{RunID: runID}

	o.transition(runID, StateReceived, "filename", req.Filename)
	if req.TemplateErr != nil {
		return o.fail(ctx, req, res, startedAt, KindTemplate, req.TemplateErr.Error(), req.TemplateErr)
	}

	o.transition(runID, StateParsing)
	reader, err := roster.Open(req.Roster, req.Filename)
	if err != nil {
		return o.fail(ctx, req, res, startedAt, KindSchema, err.Error(), err)
	}
	defer reader.Close()

	o.transition(runID, StateRendering, "workers", o.workers)
	outcomes, sharedErr, readErr := o.render(ctx, runID, reader, req.Template)

	skipReason := ReasonCancelled
	if sharedErr != nil {
		skipReason = sharedErr.Err.Error()
	}

	var artifacts []*renderer.Artifact
	for _, out := range outcomes {
		switch {
		case out.artifact != nil:
			artifacts = append(artifacts, out.artifact)
		case out.invalid != nil:
			res.Errors = append(res.Errors, *out.invalid)
		case out.err != nil:
			res.Errors = append(res.Errors, roster.RowError{Row: out.row, Reason: rowReason(out.err)})
		default:
			res.Errors = append(res.Errors, roster.RowError{Row: out.row, Reason: skipReason})
		}
	}
	res.TotalRows = len(outcomes)
	res.ParticipantCount = len(artifacts)

	if readErr != nil {
		return o.fail(ctx, req, res, startedAt, KindSchema, readErr.Error(), readErr)
	}
	if sharedErr != nil {
		res.ParticipantCount = 0
		return o.fail(ctx, req, res, startedAt, KindTemplate, skipReason, sharedErr)
	}
	if len(artifacts) == 0 {
		return o.fail(ctx, req, res, startedAt, KindNoValidRows, ErrNoValidRows.Error(), ErrNoValidRows)
	}

	o.transition(runID, StatePackaging, "artifacts", len(artifacts))
	archive, err := BuildArchive(artifacts)
	if err == nil {
		// Partial results of a cancelled run are still stored.
		err = o.archives.Put(context.WithoutCancel(ctx), ArchiveKey(runID), archive, "application/zip")
	}
	if err != nil {
		wrapped := fmt.Errorf("%w: %w", ErrPackaging, err)
		res.ParticipantCount = 0
		return o.fail(ctx, req, res, startedAt, KindPackaging, wrapped.Error(), wrapped)
	}

	res.Archive = archive
	res.ArchiveKey = ArchiveKey(runID)
	res.Status = model.RunStatusCompleted
	if len(res.Errors) > 0 {
		res.Status = model.RunStatusPartial
	}
	res.Record = o.record(req, res, startedAt, "")

	o.saveReport(res)
	if err := o.ledger.Record(res.Record); err != nil {
		slog.Error("Batch ledger write failed", "run_id", runID, "error", err)
		return res, &BatchError{Kind: KindLedger, Reason: err.Error(), Err: err}
	}

	o.transition(runID, StateCompleted,
		"status", res.Status,
		"participant_count", res.ParticipantCount,
		"failed_rows", res.FailedRows(),
		"duration", time.Since(startedAt))

	return res, nil
}

// render pulls rows through a single dispatcher and fans valid participants
// out to the worker pool. The returned outcomes are in roster order.
func (o *Orchestrator) render(ctx context.Context, runID string, reader *roster.Reader, tpl *renderer.Template) ([]outcome, *renderer.RenderError, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job, o.workers)
	results := make(chan outcome, o.workers)

	var readErr error
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)

		index := 0
		for row, err := range reader.All() {
			if err != nil {
				readErr = err
				return
			}

			out := outcome{index: index, row: row.Row()}
			index++

			if !row.Valid() {
				out.invalid = row.Invalid
				results <- out
				continue
			}
			if runCtx.Err() != nil {
				out.skipped = true
				results <- out
				continue
			}

			select {
			case jobs <- job{index: out.index, participant: row.Participant}:
			case <-runCtx.Done():
				out.skipped = true
				results <- out
			}
		}
	}()

	for i := range o.workers {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range jobs {
				results <- o.renderOne(runCtx, runID, workerID, tpl, j)
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		outcomes  []outcome
		sharedErr *renderer.RenderError
	)
	for out := range results {
		var renderErr *renderer.RenderError
		if sharedErr == nil && errors.As(out.err, &renderErr) && renderErr.Shared {
			sharedErr = renderErr
			slog.Warn("Batch fast-fail on shared render error", "run_id", runID, "row", out.row, "error", renderErr)
			cancel()
		}

		for len(outcomes) <= out.index {
			outcomes = append(outcomes, outcome{})
		}
		outcomes[out.index] = out
	}

	if sharedErr != nil {
		// Every row that did not render carries the template reason.
		for i := range outcomes {
			if outcomes[i].artifact == nil && outcomes[i].invalid == nil {
				outcomes[i].err = nil
				outcomes[i].skipped = true
			}
		}
	} else if ctx.Err() != nil {
		slog.Warn("Batch cancelled during rendering", "run_id", runID, "error", ctx.Err())
	}

	return outcomes, sharedErr, readErr
}

func (o *Orchestrator) renderOne(ctx context.Context, runID string, workerID int, tpl *renderer.Template, j job) outcome {
	p := j.participant
	out := outcome{index: j.index, row: p.Row}

	if ctx.Err() != nil {
		out.skipped = true
		return out
	}

	payload := qrcode.Payload(o.prefix, runID, p.Row, p.Name)
	artifact, err := o.renderer.Render(tpl, p, payload)
	if err != nil {
		slog.Warn("Batch row render failed", "run_id", runID, "worker", workerID, "row", p.Row, "error", err)
		out.err = err
		return out
	}

	slog.Debug("Batch row rendered", "run_id", runID, "worker", workerID, "row", p.Row, "stem", artifact.Stem)
	out.artifact = artifact
	return out
}

// rowReason unwraps render errors so the report reads "qr payload too large"
// rather than the wrapper text.
func rowReason(err error) string {
	var renderErr *renderer.RenderError
	if errors.As(err, &renderErr) && renderErr.Err != nil {
		return renderErr.Err.Error()
	}
	return err.Error()
}

func (o *Orchestrator) fail(ctx context.Context, req Request, res *Result, startedAt time.Time, kind ErrorKind, reason string, err error) (*Result, error) {
	res.Status = model.RunStatusFailed
	res.Archive = nil
	res.ArchiveKey = ""
	res.Record = o.record(req, res, startedAt, reason)

	o.transition(res.RunID, StateFailed, "kind", kind, "reason", reason)

	o.saveReport(res)
	if ledgerErr := o.ledger.Record(res.Record); ledgerErr != nil {
		slog.Error("Batch ledger write failed", "run_id", res.RunID, "error", ledgerErr)
	}

	if ctx.Err() != nil {
		slog.Warn("Batch failed after cancellation", "run_id", res.RunID, "error", ctx.Err())
	}

	return res, &BatchError{Kind: kind, Reason: reason, Err: err}
}

func (o *Orchestrator) record(req Request, res *Result, startedAt time.Time, reason string) *model.Run {
	return &model.Run{
		ID:               res.RunID,
		Filename:         req.Filename,
		ParticipantCount: res.ParticipantCount,
		TotalRows:        res.TotalRows,
		FailedRows:       res.FailedRows(),
		Status:           res.Status,
		ArchiveURL:       res.ArchiveKey,
		Reason:           reason,
		CreatedAt:        startedAt.UTC(),
	}
}

func (o *Orchestrator) saveReport(res *Result) {
	if o.reports == nil {
		return
	}
	if err := o.reports.Save(res.RunID, res.Errors); err != nil {
		slog.Error("Batch report write failed", "run_id", res.RunID, "error", err)
	}
}

func (o *Orchestrator) transition(runID string, state State, attrs ...any) {
	slog.Info("Batch state", append([]any{"run_id", runID, "state", state}, attrs...)...)
}
