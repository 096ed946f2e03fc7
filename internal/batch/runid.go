package batch

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const runIDTimeLayout = "20060102150405"

// NewRunID returns a sortable, practically unique run identifier.
func NewRunID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s", now.UTC().Format(runIDTimeLayout), suffix)
}

// ArchiveKey is the object key of a run's archive in the certificate bucket.
func ArchiveKey(runID string) string {
	return fmt.Sprintf("%s/certificates_%s.zip", runID, runID)
}
