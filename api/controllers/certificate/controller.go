package certificate_controller

import (
	"context"

	"github.com/sunthewhat/easy-cert-batch/internal/batch"
	"github.com/sunthewhat/easy-cert-batch/internal/renderer"
	"github.com/sunthewhat/easy-cert-batch/internal/roster"
	"github.com/sunthewhat/easy-cert-batch/internal/storage"
)

// Generator runs one batch; *batch.Orchestrator satisfies it.
type Generator interface {
	Run(ctx context.Context, req batch.Request) (*batch.Result, error)
}

// Previewer renders a scaled-down sample certificate; *renderer.Renderer satisfies it.
type Previewer interface {
	Preview(tpl *renderer.Template, p *roster.Participant, payload string, width int) ([]byte, error)
}

// CertificateController handles template intake and certificate generation
type CertificateController struct {
	generator      Generator
	previewer      Previewer
	resources      storage.Store
	maxUploadBytes int64
}

// NewCertificateController creates a new certificate controller with injected dependencies
func NewCertificateController(generator Generator, previewer Previewer, resources storage.Store, maxUploadBytes int) *CertificateController {
	return &CertificateController{
		generator:      generator,
		previewer:      previewer,
		resources:      resources,
		maxUploadBytes: int64(maxUploadBytes),
	}
}
