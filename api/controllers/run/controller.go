package run_controller

import (
	runmodel "github.com/sunthewhat/easy-cert-batch/api/model/runModel"
	"github.com/sunthewhat/easy-cert-batch/internal/storage"
)

// RunController serves the run history and stored archives
type RunController struct {
	runRepo    runmodel.IRunRepository
	reportRepo runmodel.IReportRepository
	archives   storage.Store
}

// NewRunController creates a new run controller with injected dependencies
func NewRunController(runRepo runmodel.IRunRepository, reportRepo runmodel.IReportRepository, archives storage.Store) *RunController {
	return &RunController{
		runRepo:    runRepo,
		reportRepo: reportRepo,
		archives:   archives,
	}
}
