package runmodel

import (
	"iter"

	"github.com/sunthewhat/easy-cert-batch/internal/roster"
	"github.com/sunthewhat/easy-cert-batch/type/shared/model"
)

// IRunRepository defines the interface for run ledger operations
type IRunRepository interface {
	Record(run *model.Run) error
	List() iter.Seq2[*model.Run, error]
	GetAll() ([]*model.Run, error)
	GetById(runId string) (*model.Run, error)
}

// IReportRepository defines the interface for run report operations
type IReportRepository interface {
	Save(runID string, errs []roster.RowError) error
	GetByRun(runID string) (*RunReport, error)
}

var (
	_ IRunRepository    = (*RunRepository)(nil)
	_ IRunRepository    = (*MockRunRepository)(nil)
	_ IReportRepository = (*ReportRepository)(nil)
	_ IReportRepository = (*MockReportRepository)(nil)
)

// MockRunRepository is a mock implementation for testing
type MockRunRepository struct {
	RecordFunc  func(run *model.Run) error
	ListFunc    func() iter.Seq2[*model.Run, error]
	GetAllFunc  func() ([]*model.Run, error)
	GetByIdFunc func(runId string) (*model.Run, error)
}

func NewMockRunRepository() *MockRunRepository {
	return &MockRunRepository{}
}

func (m *MockRunRepository) Record(run *model.Run) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(run)
	}
	return nil
}

func (m *MockRunRepository) List() iter.Seq2[*model.Run, error] {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return func(func(*model.Run, error) bool) {}
}

func (m *MockRunRepository) GetAll() ([]*model.Run, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc()
	}
	return nil, nil
}

func (m *MockRunRepository) GetById(runId string) (*model.Run, error) {
	if m.GetByIdFunc != nil {
		return m.GetByIdFunc(runId)
	}
	return nil, nil
}

// MockReportRepository is a mock implementation for testing
type MockReportRepository struct {
	SaveFunc     func(runID string, errs []roster.RowError) error
	GetByRunFunc func(runID string) (*RunReport, error)
}

func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{}
}

func (m *MockReportRepository) Save(runID string, errs []roster.RowError) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(runID, errs)
	}
	return nil
}

func (m *MockReportRepository) GetByRun(runID string) (*RunReport, error) {
	if m.GetByRunFunc != nil {
		return m.GetByRunFunc(runID)
	}
	return nil, nil
}
