package expensereport

import (
	"context"
)

type StubRepo struct {
	nextId int
	data   map[int]ExpenseReport
}

func NewStubRepo() *StubRepo {
	return &StubRepo{nextId: 0, data: map[int]ExpenseReport{}}
}

func (s *StubRepo) Create(ctx context.Context, report ExpenseReport) (int, error) {
	s.nextId++
	report.ID = s.nextId
	s.data[report.ID] = report
	return report.ID, nil
}

func (s *StubRepo) Get(ctx context.Context, id int) (ExpenseReport, error) {
	report, ok := s.data[id]
	if !ok {
		return ExpenseReport{}, ErrReportNotFound
	}
	return report, nil
}

func (s *StubRepo) GetAll(ctx context.Context, ownerId int) ([]ExpenseReport, error) {
	var reports []ExpenseReport
	for _, report := range s.data {
		if report.Historic {
			continue
		}
		if ownerId != 0 && report.OwnerID != ownerId {
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (s *StubRepo) Update(ctx context.Context, report ExpenseReport) error {
	if _, ok := s.data[report.ID]; !ok {
		return ErrReportNotFound
	}
	s.data[report.ID] = report
	return nil
}

func (s *StubRepo) Delete(ctx context.Context, id int) error {
	if _, ok := s.data[id]; !ok {
		return ErrReportNotFound
	}
	delete(s.data, id)
	return nil
}

func (s *StubRepo) Cleanup() {
	s.data = map[int]ExpenseReport{}
}
