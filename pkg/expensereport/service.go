package expensereport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reisegeld/reisegeld/pkg/exchangerate"
	"github.com/reisegeld/reisegeld/pkg/user"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotAllowed   = errors.New("operation not allowed for this user")
	ErrInvalidState = errors.New("expense report is in the wrong state for this operation")
	ErrInvalidDate  = errors.New("expense cost date is missing or in the future")
)

// CurrencyConverter resolves a foreign currency cost into the base currency.
// A nil conversion means no rate was available and the cost stays unconverted.
type CurrencyConverter interface {
	Convert(ctx context.Context, date time.Time, amount float64, from, to string) (*exchangerate.Conversion, error)
}

type Service interface {
	Create(ctx context.Context, report ExpenseReport) (ExpenseReport, error)
	Get(ctx context.Context, id int) (ExpenseReport, error)
	GetOwn(ctx context.Context) ([]ExpenseReport, error)
	GetAll(ctx context.Context) ([]ExpenseReport, error)
	Update(ctx context.Context, report ExpenseReport) (ExpenseReport, error)
	Delete(ctx context.Context, id int) error
	SubmitForExamination(ctx context.Context, id int) (ExpenseReport, error)
	Reject(ctx context.Context, id int, comment string) (ExpenseReport, error)
	Refund(ctx context.Context, id int, comment string) (ExpenseReport, error)
}

type ServiceImpl struct {
	repo      Repo
	converter CurrencyConverter
}

func NewService(repo Repo, converter CurrencyConverter) *ServiceImpl {
	return &ServiceImpl{repo: repo, converter: converter}
}

func (s *ServiceImpl) Create(ctx context.Context, report ExpenseReport) (ExpenseReport, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return ExpenseReport{}, fmt.Errorf("failed to get current user: %w", err)
	}

	report.UID = uuid.NewString()
	report.OwnerID = current.Id
	report.State = StateInProgress
	report.Historic = false
	report.History = nil
	report.Expenses = nil

	id, err := s.repo.Create(ctx, report)
	if err != nil {
		return ExpenseReport{}, err
	}
	report.ID = id
	return report, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (ExpenseReport, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return ExpenseReport{}, fmt.Errorf("failed to get current user: %w", err)
	}
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return ExpenseReport{}, err
	}
	if report.OwnerID != current.Id && !current.Access.Examine {
		return ExpenseReport{}, ErrNotAllowed
	}
	return report, nil
}

func (s *ServiceImpl) GetOwn(ctx context.Context) ([]ExpenseReport, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]ExpenseReport, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if !current.Access.Examine {
		return nil, ErrNotAllowed
	}
	return s.repo.GetAll(ctx, 0)
}

func (s *ServiceImpl) Update(ctx context.Context, report ExpenseReport) (ExpenseReport, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return ExpenseReport{}, fmt.Errorf("failed to get current user: %w", err)
	}
	stored, err := s.repo.Get(ctx, report.ID)
	if err != nil {
		return ExpenseReport{}, err
	}
	if stored.OwnerID != current.Id {
		return ExpenseReport{}, ErrNotAllowed
	}
	if stored.State != StateInProgress {
		return ExpenseReport{}, ErrInvalidState
	}

	if err := validateExpenseDates(report.Expenses); err != nil {
		return ExpenseReport{}, err
	}

	report.OwnerID = stored.OwnerID
	report.EditorID = stored.EditorID
	report.State = stored.State
	report.Comment = stored.Comment
	report.History = stored.History
	report.Historic = stored.Historic

	if err := s.repo.Update(ctx, report); err != nil {
		return ExpenseReport{}, err
	}
	return report, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if stored.OwnerID != current.Id && !current.Access.Admin {
		return ErrNotAllowed
	}
	if stored.State == StateRefunded {
		return ErrInvalidState
	}
	return s.repo.Delete(ctx, id)
}

// SubmitForExamination hands the report to the examiners. The submitted
// version is archived, then every foreign currency expense is resolved into
// the base currency. A cost without an available rate stays unconverted.
func (s *ServiceImpl) SubmitForExamination(ctx context.Context, id int) (ExpenseReport, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return ExpenseReport{}, fmt.Errorf("failed to get current user: %w", err)
	}
	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return ExpenseReport{}, err
	}
	if stored.OwnerID != current.Id {
		return ExpenseReport{}, ErrNotAllowed
	}
	if stored.State != StateInProgress {
		return ExpenseReport{}, ErrInvalidState
	}
	if err := validateExpenseDates(stored.Expenses); err != nil {
		return ExpenseReport{}, err
	}

	report, err := s.finishTransition(ctx, id, StateUnderExamination, "", true)
	if err != nil {
		return ExpenseReport{}, err
	}
	return s.convertExpenses(ctx, report)
}

func (s *ServiceImpl) Reject(ctx context.Context, id int, comment string) (ExpenseReport, error) {
	return s.transition(ctx, id, StateUnderExamination, StateRejected, comment, false)
}

func (s *ServiceImpl) Refund(ctx context.Context, id int, comment string) (ExpenseReport, error) {
	return s.transition(ctx, id, StateUnderExamination, StateRefunded, comment, true)
}

func (s *ServiceImpl) transition(ctx context.Context, id int, from, to State, comment string, archive bool) (ExpenseReport, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return ExpenseReport{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !current.Access.Examine {
		return ExpenseReport{}, ErrNotAllowed
	}
	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return ExpenseReport{}, err
	}
	if stored.State != from {
		return ExpenseReport{}, ErrInvalidState
	}
	report, err := s.finishTransition(ctx, id, to, comment, archive)
	if err != nil {
		return ExpenseReport{}, err
	}
	if report.EditorID != current.Id {
		report.EditorID = current.Id
		if err := s.repo.Update(ctx, report); err != nil {
			return ExpenseReport{}, err
		}
	}
	return report, nil
}

func (s *ServiceImpl) finishTransition(ctx context.Context, id int, to State, comment string, archive bool) (ExpenseReport, error) {
	if archive {
		if err := s.archiveCurrentVersion(ctx, id); err != nil {
			return ExpenseReport{}, err
		}
	}
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return ExpenseReport{}, err
	}
	report.State = to
	if comment != "" {
		report.Comment = comment
	}
	if err := s.repo.Update(ctx, report); err != nil {
		return ExpenseReport{}, err
	}
	log.Debugf("expense report %d moved to state %s", id, to)
	return report, nil
}

// validateExpenseDates rejects expenses whose cost date is unset or in the
// future. Such dates can never resolve to a published exchange rate, so they
// are refused before they reach the converter.
func validateExpenseDates(expenses []Expense) error {
	now := time.Now()
	for _, expense := range expenses {
		if expense.Cost.Date.IsZero() || expense.Cost.Date.After(now) {
			return ErrInvalidDate
		}
	}
	return nil
}

func (s *ServiceImpl) convertExpenses(ctx context.Context, report ExpenseReport) (ExpenseReport, error) {
	changed := false
	for i, expense := range report.Expenses {
		if expense.Cost.ExchangeRate != nil {
			continue
		}
		conversion, err := s.converter.Convert(ctx, expense.Cost.Date, expense.Cost.Amount, expense.Cost.Currency, "")
		if err != nil {
			return ExpenseReport{}, err
		}
		if conversion == nil {
			continue
		}
		report.Expenses[i].Cost.ExchangeRate = conversion
		changed = true
	}
	if changed {
		if err := s.repo.Update(ctx, report); err != nil {
			return ExpenseReport{}, err
		}
	}
	return report, nil
}

// archiveCurrentVersion stores the report's current persisted state as a new
// historic report and appends it to the live report's history. The snapshot
// never nests a history of its own, and a pending review comment does not
// survive the transition.
func (s *ServiceImpl) archiveCurrentVersion(ctx context.Context, id int) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	snapshot := current
	snapshot.ID = 0
	snapshot.UID = uuid.NewString()
	snapshot.Historic = true
	snapshot.History = nil

	historicId, err := s.repo.Create(ctx, snapshot)
	if err != nil {
		return err
	}

	current.History = append(current.History, historicId)
	current.Comment = ""
	return s.repo.Update(ctx, current)
}
