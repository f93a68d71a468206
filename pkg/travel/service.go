package travel

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/reisegeld/reisegeld/pkg/user"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotAllowed   = errors.New("operation not allowed for this user")
	ErrInvalidState = errors.New("travel is in the wrong state for this operation")
)

type Service interface {
	Create(ctx context.Context, travel Travel) (Travel, error)
	Get(ctx context.Context, id int) (Travel, error)
	GetOwn(ctx context.Context) ([]Travel, error)
	GetAll(ctx context.Context) ([]Travel, error)
	Update(ctx context.Context, travel Travel) (Travel, error)
	Delete(ctx context.Context, id int) error
	Approve(ctx context.Context, id int, comment string) (Travel, error)
	Reject(ctx context.Context, id int, comment string) (Travel, error)
	SubmitForExamination(ctx context.Context, id int) (Travel, error)
	Refund(ctx context.Context, id int, comment string) (Travel, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

// Create applies for a new travel on behalf of the current user.
func (s *ServiceImpl) Create(ctx context.Context, travel Travel) (Travel, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Travel{}, fmt.Errorf("failed to get current user: %w", err)
	}

	travel.UID = uuid.NewString()
	travel.TravelerID = current.Id
	travel.State = StateAppliedFor
	travel.Historic = false
	travel.History = nil
	travel.Records = nil
	travel.CateringNoRefund = nil

	id, err := s.repo.Create(ctx, travel)
	if err != nil {
		return Travel{}, err
	}
	travel.ID = id
	return travel, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Travel, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Travel{}, fmt.Errorf("failed to get current user: %w", err)
	}
	travel, err := s.repo.Get(ctx, id)
	if err != nil {
		return Travel{}, err
	}
	if travel.TravelerID != current.Id && !current.Access.ApproveTravel && !current.Access.Examine {
		return Travel{}, ErrNotAllowed
	}
	return travel, nil
}

func (s *ServiceImpl) GetOwn(ctx context.Context) ([]Travel, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]Travel, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if !current.Access.ApproveTravel && !current.Access.Examine {
		return nil, ErrNotAllowed
	}
	return s.repo.GetAll(ctx, 0)
}

// Update persists traveler edits. The submitted catering day list is
// reconciled against the new record list before anything is written, so the
// persisted day list always covers exactly the days the records span while
// keeping the meal flags the traveler set.
func (s *ServiceImpl) Update(ctx context.Context, travel Travel) (Travel, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Travel{}, fmt.Errorf("failed to get current user: %w", err)
	}
	stored, err := s.repo.Get(ctx, travel.ID)
	if err != nil {
		return Travel{}, err
	}
	if stored.TravelerID != current.Id {
		return Travel{}, ErrNotAllowed
	}
	if stored.State != StateAppliedFor && stored.State != StateApproved {
		return Travel{}, ErrInvalidState
	}
	if err := ValidateRecordOrder(travel.Records); err != nil {
		return Travel{}, err
	}

	travel.TravelerID = stored.TravelerID
	travel.EditorID = stored.EditorID
	travel.State = stored.State
	travel.Comment = stored.Comment
	travel.History = stored.History
	travel.Historic = stored.Historic

	travel.CateringNoRefund, err = ReconcileCateringDays(travel.Records, travel.CateringNoRefund)
	if err != nil {
		return Travel{}, err
	}
	if err := s.repo.Update(ctx, travel); err != nil {
		return Travel{}, err
	}
	return travel, nil
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
	if stored.TravelerID != current.Id && !current.Access.Admin {
		return ErrNotAllowed
	}
	if stored.State == StateRefunded {
		return ErrInvalidState
	}
	return s.repo.Delete(ctx, id)
}

// Approve moves an applied-for travel into the approved state. The applied-for
// version is archived first.
func (s *ServiceImpl) Approve(ctx context.Context, id int, comment string) (Travel, error) {
	return s.transition(ctx, id, StateAppliedFor, StateApproved, comment, true, func(u user.User) bool {
		return u.Access.ApproveTravel
	})
}

func (s *ServiceImpl) Reject(ctx context.Context, id int, comment string) (Travel, error) {
	return s.transition(ctx, id, StateAppliedFor, StateRejected, comment, false, func(u user.User) bool {
		return u.Access.ApproveTravel
	})
}

// SubmitForExamination hands the completed travel to the examiners. The
// version under review is archived so later edits stay auditable.
func (s *ServiceImpl) SubmitForExamination(ctx context.Context, id int) (Travel, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Travel{}, fmt.Errorf("failed to get current user: %w", err)
	}
	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return Travel{}, err
	}
	if stored.TravelerID != current.Id {
		return Travel{}, ErrNotAllowed
	}
	if stored.State != StateApproved {
		return Travel{}, ErrInvalidState
	}
	return s.finishTransition(ctx, id, StateUnderExamination, "", true)
}

func (s *ServiceImpl) Refund(ctx context.Context, id int, comment string) (Travel, error) {
	return s.transition(ctx, id, StateUnderExamination, StateRefunded, comment, true, func(u user.User) bool {
		return u.Access.Examine
	})
}

func (s *ServiceImpl) transition(ctx context.Context, id int, from, to State, comment string, archive bool,
	allowed func(user.User) bool) (Travel, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Travel{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !allowed(current) {
		return Travel{}, ErrNotAllowed
	}
	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return Travel{}, err
	}
	if stored.State != from {
		return Travel{}, ErrInvalidState
	}
	travel, err := s.finishTransition(ctx, id, to, comment, archive)
	if err != nil {
		return Travel{}, err
	}
	if travel.EditorID != current.Id {
		travel.EditorID = current.Id
		if err := s.repo.Update(ctx, travel); err != nil {
			return Travel{}, err
		}
	}
	return travel, nil
}

func (s *ServiceImpl) finishTransition(ctx context.Context, id int, to State, comment string, archive bool) (Travel, error) {
	if archive {
		if err := s.archiveCurrentVersion(ctx, id); err != nil {
			return Travel{}, err
		}
	}
	travel, err := s.repo.Get(ctx, id)
	if err != nil {
		return Travel{}, err
	}
	travel.State = to
	if comment != "" {
		travel.Comment = comment
	}
	if err := s.repo.Update(ctx, travel); err != nil {
		return Travel{}, err
	}
	log.Debugf("travel %d moved to state %s", id, to)
	return travel, nil
}

// archiveCurrentVersion stores the travel's current persisted state as a new
// historic travel and appends it to the live travel's history. The snapshot
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
