package documentfile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/reisegeld/reisegeld/pkg/user"
)

var ErrNotAllowed = errors.New("operation not allowed")

type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Upload(ctx context.Context, name, contentType string, data []byte) (DocumentFile, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return DocumentFile{}, err
	}
	if !TypeAllowed(contentType) {
		return DocumentFile{}, ErrUnsupportedType
	}
	file := DocumentFile{
		UID:     uuid.New().String(),
		OwnerID: currentUser.Id,
		Name:    name,
		Type:    contentType,
		Data:    data,
	}
	return s.repo.Create(ctx, file)
}

func (s *Service) Get(ctx context.Context, id int) (DocumentFile, error) {
	file, err := s.repo.Get(ctx, id)
	if err != nil {
		return DocumentFile{}, err
	}
	if err := s.mayAccess(ctx, file); err != nil {
		return DocumentFile{}, err
	}
	return file, nil
}

func (s *Service) GetMeta(ctx context.Context, id int) (DocumentFile, error) {
	file, err := s.repo.GetMeta(ctx, id)
	if err != nil {
		return DocumentFile{}, err
	}
	if err := s.mayAccess(ctx, file); err != nil {
		return DocumentFile{}, err
	}
	return file, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	file, err := s.repo.GetMeta(ctx, id)
	if err != nil {
		return err
	}
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if file.OwnerID != currentUser.Id {
		return ErrNotAllowed
	}
	return s.repo.Delete(ctx, id)
}

// Examiners need to open receipts attached to forms they review, so access
// is wider than ownership.
func (s *Service) mayAccess(ctx context.Context, file DocumentFile) error {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if file.OwnerID == currentUser.Id {
		return nil
	}
	if currentUser.Access.Examine || currentUser.Access.ApproveTravel || currentUser.Access.Admin {
		return nil
	}
	return ErrNotAllowed
}
