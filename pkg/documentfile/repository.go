package documentfile

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo interface {
	Create(ctx context.Context, file DocumentFile) (DocumentFile, error)
	Get(ctx context.Context, id int) (DocumentFile, error)
	GetMeta(ctx context.Context, id int) (DocumentFile, error)
	Delete(ctx context.Context, id int) error
}

type RepoImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Create(ctx context.Context, file DocumentFile) (DocumentFile, error) {
	row := r.db.QueryRow(ctx,
		"INSERT INTO document_file (uid, owner_id, name, type, data) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		file.UID, file.OwnerID, file.Name, file.Type, file.Data,
	)
	if err := row.Scan(&file.ID); err != nil {
		return DocumentFile{}, err
	}
	return file, nil
}

func (r *RepoImpl) Get(ctx context.Context, id int) (DocumentFile, error) {
	row := r.db.QueryRow(ctx,
		"SELECT id, uid, owner_id, name, type, data FROM document_file WHERE id = $1", id)
	var file DocumentFile
	err := row.Scan(&file.ID, &file.UID, &file.OwnerID, &file.Name, &file.Type, &file.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return DocumentFile{}, ErrNotFound
	}
	if err != nil {
		return DocumentFile{}, err
	}
	return file, nil
}

// GetMeta fetches everything except the payload. Receipt listings on the
// travel form only need name and type.
func (r *RepoImpl) GetMeta(ctx context.Context, id int) (DocumentFile, error) {
	row := r.db.QueryRow(ctx,
		"SELECT id, uid, owner_id, name, type FROM document_file WHERE id = $1", id)
	var file DocumentFile
	err := row.Scan(&file.ID, &file.UID, &file.OwnerID, &file.Name, &file.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return DocumentFile{}, ErrNotFound
	}
	if err != nil {
		return DocumentFile{}, err
	}
	return file, nil
}

func (r *RepoImpl) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, "DELETE FROM document_file WHERE id = $1", id)
	return err
}
