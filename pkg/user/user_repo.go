package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	UpdateAccess(ctx context.Context, id int, access Access) (bool, error)
	DeleteUser(ctx context.Context, id int) error
}

type RepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *RepoImpl {
	return &RepoImpl{db: db}
}

func (u *RepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO users (uid, name, email, can_examine, can_approve_travel, is_admin)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int
	err := u.db.QueryRow(ctx, query,
		user.Uid,
		user.Name,
		user.Email,
		user.Access.Examine,
		user.Access.ApproveTravel,
		user.Access.Admin,
	).Scan(&id)
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	return id, nil
}

func (u *RepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := `SELECT id, uid, name, email, can_examine, can_approve_travel, is_admin FROM users WHERE id = $1`
	return u.scanUser(u.db.QueryRow(ctx, query, id))
}

func (u *RepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	query := `SELECT id, uid, name, email, can_examine, can_approve_travel, is_admin FROM users WHERE uid = $1`
	return u.scanUser(u.db.QueryRow(ctx, query, uid))
}

func (u *RepoImpl) scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.Id,
		&user.Uid,
		&user.Name,
		&user.Email,
		&user.Access.Examine,
		&user.Access.ApproveTravel,
		&user.Access.Admin,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}

func (u *RepoImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	query := `SELECT id, uid, name, email, can_examine, can_approve_travel, is_admin FROM users ORDER BY name`
	rows, err := u.db.Query(ctx, query)
	if err != nil {
		log.Errorf("failed to query users: %v", err)
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(
			&user.Id,
			&user.Uid,
			&user.Name,
			&user.Email,
			&user.Access.Examine,
			&user.Access.ApproveTravel,
			&user.Access.Admin,
		); err != nil {
			log.Errorf("failed to scan user: %v", err)
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (u *RepoImpl) UpdateAccess(ctx context.Context, id int, access Access) (bool, error) {
	query := `UPDATE users SET can_examine = $1, can_approve_travel = $2, is_admin = $3 WHERE id = $4`
	tag, err := u.db.Exec(ctx, query, access.Examine, access.ApproveTravel, access.Admin, id)
	if err != nil {
		log.Errorf("failed to update user access: %v", err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (u *RepoImpl) DeleteUser(ctx context.Context, id int) error {
	_, err := u.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Errorf("failed to delete user: %v", err)
	}
	return err
}
