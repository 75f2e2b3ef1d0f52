package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserRecord is the persistence-layer projection of a user. PasswordHash is
// always a bcrypt hash, never a plaintext.
type UserRecord struct {
	ID             int64
	Username       string
	PasswordHash   string
	Email          string
	BirthDate      *time.Time
	FavoriteMovies []int64
	CreatedAt      time.Time
}

// UserListItem is a projection for user listing (no password hash).
type UserListItem struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	BirthDate      *time.Time `json:"birthDate,omitempty"`
	FavoriteMovies []int64    `json:"favoriteMovies"`
	CreatedAt      time.Time  `json:"created_at"`
}

// UserUpdate carries the final field values for a profile update. The
// handler resolves partial input against the current record before calling
// the repository.
type UserUpdate struct {
	Username     string
	PasswordHash string
	Email        string
	BirthDate    *time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*UserRecord, error)
	Create(ctx context.Context, username, passwordHash, email string, birthDate *time.Time) (*UserRecord, error)
	Update(ctx context.Context, username string, upd UserUpdate) (*UserRecord, error)
	Delete(ctx context.Context, username string) error
	List(ctx context.Context, page, perPage int) ([]UserListItem, int, error)
	AddFavorite(ctx context.Context, username string, movieID int64) (*UserRecord, error)
	RemoveFavorite(ctx context.Context, username string, movieID int64) (*UserRecord, error)
}

// PgUserRepository implements UserRepository using pgxpool.
type PgUserRepository struct {
	db *pgxpool.Pool
}

func NewPgUserRepository(db *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{db: db}
}

const userColumns = `id, username, password_hash, email, birth_date, favorite_movies, created_at`

func scanUserRow(row pgx.Row) (*UserRecord, error) {
	var u UserRecord
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.BirthDate, &u.FavoriteMovies, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if u.FavoriteMovies == nil {
		u.FavoriteMovies = []int64{}
	}
	return &u, nil
}

func (r *PgUserRepository) FindByUsername(ctx context.Context, username string) (*UserRecord, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return scanUserRow(r.db.QueryRow(ctx, q, username))
}

func (r *PgUserRepository) Create(ctx context.Context, username, passwordHash, email string, birthDate *time.Time) (*UserRecord, error) {
	const q = `INSERT INTO users (username, password_hash, email, birth_date)
		VALUES ($1,$2,$3,$4)
		RETURNING ` + userColumns
	u, err := scanUserRow(r.db.QueryRow(ctx, q, username, passwordHash, email, birthDate))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return u, nil
}

func (r *PgUserRepository) Update(ctx context.Context, username string, upd UserUpdate) (*UserRecord, error) {
	const q = `UPDATE users
		SET username=$2, password_hash=$3, email=$4, birth_date=$5
		WHERE username=$1
		RETURNING ` + userColumns
	u, err := scanUserRow(r.db.QueryRow(ctx, q, username, upd.Username, upd.PasswordHash, upd.Email, upd.BirthDate))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return u, nil
}

func (r *PgUserRepository) Delete(ctx context.Context, username string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE username=$1`, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns paginated users without password hashes.
func (r *PgUserRepository) List(ctx context.Context, page, perPage int) ([]UserListItem, int, error) {
	if page <= 0 || perPage <= 0 {
		return nil, 0, errors.New("invalid pagination")
	}
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, username, email, birth_date, favorite_movies, created_at FROM users ORDER BY id LIMIT $1 OFFSET $2`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := make([]UserListItem, 0, perPage)
	for rows.Next() {
		var u UserListItem
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.BirthDate, &u.FavoriteMovies, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		if u.FavoriteMovies == nil {
			u.FavoriteMovies = []int64{}
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

// AddFavorite appends the movie id to the user's favorites unless it is
// already a member. The whole mutation is a single UPDATE so concurrent
// adds cannot produce duplicates or lost updates.
func (r *PgUserRepository) AddFavorite(ctx context.Context, username string, movieID int64) (*UserRecord, error) {
	const q = `UPDATE users
		SET favorite_movies = CASE
			WHEN $2 = ANY(favorite_movies) THEN favorite_movies
			ELSE array_append(favorite_movies, $2)
		END
		WHERE username=$1
		RETURNING ` + userColumns
	return scanUserRow(r.db.QueryRow(ctx, q, username, movieID))
}

// RemoveFavorite drops the movie id from the favorites list. Removing a
// non-member id is a no-op that returns the unchanged record.
func (r *PgUserRepository) RemoveFavorite(ctx context.Context, username string, movieID int64) (*UserRecord, error) {
	const q = `UPDATE users
		SET favorite_movies = array_remove(favorite_movies, $2)
		WHERE username=$1
		RETURNING ` + userColumns
	return scanUserRow(r.db.QueryRow(ctx, q, username, movieID))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
