package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Genre is embedded catalog metadata, unique by name by convention.
type Genre struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Director is embedded catalog metadata.
type Director struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// MovieRecord is a catalog entry. Actors holds ordered actor ids.
type MovieRecord struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Genre       Genre      `json:"genre"`
	Director    Director   `json:"director"`
	Actors      []int64    `json:"actors"`
	ImagePath   string     `json:"imagePath,omitempty"`
	Featured    bool       `json:"featured"`
	Rating      *float64   `json:"rating,omitempty"`
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
}

// ActorRecord is a catalog entry for an actor.
type ActorRecord struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Bio   string     `json:"bio"`
	Birth *time.Time `json:"birth,omitempty"`
	Death *time.Time `json:"death,omitempty"`
}

// MovieInput is the write-side shape used by the catalog seeder.
type MovieInput struct {
	Title       string
	Description string
	Genre       Genre
	Director    Director
	ImagePath   string
	Featured    bool
	Rating      *float64
	ReleaseDate *time.Time
}

// MovieRepository defines read operations for the movie catalog plus the
// create operations the seeder needs. The API itself treats the catalog as
// read-only.
type MovieRepository interface {
	List(ctx context.Context, page, perPage int) ([]MovieRecord, int, error)
	FindByTitle(ctx context.Context, title string) (*MovieRecord, error)
	FindGenre(ctx context.Context, name string) (*Genre, error)
	FindDirector(ctx context.Context, name string) (*Director, error)
	Exists(ctx context.Context, movieID int64) (bool, error)
	Create(ctx context.Context, in MovieInput) (int64, error)
	LinkActor(ctx context.Context, movieID, actorID int64, position int) error
}

// ActorRepository defines operations for actors.
type ActorRepository interface {
	FindByName(ctx context.Context, name string) (*ActorRecord, error)
	MoviesByActor(ctx context.Context, actorID int64) ([]MovieRecord, error)
	Create(ctx context.Context, a ActorRecord) (int64, error)
}

const movieColumns = `m.id, m.title, m.description, m.genre_name, m.genre_description,
	m.director_name, m.director_bio, m.image_path, m.featured, m.rating, m.release_date,
	(SELECT COALESCE(array_agg(ma.actor_id ORDER BY ma.position), '{}'::bigint[])
		FROM movie_actors ma WHERE ma.movie_id = m.id)`

// PgMovieRepository implements MovieRepository using pgxpool.
type PgMovieRepository struct {
	db *pgxpool.Pool
}

func NewPgMovieRepository(db *pgxpool.Pool) *PgMovieRepository {
	return &PgMovieRepository{db: db}
}

func scanMovie(row pgx.Row) (*MovieRecord, error) {
	var m MovieRecord
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Genre.Name, &m.Genre.Description,
		&m.Director.Name, &m.Director.Bio, &m.ImagePath, &m.Featured, &m.Rating, &m.ReleaseDate,
		&m.Actors)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if m.Actors == nil {
		m.Actors = []int64{}
	}
	return &m, nil
}

func collectMovies(rows pgx.Rows) ([]MovieRecord, error) {
	defer rows.Close()
	var items []MovieRecord
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if items == nil {
		items = []MovieRecord{}
	}
	return items, rows.Err()
}

func (r *PgMovieRepository) List(ctx context.Context, page, perPage int) ([]MovieRecord, int, error) {
	if page <= 0 || perPage <= 0 {
		return nil, 0, errors.New("invalid pagination")
	}
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM movies`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+movieColumns+` FROM movies m ORDER BY m.id LIMIT $1 OFFSET $2`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectMovies(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PgMovieRepository) FindByTitle(ctx context.Context, title string) (*MovieRecord, error) {
	const q = `SELECT ` + movieColumns + ` FROM movies m WHERE m.title=$1`
	return scanMovie(r.db.QueryRow(ctx, q, title))
}

// FindGenre returns the genre metadata from any movie carrying it.
func (r *PgMovieRepository) FindGenre(ctx context.Context, name string) (*Genre, error) {
	const q = `SELECT genre_name, genre_description FROM movies WHERE genre_name=$1 LIMIT 1`
	var g Genre
	if err := r.db.QueryRow(ctx, q, name).Scan(&g.Name, &g.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// FindDirector returns the director metadata from any movie carrying it.
func (r *PgMovieRepository) FindDirector(ctx context.Context, name string) (*Director, error) {
	const q = `SELECT director_name, director_bio FROM movies WHERE director_name=$1 LIMIT 1`
	var d Director
	if err := r.db.QueryRow(ctx, q, name).Scan(&d.Name, &d.Bio); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *PgMovieRepository) Exists(ctx context.Context, movieID int64) (bool, error) {
	var one int
	if err := r.db.QueryRow(ctx, `SELECT 1 FROM movies WHERE id=$1`, movieID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Create inserts a movie; an existing title is left untouched and its id is
// returned, keeping seeding idempotent.
func (r *PgMovieRepository) Create(ctx context.Context, in MovieInput) (int64, error) {
	const q = `INSERT INTO movies
			(title, description, genre_name, genre_description, director_name, director_bio,
			 image_path, featured, rating, release_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (title) DO NOTHING
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, q, in.Title, in.Description, in.Genre.Name, in.Genre.Description,
		in.Director.Name, in.Director.Bio, in.ImagePath, in.Featured, in.Rating, in.ReleaseDate).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		if err := r.db.QueryRow(ctx, `SELECT id FROM movies WHERE title=$1`, in.Title).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PgMovieRepository) LinkActor(ctx context.Context, movieID, actorID int64, position int) error {
	const q = `INSERT INTO movie_actors (movie_id, actor_id, position)
		VALUES ($1,$2,$3)
		ON CONFLICT (movie_id, actor_id) DO NOTHING`
	_, err := r.db.Exec(ctx, q, movieID, actorID, position)
	return err
}

// PgActorRepository implements ActorRepository using pgxpool.
type PgActorRepository struct {
	db *pgxpool.Pool
}

func NewPgActorRepository(db *pgxpool.Pool) *PgActorRepository {
	return &PgActorRepository{db: db}
}

func (r *PgActorRepository) FindByName(ctx context.Context, name string) (*ActorRecord, error) {
	const q = `SELECT id, name, bio, birth, death FROM actors WHERE name=$1`
	var a ActorRecord
	if err := r.db.QueryRow(ctx, q, name).Scan(&a.ID, &a.Name, &a.Bio, &a.Birth, &a.Death); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PgActorRepository) MoviesByActor(ctx context.Context, actorID int64) ([]MovieRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+movieColumns+` FROM movies m
		 JOIN movie_actors link ON link.movie_id = m.id
		 WHERE link.actor_id=$1
		 ORDER BY m.id`, actorID)
	if err != nil {
		return nil, err
	}
	return collectMovies(rows)
}

// Create inserts an actor; an existing name returns its id unchanged.
func (r *PgActorRepository) Create(ctx context.Context, a ActorRecord) (int64, error) {
	const q = `INSERT INTO actors (name, bio, birth, death)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (name) DO NOTHING
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, q, a.Name, a.Bio, a.Birth, a.Death).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		if err := r.db.QueryRow(ctx, `SELECT id FROM actors WHERE name=$1`, a.Name).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}
