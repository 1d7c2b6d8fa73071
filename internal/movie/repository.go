package movie

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultQueryTimeout = 5 * time.Second

const movieColumns = `id, title, episode_id, opening_crawl, director, producer, release_date,
	species, starships, vehicles, characters, planets, url, created, edited`

const insertMovie = `
INSERT INTO movies (title, episode_id, opening_crawl, director, producer, release_date,
	species, starships, vehicles, characters, planets, url, created, edited)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, COALESCE($13, NOW()), COALESCE($14, NOW()))`

// Repository is the PostgreSQL-backed movie store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a movie.
func (r *Repository) Create(ctx context.Context, in NewMovie) (Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	movie, err := scanMovie(r.pool.QueryRow(ctx, insertMovie+` RETURNING `+movieColumns+`;`, insertArgs(in)...))
	if err != nil {
		if isUniqueViolation(err) {
			return Movie{}, ErrMovieExists
		}
		return Movie{}, fmt.Errorf("create movie: %w", err)
	}
	return movie, nil
}

// CreateMany inserts movies in one batch, skipping episodes that already
// exist, and reports how many rows were written.
func (r *Repository) CreateMany(ctx context.Context, movies []NewMovie) (int, error) {
	if len(movies) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, m := range movies {
		batch.Queue(insertMovie+` ON CONFLICT (episode_id) DO NOTHING;`, insertArgs(m)...)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := range movies {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert movie episode %d: %w", movies[i].EpisodeID, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// ExistingEpisodeIDs returns which of episodeIDs are already stored.
func (r *Repository) ExistingEpisodeIDs(ctx context.Context, episodeIDs []int) (map[int]struct{}, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	existing := make(map[int]struct{})
	if len(episodeIDs) == 0 {
		return existing, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT episode_id FROM movies WHERE episode_id = ANY($1);`, episodeIDs)
	if err != nil {
		return nil, fmt.Errorf("query episode ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan episode id: %w", err)
		}
		existing[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate episode ids: %w", err)
	}
	return existing, nil
}

// FindByID fetches a movie by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	movie, err := scanMovie(r.pool.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movie{}, ErrMovieNotFound
		}
		return Movie{}, fmt.Errorf("find movie: %w", err)
	}
	return movie, nil
}

// List returns movies matching every non-empty field of filter, ordered by episode.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var (
		conditions []string
		args       []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, column+" = $"+strconv.Itoa(len(args)))
	}
	if filter.Title != "" {
		add("title", filter.Title)
	}
	if filter.EpisodeID != nil {
		add("episode_id", *filter.EpisodeID)
	}
	if filter.Director != "" {
		add("director", filter.Director)
	}
	if filter.Producer != "" {
		add("producer", filter.Producer)
	}
	if filter.ReleaseDate != "" {
		add("release_date", filter.ReleaseDate)
	}

	query := `SELECT ` + movieColumns + ` FROM movies`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY episode_id, id;`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	movies := make([]Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return movies, nil
}

// Update applies the non-nil fields of changes and bumps edited.
func (r *Repository) Update(ctx context.Context, id int64, changes Changes) (Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if changes.Title != nil {
		set("title", *changes.Title)
	}
	if changes.EpisodeID != nil {
		set("episode_id", *changes.EpisodeID)
	}
	if changes.OpeningCrawl != nil {
		set("opening_crawl", *changes.OpeningCrawl)
	}
	if changes.Director != nil {
		set("director", *changes.Director)
	}
	if changes.Producer != nil {
		set("producer", *changes.Producer)
	}
	if changes.ReleaseDate != nil {
		set("release_date", *changes.ReleaseDate)
	}
	if changes.Species != nil {
		set("species", nonNil(*changes.Species))
	}
	if changes.Starships != nil {
		set("starships", nonNil(*changes.Starships))
	}
	if changes.Vehicles != nil {
		set("vehicles", nonNil(*changes.Vehicles))
	}
	if changes.Characters != nil {
		set("characters", nonNil(*changes.Characters))
	}
	if changes.Planets != nil {
		set("planets", nonNil(*changes.Planets))
	}
	if changes.URL != nil {
		set("url", *changes.URL)
	}
	sets = append(sets, "edited = NOW()")
	args = append(args, id)

	query := `UPDATE movies SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + movieColumns + `;`

	movie, err := scanMovie(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return Movie{}, ErrMovieNotFound
		case isUniqueViolation(err):
			return Movie{}, ErrMovieExists
		}
		return Movie{}, fmt.Errorf("update movie: %w", err)
	}
	return movie, nil
}

// Delete removes the movie and returns the deleted record.
func (r *Repository) Delete(ctx context.Context, id int64) (Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	movie, err := scanMovie(r.pool.QueryRow(ctx, `DELETE FROM movies WHERE id = $1 RETURNING `+movieColumns+`;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movie{}, ErrMovieNotFound
		}
		return Movie{}, fmt.Errorf("delete movie: %w", err)
	}
	return movie, nil
}

func insertArgs(m NewMovie) []any {
	return []any{
		m.Title,
		m.EpisodeID,
		m.OpeningCrawl,
		m.Director,
		m.Producer,
		m.ReleaseDate,
		nonNil(m.Species),
		nonNil(m.Starships),
		nonNil(m.Vehicles),
		nonNil(m.Characters),
		nonNil(m.Planets),
		m.URL,
		nullableTime(m.Created),
		nullableTime(m.Edited),
	}
}

func scanMovie(row pgx.Row) (Movie, error) {
	var m Movie
	err := row.Scan(
		&m.ID,
		&m.Title,
		&m.EpisodeID,
		&m.OpeningCrawl,
		&m.Director,
		&m.Producer,
		&m.ReleaseDate,
		&m.Species,
		&m.Starships,
		&m.Vehicles,
		&m.Characters,
		&m.Planets,
		&m.URL,
		&m.Created,
		&m.Edited,
	)
	return m, err
}

// nonNil keeps NOT NULL array columns from receiving SQL NULL.
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}
