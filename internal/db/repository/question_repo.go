// Package repository holds the pgx storage adapters. Each adapter translates
// the service-layer filter specifications into SQL against one of the two
// stores and maps storage failures onto the domain error taxonomy.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsamate/dsamate/internal/question"
	httperrors "github.com/dsamate/dsamate/pkg/http/errors"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

const questionColumns = "id, title, description, difficulty, topic, hint"

// Questions is the storage adapter for the question catalog.
type Questions struct {
	pool *pgxpool.Pool
}

// NewQuestions wraps the application pool for question access.
func NewQuestions(pool *pgxpool.Pool) *Questions {
	return &Questions{pool: pool}
}

// List translates a ListQuery into SQL. No ORDER BY is emitted unless title
// sorting was requested; ties keep the store's natural return order.
func (r *Questions) List(ctx context.Context, q question.ListQuery) ([]question.Question, error) {
	var (
		conds []string
		args  []any
	)

	if q.TitleContains != "" {
		args = append(args, "%"+q.TitleContains+"%")
		conds = append(conds, fmt.Sprintf("lower(title) LIKE $%d", len(args)))
	}
	if q.Difficulty != "" {
		args = append(args, string(q.Difficulty))
		conds = append(conds, fmt.Sprintf("difficulty = $%d", len(args)))
	}
	if q.Topic != "" {
		args = append(args, string(q.Topic))
		conds = append(conds, fmt.Sprintf("topic = $%d", len(args)))
	}
	switch q.Solved {
	case question.SolvedOnly:
		args = append(args, q.SolvedIDs)
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	case question.UnsolvedOnly:
		args = append(args, q.SolvedIDs)
		conds = append(conds, fmt.Sprintf("NOT (id = ANY($%d))", len(args)))
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + questionColumns + " FROM questions")
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	if q.SortByTitle {
		if q.Ascending {
			sb.WriteString(" ORDER BY title ASC")
		} else {
			sb.WriteString(" ORDER BY title DESC")
		}
	}
	args = append(args, q.Offset)
	sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	args = append(args, q.Limit)
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// Get fetches a single question by id.
func (r *Questions) Get(ctx context.Context, id uuid.UUID) (question.Question, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+questionColumns+" FROM questions WHERE id = $1", id)

	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return question.Question{}, fmt.Errorf("question: %w", httperrors.ErrNotFound)
		}
		return question.Question{}, err
	}
	return q, nil
}

// Insert stores a question and returns it with its generated id. The unique
// index on title is the real guard against concurrent duplicate creation.
func (r *Questions) Insert(ctx context.Context, q question.Question) (question.Question, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO questions (title, description, difficulty, topic, hint)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		q.Title, q.Description, string(q.Difficulty), string(q.Topic), q.Hint,
	).Scan(&q.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return question.Question{}, fmt.Errorf("question %q: %w", q.Title, httperrors.ErrAlreadyExists)
		}
		return question.Question{}, err
	}
	return q, nil
}

// InsertMany stores a batch inside one transaction so a failure writes nothing.
func (r *Questions) InsertMany(ctx context.Context, qs []question.Question) ([]question.Question, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created := make([]question.Question, 0, len(qs))
	for _, q := range qs {
		err := tx.QueryRow(ctx,
			`INSERT INTO questions (title, description, difficulty, topic, hint)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			q.Title, q.Description, string(q.Difficulty), string(q.Topic), q.Hint,
		).Scan(&q.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("question %q: %w", q.Title, httperrors.ErrAlreadyExists)
			}
			return nil, err
		}
		created = append(created, q)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// TitleExists reports whether a question with exactly this title is stored.
func (r *Questions) TitleExists(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM questions WHERE title = $1)", title,
	).Scan(&exists)
	return exists, err
}

// ExistingTitles returns the stored titles whose lowercase form appears in
// the normalized input set.
func (r *Questions) ExistingTitles(ctx context.Context, normalized []string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT title FROM questions WHERE lower(title) = ANY($1)", normalized)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// CountByTopic groups all stored questions by topic.
func (r *Questions) CountByTopic(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT topic, COUNT(*) FROM questions GROUP BY topic")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			topic string
			count int
		)
		if err := rows.Scan(&topic, &count); err != nil {
			return nil, err
		}
		counts[topic] = count
	}
	return counts, rows.Err()
}

func scanQuestions(rows pgx.Rows) ([]question.Question, error) {
	var qs []question.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return qs, rows.Err()
}

func scanQuestion(row pgx.Row) (question.Question, error) {
	var (
		q          question.Question
		difficulty string
		topic      string
	)
	if err := row.Scan(&q.ID, &q.Title, &q.Description, &difficulty, &topic, &q.Hint); err != nil {
		return question.Question{}, err
	}
	q.Difficulty = question.Difficulty(difficulty)
	q.Topic = question.Topic(topic)
	return q, nil
}
