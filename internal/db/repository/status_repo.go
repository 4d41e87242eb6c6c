package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsamate/dsamate/internal/question"
)

// Statuses is the storage adapter for per-(user, question) solved rows.
type Statuses struct {
	pool *pgxpool.Pool
}

// NewStatuses wraps the application pool for status access.
func NewStatuses(pool *pgxpool.Pool) *Statuses {
	return &Statuses{pool: pool}
}

// ForUser materializes the caller's status rows as an id to solved-at map.
func (r *Statuses) ForUser(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]*time.Time, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT question_id, solved_at FROM user_question_statuses WHERE user_id = $1", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make(map[uuid.UUID]*time.Time)
	for rows.Next() {
		var (
			questionID uuid.UUID
			solvedAt   *time.Time
		)
		if err := rows.Scan(&questionID, &solvedAt); err != nil {
			return nil, err
		}
		statuses[questionID] = solvedAt
	}
	return statuses, rows.Err()
}

// UpsertSolved creates or refreshes the status row in one statement. The
// composite primary key arbitrates racing calls; the last write wins.
func (r *Statuses) UpsertSolved(ctx context.Context, userID, questionID uuid.UUID, solvedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_question_statuses (user_id, question_id, is_solved, solved_at)
		 VALUES ($1, $2, TRUE, $3)
		 ON CONFLICT (user_id, question_id)
		 DO UPDATE SET is_solved = TRUE, solved_at = EXCLUDED.solved_at`,
		userID, questionID, solvedAt)
	return err
}

// SolvedQuestions returns the questions behind the user's status rows.
func (r *Statuses) SolvedQuestions(ctx context.Context, userID uuid.UUID) ([]question.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.title, q.description, q.difficulty, q.topic, q.hint
		 FROM user_question_statuses uqs
		 JOIN questions q ON q.id = uqs.question_id
		 WHERE uqs.user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanQuestions(rows)
}

// SolvedCountByTopic groups the user's status rows by the linked question's
// topic. Row presence counts as solved.
func (r *Statuses) SolvedCountByTopic(ctx context.Context, userID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.topic, COUNT(*)
		 FROM user_question_statuses uqs
		 JOIN questions q ON q.id = uqs.question_id
		 WHERE uqs.user_id = $1
		 GROUP BY q.topic`, userID)
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
