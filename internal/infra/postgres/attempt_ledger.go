package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"quizlink-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AttemptLedger is the Postgres implementation of app.AttemptLedger. The
// uniqueness invariant is enforced by the (quiz_id, nij_norm) unique
// constraint, so the check and the insert cannot race: the losing concurrent
// insert hits the constraint and is reported as domain.ErrDuplicateAttempt.
type AttemptLedger struct {
	pool *pgxpool.Pool
}

func NewAttemptLedger(pool *pgxpool.Pool) *AttemptLedger {
	return &AttemptLedger{pool: pool}
}

func (l *AttemptLedger) HasAttempt(ctx context.Context, quizID, nij string) (bool, error) {
	var exists bool
	err := l.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM attempts WHERE quiz_id=$1 AND nij_norm=$2)`,
		quizID, domain.NormalizeNIJ(nij),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check attempt: %w", err)
	}
	return exists, nil
}

// Record inserts the attempt with ON CONFLICT DO NOTHING; a conflicted insert
// returns no row, which is the duplicate signal. Passed is derived here from
// the passing score in effect at write time and never recomputed.
func (l *AttemptLedger) Record(ctx context.Context, attempt domain.Attempt, passingScore int) (domain.Attempt, error) {
	nij := domain.NormalizeNIJ(attempt.NIJ)
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("marshal answers: %w", err)
	}
	passed := attempt.Score >= passingScore

	var id int64
	err = l.pool.QueryRow(ctx,
		`INSERT INTO attempts (quiz_id, nij_norm, display_name, answers, score, passed, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (quiz_id, nij_norm) DO NOTHING
		 RETURNING id`,
		attempt.QuizID, nij, attempt.Name, answers, attempt.Score, passed, attempt.SubmittedAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, domain.ErrDuplicateAttempt
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("record attempt: %w", err)
	}

	attempt.ID = strconv.FormatInt(id, 10)
	attempt.NIJ = nij
	attempt.Passed = passed
	return attempt, nil
}

func (l *AttemptLedger) ListByQuiz(ctx context.Context, quizID string) ([]domain.Attempt, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, quiz_id, nij_norm, display_name, answers, score, passed, submitted_at
		 FROM attempts WHERE quiz_id=$1 ORDER BY id`,
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.Attempt
	for rows.Next() {
		var (
			id      int64
			attempt domain.Attempt
			answers []byte
		)
		if err := rows.Scan(&id, &attempt.QuizID, &attempt.NIJ, &attempt.Name, &answers, &attempt.Score, &attempt.Passed, &attempt.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if err := json.Unmarshal(answers, &attempt.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		attempt.ID = strconv.FormatInt(id, 10)
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}
