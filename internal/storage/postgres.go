package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresGateway persists interviews and resumes in PostgreSQL.
type PostgresGateway struct {
	pool *pgxpool.Pool
}

func NewPostgresGateway(ctx context.Context, databaseURL string) (*PostgresGateway, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresGateway{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS interviews (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			ended_at TIMESTAMPTZ NOT NULL,
			final_score INT,
			status TEXT NOT NULL,
			questions JSONB NOT NULL DEFAULT '[]',
			history JSONB NOT NULL DEFAULT '[]'
		);`,
		`CREATE INDEX IF NOT EXISTS idx_interviews_user_started ON interviews (user_id, started_at);`,
		`CREATE TABLE IF NOT EXISTS resumes (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			skills JSONB NOT NULL DEFAULT '[]',
			experience JSONB NOT NULL DEFAULT '[]',
			projects JSONB NOT NULL DEFAULT '[]',
			uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (g *PostgresGateway) SaveInterview(ctx context.Context, record InterviewRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	questions, err := json.Marshal(record.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	history, err := json.Marshal(record.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	_, err = g.pool.Exec(ctx,
		`INSERT INTO interviews (id, user_id, user_name, started_at, ended_at, final_score, status, questions, history)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
			ended_at = EXCLUDED.ended_at,
			final_score = EXCLUDED.final_score,
			status = EXCLUDED.status,
			questions = EXCLUDED.questions,
			history = EXCLUDED.history`,
		record.ID,
		record.UserID,
		record.UserName,
		record.StartedAt,
		record.EndedAt,
		record.FinalScore,
		record.Status,
		questions,
		history,
	)
	if err != nil {
		return fmt.Errorf("save interview: %w", err)
	}
	return nil
}

func (g *PostgresGateway) UpdateInterviewStatus(ctx context.Context, interviewID, status string) error {
	tag, err := g.pool.Exec(ctx,
		`UPDATE interviews SET status=$2 WHERE id=$1`, interviewID, status)
	if err != nil {
		return fmt.Errorf("update interview status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("interview %s not found", interviewID)
	}
	return nil
}

func (g *PostgresGateway) GetUserInterviews(ctx context.Context, userID string) ([]InterviewRecord, error) {
	rows, err := g.pool.Query(ctx,
		`SELECT id, user_id, user_name, started_at, ended_at, final_score, status, questions, history
		 FROM interviews WHERE user_id=$1 ORDER BY started_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query user interviews: %w", err)
	}
	defer rows.Close()

	var records []InterviewRecord
	for rows.Next() {
		var (
			r         InterviewRecord
			questions []byte
			history   []byte
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.UserName, &r.StartedAt, &r.EndedAt, &r.FinalScore, &r.Status, &questions, &history); err != nil {
			return nil, fmt.Errorf("scan interview row: %w", err)
		}
		if err := json.Unmarshal(questions, &r.Questions); err != nil {
			return nil, fmt.Errorf("unmarshal questions: %w", err)
		}
		if err := json.Unmarshal(history, &r.History); err != nil {
			return nil, fmt.Errorf("unmarshal history: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interview rows: %w", err)
	}
	return records, nil
}

func (g *PostgresGateway) SaveResume(ctx context.Context, record ResumeRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now().UTC()
	}

	skills, err := json.Marshal(record.Skills)
	if err != nil {
		return fmt.Errorf("marshal skills: %w", err)
	}
	experience, err := json.Marshal(record.Experience)
	if err != nil {
		return fmt.Errorf("marshal experience: %w", err)
	}
	projects, err := json.Marshal(record.Projects)
	if err != nil {
		return fmt.Errorf("marshal projects: %w", err)
	}

	_, err = g.pool.Exec(ctx,
		`INSERT INTO resumes (id, user_id, name, skills, experience, projects, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID,
		record.UserID,
		record.Name,
		skills,
		experience,
		projects,
		record.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("save resume: %w", err)
	}
	return nil
}

func (g *PostgresGateway) GetUserResumes(ctx context.Context, userID string) ([]ResumeRecord, error) {
	rows, err := g.pool.Query(ctx,
		`SELECT id, user_id, name, skills, experience, projects, uploaded_at
		 FROM resumes WHERE user_id=$1 ORDER BY uploaded_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query user resumes: %w", err)
	}
	defer rows.Close()

	var records []ResumeRecord
	for rows.Next() {
		var (
			r          ResumeRecord
			skills     []byte
			experience []byte
			projects   []byte
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &skills, &experience, &projects, &r.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan resume row: %w", err)
		}
		if err := json.Unmarshal(skills, &r.Skills); err != nil {
			return nil, fmt.Errorf("unmarshal skills: %w", err)
		}
		if err := json.Unmarshal(experience, &r.Experience); err != nil {
			return nil, fmt.Errorf("unmarshal experience: %w", err)
		}
		if err := json.Unmarshal(projects, &r.Projects); err != nil {
			return nil, fmt.Errorf("unmarshal projects: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resume rows: %w", err)
	}
	return records, nil
}

func (g *PostgresGateway) Close() error {
	g.pool.Close()
	return nil
}
