package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

// PostgresEventSink implements EventSink on the attempt_events table
type PostgresEventSink struct {
	BaseProvider
	db *sql.DB
}

// NewPostgresEventSink opens a database/sql pool through lib/pq
func NewPostgresEventSink(dsn string) (*PostgresEventSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	db.SetMaxOpenConns(5)

	return &PostgresEventSink{
		BaseProvider: BaseProvider{serviceType: "postgres"},
		db:           db,
	}, nil
}

// Record inserts one attempt event
func (p *PostgresEventSink) Record(ctx context.Context, e models.AttemptEvent) error {
	query := `
		INSERT INTO attempt_events (id, session_id, engine_id, step_id, step_kind, correct, error_type, severity, skill_tag, highlight, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := p.db.ExecContext(ctx, query,
		e.ID,
		e.SessionID,
		e.EngineID,
		e.StepID,
		string(e.StepKind),
		e.Correct,
		string(e.ErrorType),
		string(e.Severity),
		sql.NullString{String: e.SkillTag, Valid: e.SkillTag != ""},
		pq.Array(encodePositions(e.Highlight)),
		e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// ListBySession returns the newest events of a session first
func (p *PostgresEventSink) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.AttemptEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, session_id, engine_id, step_id, step_kind, correct, error_type, severity, skill_tag, highlight, occurred_at
		FROM attempt_events
		WHERE session_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := p.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var events []models.AttemptEvent
	for rows.Next() {
		var e models.AttemptEvent
		var stepKind, errorType, severity string
		var skillTag sql.NullString
		var highlight []string

		err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&e.EngineID,
			&e.StepID,
			&stepKind,
			&e.Correct,
			&errorType,
			&severity,
			&skillTag,
			pq.Array(&highlight),
			&e.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}

		e.StepKind = models.StepKind(stepKind)
		e.ErrorType = models.ErrorType(errorType)
		e.Severity = models.Severity(severity)
		e.SkillTag = skillTag.String
		e.Highlight = decodePositions(highlight)
		events = append(events, e)
	}

	return events, rows.Err()
}

// HealthCheck verifies PostgreSQL connectivity
func (p *PostgresEventSink) HealthCheck(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the pool
func (p *PostgresEventSink) Close() error {
	return p.db.Close()
}

// encodePositions writes positions as "row,col" for a TEXT[] column
func encodePositions(ps []models.Position) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = strconv.Itoa(p.Row) + "," + strconv.Itoa(p.Col)
	}
	return out
}

func decodePositions(values []string) []models.Position {
	var out []models.Position
	for _, v := range values {
		row, col, ok := strings.Cut(v, ",")
		if !ok {
			continue
		}
		r, err1 := strconv.Atoi(row)
		c, err2 := strconv.Atoi(col)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, models.Pos(r, c))
	}
	return out
}
