package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/printforge/server/internal/domain"
)

type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type CreateGenerationRecordParams struct {
	UserID      string
	PromptText  string
	Style       string
	ColorScheme string
	GarmentType domain.GarmentType
	Position    domain.Position
	ImageURL    string
}

// CreateGenerationRecord appends one ledger row. The ledger is
// insert-only: rows are never updated or deleted here.
func (q *Queries) CreateGenerationRecord(ctx context.Context, arg CreateGenerationRecordParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, `
INSERT INTO generation_records (user_id, prompt_text, style, color_scheme, garment_type, position, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`, arg.UserID, arg.PromptText, arg.Style, arg.ColorScheme, string(arg.GarmentType), string(arg.Position), arg.ImageURL)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

// GetGenerationRecord fetches a single record scoped to its owner.
func (q *Queries) GetGenerationRecord(ctx context.Context, id uuid.UUID, userID string) (domain.GenerationRecord, error) {
	row := q.db.QueryRow(ctx, `
SELECT id, user_id, prompt_text, style, color_scheme, garment_type, position, image_url, created_at
FROM generation_records
WHERE id = $1 AND user_id = $2
`, id, userID)
	return scanGenerationRecord(row)
}

type ListGenerationRecordsParams struct {
	UserID string
	Limit  int32
	Offset int32
}

// ListGenerationRecords returns a user's generation history, newest first.
func (q *Queries) ListGenerationRecords(ctx context.Context, arg ListGenerationRecordsParams) ([]domain.GenerationRecord, error) {
	rows, err := q.db.Query(ctx, `
SELECT id, user_id, prompt_text, style, color_scheme, garment_type, position, image_url, created_at
FROM generation_records
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.GenerationRecord
	for rows.Next() {
		rec, err := scanGenerationRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func scanGenerationRecord(row pgx.Row) (domain.GenerationRecord, error) {
	var rec domain.GenerationRecord
	var garment, position string
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.PromptText,
		&rec.Style,
		&rec.ColorScheme,
		&garment,
		&position,
		&rec.ImageURL,
		&rec.CreatedAt,
	)
	if err != nil {
		return domain.GenerationRecord{}, err
	}
	rec.GarmentType = domain.GarmentType(garment)
	rec.Position = domain.Position(position)
	return rec, nil
}
