package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

type TravelOptionRepository interface {
	List(ctx context.Context, filter domain.TravelOptionFilter) ([]domain.TravelOption, error)
	GetByID(ctx context.Context, id int64) (*domain.TravelOption, error)
	Create(ctx context.Context, option *domain.TravelOption) error
}

type PGTravelOptionRepository struct {
	db  *sql.DB
	loc *time.Location
}

// NewTravelOptionRepository evaluates date filters in loc (UTC when nil).
func NewTravelOptionRepository(db *sql.DB, loc *time.Location) TravelOptionRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &PGTravelOptionRepository{db: db, loc: loc}
}

const travelOptionColumns = `id, type, source, destination, date_time, price_cents, available_seats, created_at, updated_at`

func (r *PGTravelOptionRepository) List(ctx context.Context, filter domain.TravelOptionFilter) ([]domain.TravelOption, error) {
	query, args := buildListQuery(filter, r.loc)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list travel options: %w", err)
	}
	defer rows.Close()

	options := make([]domain.TravelOption, 0)
	for rows.Next() {
		o, err := scanTravelOption(rows)
		if err != nil {
			return nil, err
		}
		options = append(options, *o)
	}
	return options, rows.Err()
}

func buildListQuery(filter domain.TravelOptionFilter, loc *time.Location) (string, []any) {
	conds := []string{"available_seats > 0"}
	args := make([]any, 0, 5)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Type != "" {
		conds = append(conds, "type = "+arg(string(filter.Type)))
	}
	if s := strings.TrimSpace(filter.Source); s != "" {
		conds = append(conds, "source ILIKE "+arg(containsPattern(s)))
	}
	if d := strings.TrimSpace(filter.Destination); d != "" {
		conds = append(conds, "destination ILIKE "+arg(containsPattern(d)))
	}
	if filter.HasDate() {
		start, end := filter.DayRange(loc)
		conds = append(conds, "date_time >= "+arg(start), "date_time < "+arg(end))
	}

	query := "SELECT " + travelOptionColumns + " FROM travel_options WHERE " +
		strings.Join(conds, " AND ") + " ORDER BY date_time, id"
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (r *PGTravelOptionRepository) GetByID(ctx context.Context, id int64) (*domain.TravelOption, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+travelOptionColumns+` FROM travel_options WHERE id = $1`, id)
	o, err := scanTravelOption(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "travel option", Err: err}
		}
		return nil, err
	}
	return o, nil
}

func (r *PGTravelOptionRepository) Create(ctx context.Context, option *domain.TravelOption) error {
	row := r.db.QueryRowContext(ctx, `INSERT INTO travel_options (type, source, destination, date_time, price_cents, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		string(option.Type), option.Source, option.Destination, option.DateTime, option.PriceCents, option.AvailableSeats)
	if err := row.Scan(&option.ID, &option.CreatedAt, &option.UpdatedAt); err != nil {
		return fmt.Errorf("insert travel option: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTravelOption(s scanner) (*domain.TravelOption, error) {
	var o domain.TravelOption
	if err := s.Scan(&o.ID, &o.Type, &o.Source, &o.Destination, &o.DateTime, &o.PriceCents, &o.AvailableSeats, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

var _ TravelOptionRepository = (*PGTravelOptionRepository)(nil)
