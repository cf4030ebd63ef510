package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	alerts "github.com/Ppatel122/AirQualityDashboard/internal/alerts/domain"
	sensors "github.com/Ppatel122/AirQualityDashboard/internal/sensors/domain"
)

const defaultAlertTable = "alerts"

// AlertRepository reads registered alerts and persists threshold flips.
type AlertRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*AlertRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(repo *AlertRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewAlertRepository constructs a repository with the default table name.
func NewAlertRepository(db *sql.DB, opts ...RepositoryOption) *AlertRepository {
	repo := &AlertRepository{db: db, table: defaultAlertTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ListAll returns every registered alert. No pagination at current scale.
func (r *AlertRepository) ListAll(ctx context.Context) ([]alerts.Alert, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alert repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, owner_email, name, latitude, longitude, threshold, is_above
FROM %s`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list alerts: %v", sensors.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var result []alerts.Alert
	for rows.Next() {
		var alert alerts.Alert
		if err := rows.Scan(
			&alert.ID,
			&alert.OwnerEmail,
			&alert.Name,
			&alert.Latitude,
			&alert.Longitude,
			&alert.Threshold,
			&alert.IsAboveThreshold,
		); err != nil {
			return nil, fmt.Errorf("%w: scan alert: %v", sensors.ErrStoreUnavailable, err)
		}
		result = append(result, alert)
	}
	return result, rows.Err()
}

// SetAboveThreshold persists a hysteresis flip. Returns alerts.ErrNotFound
// when the record vanished, e.g. the owner unsubscribed mid-batch.
func (r *AlertRepository) SetAboveThreshold(ctx context.Context, id string, above bool, at time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("alert repo: nil db")
	}
	if id == "" {
		return errors.New("alert repo: empty id")
	}
	query := fmt.Sprintf(`
UPDATE %s
SET is_above = $2, updated_at = $3
WHERE id = $1`, r.table)

	res, err := r.db.ExecContext(ctx, query, id, above, at.UTC())
	if err != nil {
		return fmt.Errorf("%w: set above threshold: %v", sensors.ErrStoreUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", sensors.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return alerts.ErrNotFound
	}
	return nil
}
