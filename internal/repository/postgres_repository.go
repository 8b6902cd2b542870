package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"AmbientSensors.api/internal/models"
)

// latestReadingsQuery picks, per (sensor_id, metric_type), the newest
// measurement; equal timestamps are broken by the larger value. Threshold
// bounds fall back field by field from the sensor-specific row to the
// metric's default row (sensor_id IS NULL). The underscore of the _std
// suffix is escaped so it matches literally.
const latestReadingsQuery = `
SELECT
	s.sensor_id,
	s.sensor_type,
	l.metric_type,
	l.value,
	l.time,
	COALESCE(t_specific.good_min, t_default.good_min) AS good_min,
	COALESCE(t_specific.good_max, t_default.good_max) AS good_max,
	COALESCE(t_specific.acceptable_min, t_default.acceptable_min) AS acceptable_min,
	COALESCE(t_specific.acceptable_max, t_default.acceptable_max) AS acceptable_max
FROM (
	SELECT
		m.sensor_id,
		m.metric_type,
		m.value,
		m.time,
		ROW_NUMBER() OVER (
			PARTITION BY m.sensor_id, m.metric_type
			ORDER BY m.time DESC, m.value DESC
		) AS rn
	FROM measurements m
	WHERE m.metric_type NOT LIKE '%\_std' ESCAPE '\'
) l
JOIN sensors s ON s.sensor_id = l.sensor_id
LEFT JOIN metric_thresholds t_specific
	ON t_specific.metric_type = l.metric_type
	AND t_specific.sensor_id = l.sensor_id
LEFT JOIN metric_thresholds t_default
	ON t_default.metric_type = l.metric_type
	AND t_default.sensor_id IS NULL
WHERE l.rn = 1
ORDER BY l.sensor_id, l.metric_type`

// PostgresRepository reads the measurement store through gorm. The queries
// stay within SQL shared by PostgreSQL and SQLite.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// withConn runs fn on a connection dedicated to this call and returns it to
// the pool afterwards, whatever fn returns. Failing to obtain the connection
// is reported as ErrStoreUnavailable, anything fn fails with as ErrQuery.
func (r *PostgresRepository) withConn(ctx context.Context, fn func(tx *gorm.DB) error) error {
	acquired := false
	err := r.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		acquired = true
		return fn(tx)
	})
	switch {
	case err == nil:
		return nil
	case !acquired:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
}

// LatestReadings returns the latest reading per sensor and metric type with
// resolved thresholds.
func (r *PostgresRepository) LatestReadings(ctx context.Context) ([]models.ReadingWithThresholds, error) {
	var out []models.ReadingWithThresholds
	err := r.withConn(ctx, func(tx *gorm.DB) error {
		return tx.Raw(latestReadingsQuery).Scan(&out).Error
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.ReadingWithThresholds{}
	}
	return out, nil
}

// ListDevices returns every row of the devices table.
func (r *PostgresRepository) ListDevices(ctx context.Context) ([]models.Record, error) {
	return r.listTable(ctx, models.Device{}.TableName())
}

// ListSensors returns every row of the sensors table.
func (r *PostgresRepository) ListSensors(ctx context.Context) ([]models.Record, error) {
	return r.listTable(ctx, models.Sensor{}.TableName())
}

// listTable scans rows column by column so driver values are kept as they
// are, and embeds json/jsonb columns as JSON documents rather than strings.
func (r *PostgresRepository) listTable(ctx context.Context, table string) ([]models.Record, error) {
	out := []models.Record{}
	err := r.withConn(ctx, func(tx *gorm.DB) error {
		rows, err := tx.Table(table).Rows()
		if err != nil {
			return err
		}
		defer rows.Close()

		columns, err := rows.ColumnTypes()
		if err != nil {
			return err
		}
		names := make([]string, len(columns))
		jsonColumns := make(map[string]bool)
		for i, ct := range columns {
			names[i] = ct.Name()
			if isJSONType(ct.DatabaseTypeName()) {
				jsonColumns[ct.Name()] = true
			}
		}

		for rows.Next() {
			values := make([]any, len(names))
			ptrs := make([]any, len(names))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return err
			}
			row := make(map[string]any, len(names))
			for i, name := range names {
				row[name] = values[i]
			}
			out = append(out, normalizeRecord(row, jsonColumns))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isJSONType(name string) bool {
	return strings.EqualFold(name, "json") || strings.EqualFold(name, "jsonb")
}

// normalizeRecord makes a scanned row JSON friendly. Values of json columns
// are embedded as documents when valid; other byte values become strings.
func normalizeRecord(row map[string]any, jsonColumns map[string]bool) models.Record {
	rec := make(models.Record, len(row))
	for k, v := range row {
		var b []byte
		switch t := v.(type) {
		case []byte:
			b = t
		case string:
			if !jsonColumns[k] {
				rec[k] = t
				continue
			}
			b = []byte(t)
		default:
			rec[k] = v
			continue
		}
		if jsonColumns[k] && json.Valid(b) {
			rec[k] = models.RawJSON(append([]byte(nil), b...))
		} else {
			rec[k] = string(b)
		}
	}
	return rec
}
