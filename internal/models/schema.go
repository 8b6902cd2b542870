package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Device represents a row of the devices table. Its attributes are opaque to
// the API, which lists devices verbatim.
type Device struct {
	DeviceID int64  `gorm:"column:device_id;primaryKey"`
	Name     string `gorm:"column:name"`
	Location string `gorm:"column:location"`
}

func (Device) TableName() string { return "devices" }

// Sensor represents a row of the sensors table.
type Sensor struct {
	SensorID   int64   `gorm:"column:sensor_id;primaryKey" json:"sensor_id"`
	DeviceID   *int64  `gorm:"column:device_id;index" json:"device_id"`
	SensorType string  `gorm:"column:sensor_type" json:"sensor_type"`
	Metadata   RawJSON `gorm:"column:metadata" json:"metadata"`
}

func (Sensor) TableName() string { return "sensors" }

// Measurement is one append-only observation.
type Measurement struct {
	SensorID   int64     `gorm:"column:sensor_id;index:idx_measurements_sensor_metric_time,priority:1"`
	MetricType string    `gorm:"column:metric_type;index:idx_measurements_sensor_metric_time,priority:2"`
	Value      float64   `gorm:"column:value"`
	Time       time.Time `gorm:"column:time;index:idx_measurements_sensor_metric_time,priority:3"`
}

func (Measurement) TableName() string { return "measurements" }

// MetricThreshold holds the quality bands of a metric type. A nil SensorID
// marks the default row for the metric type; otherwise the row overrides the
// default for that sensor only.
type MetricThreshold struct {
	ID            uint     `gorm:"column:id;primaryKey;autoIncrement"`
	MetricType    string   `gorm:"column:metric_type;index"`
	SensorID      *int64   `gorm:"column:sensor_id;index"`
	GoodMin       *float64 `gorm:"column:good_min"`
	GoodMax       *float64 `gorm:"column:good_max"`
	AcceptableMin *float64 `gorm:"column:acceptable_min"`
	AcceptableMax *float64 `gorm:"column:acceptable_max"`
}

func (MetricThreshold) TableName() string { return "metric_thresholds" }

// RawJSON is a JSON document column that is passed through untouched.
type RawJSON json.RawMessage

// Scan implements sql.Scanner.
func (j *RawJSON) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = RawJSON(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
	return nil
}

// Value implements driver.Valuer.
func (j RawJSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j RawJSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *RawJSON) UnmarshalJSON(data []byte) error {
	*j = append((*j)[:0], data...)
	return nil
}

// GormDBDataType picks jsonb on PostgreSQL and json elsewhere, so drivers
// report the column as a JSON type.
func (RawJSON) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "json"
}
