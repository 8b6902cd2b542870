package models

import "time"

// ReadingWithThresholds is the latest observation of one metric on one sensor,
// annotated with the quality bands that apply to it. A nil bound means neither
// the sensor-specific nor the default threshold row sets that field.
type ReadingWithThresholds struct {
	SensorID      int64     `json:"sensor_id" gorm:"column:sensor_id"`
	SensorType    string    `json:"sensor_type" gorm:"column:sensor_type"`
	MetricType    string    `json:"metric_type" gorm:"column:metric_type"`
	Value         float64   `json:"value" gorm:"column:value"`
	Time          time.Time `json:"time" gorm:"column:time"`
	GoodMin       *float64  `json:"good_min" gorm:"column:good_min"`
	GoodMax       *float64  `json:"good_max" gorm:"column:good_max"`
	AcceptableMin *float64  `json:"acceptable_min" gorm:"column:acceptable_min"`
	AcceptableMax *float64  `json:"acceptable_max" gorm:"column:acceptable_max"`
}

// DataResponse is the envelope every list endpoint answers with.
type DataResponse[T any] struct {
	Data []T `json:"data"`
}

// Record is a table row returned verbatim, keyed by column name.
type Record map[string]any
