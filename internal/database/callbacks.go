package database

import (
	"time"

	"gorm.io/gorm"
)

const startTimeKey = "metrics:start_time"

// QueryRecorder receives one observation per executed statement
type QueryRecorder interface {
	RecordDBQuery(operation, table string, duration time.Duration, err error)
}

// RegisterMetricsCallbacks times every create/query/update/delete/raw statement.
func RegisterMetricsCallbacks(db *gorm.DB, recorder QueryRecorder) error {
	before := func(db *gorm.DB) {
		db.InstanceSet(startTimeKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(db *gorm.DB) {
			v, ok := db.InstanceGet(startTimeKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := db.Statement.Table
			if table == "" {
				table = "unknown"
			}
			recorder.RecordDBQuery(operation, table, time.Since(start), db.Error)
		}
	}

	cb := db.Callback()
	steps := []struct {
		register func(name string, fn func(*gorm.DB)) error
		name     string
		fn       func(*gorm.DB)
	}{
		{cb.Create().Before("gorm:create").Register, "metrics:create_before", before},
		{cb.Create().After("gorm:create").Register, "metrics:create_after", after("insert")},
		{cb.Query().Before("gorm:query").Register, "metrics:query_before", before},
		{cb.Query().After("gorm:query").Register, "metrics:query_after", after("select")},
		{cb.Update().Before("gorm:update").Register, "metrics:update_before", before},
		{cb.Update().After("gorm:update").Register, "metrics:update_after", after("update")},
		{cb.Delete().Before("gorm:delete").Register, "metrics:delete_before", before},
		{cb.Delete().After("gorm:delete").Register, "metrics:delete_after", after("delete")},
		{cb.Raw().Before("gorm:raw").Register, "metrics:raw_before", before},
		{cb.Raw().After("gorm:raw").Register, "metrics:raw_after", after("raw")},
	}
	for _, s := range steps {
		if err := s.register(s.name, s.fn); err != nil {
			return err
		}
	}
	return nil
}
