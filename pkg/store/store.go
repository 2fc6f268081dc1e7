// Package store persists accelerometer samples in an embedded sqlite database.
package store

import (
	"context"

	"github.com/ericogr/accel-logger/pkg/sensor"
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type AccelerometerData struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Z         float32 `json:"z"`
	Timestamp int64   `gorm:"index;not null" json:"timestamp"`
}

func (AccelerometerData) TableName() string {
	return "accelerometer_data"
}

// FromSample builds a row from a sample; the timestamp is stored in milliseconds.
func FromSample(s sensor.Sample) *AccelerometerData {
	return &AccelerometerData{
		X:         float32(s.X),
		Y:         float32(s.Y),
		Z:         float32(s.Z),
		Timestamp: s.Timestamp.UnixMilli(),
	}
}

type Store struct {
	db *gorm.DB
}

func Open(filename string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(filename), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}

	if err := db.AutoMigrate(&AccelerometerData{}); err != nil {
		return nil, errors.Wrap(err, "migrate accelerometer_data")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql db")
	}
	return sqlDB.Close()
}

func (s *Store) Insert(ctx context.Context, row *AccelerometerData) error {
	if tx := s.db.WithContext(ctx).Create(row); tx.Error != nil {
		return errors.Wrap(tx.Error, "insert")
	}
	return nil
}

// InsertBatch inserts all rows in one transaction.
func (s *Store) InsertBatch(ctx context.Context, rows []*AccelerometerData) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if res := tx.Create(row); res.Error != nil {
				return errors.Wrap(res.Error, "create")
			}
		}
		return nil
	})
}

// AllData returns every row, newest first.
func (s *Store) AllData(ctx context.Context) ([]AccelerometerData, error) {
	var rows []AccelerometerData
	tx := s.db.WithContext(ctx).Order("timestamp desc").Order("id desc").Find(&rows)
	if tx.Error != nil {
		return nil, errors.Wrap(tx.Error, "find")
	}
	return rows, nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	if tx := s.db.WithContext(ctx).Exec("DELETE FROM accelerometer_data"); tx.Error != nil {
		return errors.Wrap(tx.Error, "delete all")
	}
	return nil
}

// ClearAllData is the database-level clear-all run at startup.
func (s *Store) ClearAllData(ctx context.Context) error {
	return s.DeleteAll(ctx)
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if tx := s.db.WithContext(ctx).Model(&AccelerometerData{}).Count(&n); tx.Error != nil {
		return 0, errors.Wrap(tx.Error, "count")
	}
	return n, nil
}

// Latest returns the most recent row, or false when the table is empty.
func (s *Store) Latest(ctx context.Context) (AccelerometerData, bool, error) {
	var rows []AccelerometerData
	tx := s.db.WithContext(ctx).Order("timestamp desc").Order("id desc").Limit(1).Find(&rows)
	if tx.Error != nil {
		return AccelerometerData{}, false, errors.Wrap(tx.Error, "latest")
	}
	if len(rows) == 0 {
		return AccelerometerData{}, false, nil
	}
	return rows[0], true, nil
}

type Logger interface {
	Printf(format string, v ...any)
}

// LogAll writes every stored entry to the logger.
func LogAll(ctx context.Context, s *Store, l Logger) error {
	rows, err := s.AllData(ctx)
	if err != nil {
		return err
	}
	for _, r := range rows {
		l.Printf("ID: %d, X: %v, Y: %v, Z: %v, Timestamp: %d", r.ID, r.X, r.Y, r.Z, r.Timestamp)
	}
	return nil
}
