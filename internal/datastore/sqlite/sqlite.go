//*****************************************************************************
// Copyright 2025 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//*****************************************************************************

package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rustlens/rustlens/internal/datastore"
	"github.com/rustlens/rustlens/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultListLimit = 50

// ComparisonRow is the persisted form of a types.ComparisonRecord.
type ComparisonRow struct {
	ID                   string    `gorm:"primaryKey;size:36"`
	CreatedAt            time.Time `gorm:"index"`
	ImageWidth           int       `gorm:"not null"`
	ImageHeight          int       `gorm:"not null"`
	ClassifierModel      string    `gorm:"size:128"`
	ClassifierLabel      string    `gorm:"size:64;index"`
	ClassifierConfidence float64
	ClassifierScores     datastore.ScoreMap `gorm:"type:text"`
	DetectorModel        string             `gorm:"size:128"`
	DetectorLabel        string             `gorm:"size:64;index"`
	DetectorConfidence   float64
	Detections           datastore.DetectionList `gorm:"type:text"`
	Agree                bool                    `gorm:"index"`
}

func (ComparisonRow) TableName() string {
	return "comparison_history"
}

func newRow(r *types.ComparisonRecord) *ComparisonRow {
	return &ComparisonRow{
		ID:                   r.ID,
		CreatedAt:            r.CreatedAt,
		ImageWidth:           r.ImageWidth,
		ImageHeight:          r.ImageHeight,
		ClassifierModel:      r.Classifier.Model,
		ClassifierLabel:      r.Classifier.Label,
		ClassifierConfidence: r.Classifier.Confidence,
		ClassifierScores:     datastore.ScoreMap(r.Classifier.Scores),
		DetectorModel:        r.Detector.Model,
		DetectorLabel:        r.Detector.Label,
		DetectorConfidence:   r.Detector.Confidence,
		Detections:           datastore.DetectionList(r.Detector.Detections),
		Agree:                r.Agree(),
	}
}

func (row *ComparisonRow) record() *types.ComparisonRecord {
	return &types.ComparisonRecord{
		ID:          row.ID,
		CreatedAt:   row.CreatedAt,
		ImageWidth:  row.ImageWidth,
		ImageHeight: row.ImageHeight,
		Classifier: types.Verdict{
			Model:      row.ClassifierModel,
			Kind:       types.ModelKindClassifier,
			Label:      row.ClassifierLabel,
			Confidence: row.ClassifierConfidence,
			Scores:     map[string]float64(row.ClassifierScores),
		},
		Detector: types.Verdict{
			Model:      row.DetectorModel,
			Kind:       types.ModelKindDetector,
			Label:      row.DetectorLabel,
			Confidence: row.DetectorConfidence,
			Detections: []types.Detection(row.Detections),
		},
	}
}

// SQLite is a gorm backed datastore.HistoryStore.
type SQLite struct {
	db *gorm.DB
}

// New opens (creating if needed) the sqlite database at dbPath and migrates the schema.
func New(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create datastore dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_journal_mode=WAL&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open datastore %s: %w", dbPath, err)
	}

	if err := db.AutoMigrate(&ComparisonRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate datastore: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (ds *SQLite) Put(ctx context.Context, record *types.ComparisonRecord) error {
	if record == nil || record.ID == "" {
		return datastore.ErrPrimaryEmpty
	}
	return ds.db.WithContext(ctx).Save(newRow(record)).Error
}

func (ds *SQLite) Get(ctx context.Context, id string) (*types.ComparisonRecord, error) {
	if id == "" {
		return nil, datastore.ErrPrimaryEmpty
	}
	var row ComparisonRow
	err := ds.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, datastore.ErrRecordNotExist
	}
	if err != nil {
		return nil, err
	}
	return row.record(), nil
}

func (ds *SQLite) List(ctx context.Context, opts datastore.ListOptions) ([]*types.ComparisonRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := ds.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if opts.OnlyDisagree {
		query = query.Where("agree = ?", false)
	}

	var rows []ComparisonRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]*types.ComparisonRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].record())
	}
	return records, nil
}

func (ds *SQLite) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
