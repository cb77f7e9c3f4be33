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
	"path/filepath"
	"testing"
	"time"

	"github.com/rustlens/rustlens/internal/datastore"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	ds, err := New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func sampleRecord(id string, at time.Time, detectorLabel string) *types.ComparisonRecord {
	return &types.ComparisonRecord{
		ID:          id,
		CreatedAt:   at,
		ImageWidth:  640,
		ImageHeight: 480,
		Classifier: types.Verdict{
			Model:      "cnn",
			Kind:       types.ModelKindClassifier,
			Label:      "diseased",
			Confidence: 0.8,
			Scores:     map[string]float64{"healthy": 0.2, "diseased": 0.8},
		},
		Detector: types.Verdict{
			Model:      "yolo",
			Kind:       types.ModelKindDetector,
			Label:      detectorLabel,
			Confidence: 0.91,
			Detections: []types.Detection{
				{Box: types.Box{X1: 10, Y1: 20, X2: 30, Y2: 40}, Confidence: 0.91},
			},
		},
	}
}

func TestSQLite_PutGet(t *testing.T) {
	ds := newTestStore(t)
	ctx := context.Background()
	rec := sampleRecord("a", time.Now().UTC().Truncate(time.Second), "diseased")

	require.NoError(t, ds.Put(ctx, rec))

	got, err := ds.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, rec.Classifier.Label, got.Classifier.Label)
	require.InDelta(t, 0.8, got.Classifier.Scores["diseased"], 1e-9)
	require.Len(t, got.Detector.Detections, 1)
	require.InDelta(t, 0.91, got.Detector.Detections[0].Confidence, 1e-9)
	require.Equal(t, 640, got.ImageWidth)
}

func TestSQLite_GetMissing(t *testing.T) {
	ds := newTestStore(t)

	_, err := ds.Get(context.Background(), "missing")
	require.ErrorIs(t, err, datastore.ErrRecordNotExist)
}

func TestSQLite_PutRequiresID(t *testing.T) {
	ds := newTestStore(t)

	err := ds.Put(context.Background(), &types.ComparisonRecord{})
	require.ErrorIs(t, err, datastore.ErrPrimaryEmpty)
}

func TestSQLite_ListNewestFirst(t *testing.T) {
	ds := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, ds.Put(ctx, sampleRecord("old", base.Add(-time.Hour), "diseased")))
	require.NoError(t, ds.Put(ctx, sampleRecord("new", base, "healthy")))

	all, err := ds.List(ctx, datastore.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "new", all[0].ID)

	disagree, err := ds.List(ctx, datastore.ListOptions{OnlyDisagree: true})
	require.NoError(t, err)
	require.Len(t, disagree, 1)
	require.Equal(t, "new", disagree[0].ID)

	limited, err := ds.List(ctx, datastore.ListOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}
