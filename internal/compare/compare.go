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

package compare

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/rustlens/rustlens/internal/inference"
	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/manager"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/utils/bcode"
	"golang.org/x/sync/errgroup"
)

// HandleSource hands out model handles. *manager.Cache satisfies it.
type HandleSource interface {
	Get(ctx context.Context, desc types.ModelDescriptor) (*manager.Handle, error)
}

// Pathway binds one model descriptor to the adapter that runs it.
type Pathway struct {
	Descriptor types.ModelDescriptor
	Adapter    inference.Adapter
}

// Comparator runs the classifier and detector pathways against one image.
type Comparator struct {
	source     HandleSource
	classifier Pathway
	detector   Pathway
	now        func() time.Time
}

func NewComparator(source HandleSource, classifier, detector Pathway) (*Comparator, error) {
	if classifier.Adapter == nil || classifier.Adapter.Kind() != types.ModelKindClassifier {
		return nil, fmt.Errorf("classifier pathway needs a classifier adapter")
	}
	if detector.Adapter == nil || detector.Adapter.Kind() != types.ModelKindDetector {
		return nil, fmt.Errorf("detector pathway needs a detector adapter")
	}
	return &Comparator{
		source:     source,
		classifier: classifier,
		detector:   detector,
		now:        time.Now,
	}, nil
}

// Descriptors returns the classifier and detector descriptors in that order.
func (c *Comparator) Descriptors() []types.ModelDescriptor {
	return []types.ModelDescriptor{c.classifier.Descriptor, c.detector.Descriptor}
}

// Compare runs both pathways on img and pairs their verdicts. Both handles are acquired
// concurrently before any inference runs; if either is not ready the call fails with ModelUnavailable
// naming that pathway and no inference happens. img is shared read-only by both pathways.
func (c *Comparator) Compare(ctx context.Context, img image.Image) (*types.ComparisonRecord, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, bcode.ErrImageBadRequest
	}

	pathways := []Pathway{c.classifier, c.detector}
	handles := make([]*manager.Handle, len(pathways))
	acquire := new(errgroup.Group)
	for i, p := range pathways {
		acquire.Go(func() error {
			h, err := c.source.Get(ctx, p.Descriptor)
			handles[i] = h
			return err
		})
	}
	if err := acquire.Wait(); err != nil {
		return nil, err
	}
	for i, p := range pathways {
		h := handles[i]
		if h.Status() != manager.ModelStatusReady {
			kind := p.Adapter.Kind()
			logger.LogicLogger.Warn("[Compare] model unavailable", "model", p.Descriptor.ID,
				"kind", kind, "status", h.Status().String(), "error", h.Err())
			return nil, bcode.NewModelError(bcode.ErrModelUnavailable, string(kind), h.Err())
		}
	}

	verdicts := make([]types.Verdict, len(pathways))
	g := new(errgroup.Group)
	for i, p := range pathways {
		g.Go(func() error {
			v, err := p.Adapter.Run(handles[i], img)
			if err != nil {
				return err
			}
			verdicts[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.LogicLogger.Error("[Compare] inference failed", "model", bcode.ModelOf(err), "error", err)
		return nil, err
	}

	b := img.Bounds()
	record := &types.ComparisonRecord{
		ID:          uuid.NewString(),
		CreatedAt:   c.now().UTC(),
		ImageWidth:  b.Dx(),
		ImageHeight: b.Dy(),
		Classifier:  verdicts[0],
		Detector:    verdicts[1],
	}
	logger.LogicLogger.Info("[Compare] done", "id", record.ID,
		"classifier", record.Classifier.Label, "detector", record.Detector.Label, "agree", record.Agree())
	return record, nil
}
