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

package process

import (
	"context"
	"errors"
	"testing"

	"github.com/rustlens/rustlens/internal/types"
	"github.com/stretchr/testify/require"
)

type fakePreloader struct {
	err   error
	calls int
}

func (f *fakePreloader) Preload(_ context.Context, descs ...types.ModelDescriptor) error {
	f.calls++
	return f.err
}

var testModels = []types.ModelDescriptor{
	{ID: "cnn", Kind: types.ModelKindClassifier},
	{ID: "yolo", Kind: types.ModelKindDetector},
}

func TestStartServices(t *testing.T) {
	p := &fakePreloader{}
	m := NewServiceManager(p, testModels)

	require.NoError(t, m.StartServices(context.Background(), true))
	require.Equal(t, ServiceStatusRunning, m.GetStatus())
	require.False(t, m.StartTime().IsZero())

	// second start is a no-op
	require.NoError(t, m.StartServices(context.Background(), true))
	require.Equal(t, 1, p.calls)
}

func TestStartServices_Degraded(t *testing.T) {
	m := NewServiceManager(&fakePreloader{err: errors.New("artifact missing")}, testModels)

	require.NoError(t, m.StartServices(context.Background(), false))
	require.Equal(t, ServiceStatusRunning, m.GetStatus())
}

func TestStartServices_RequireModels(t *testing.T) {
	m := NewServiceManager(&fakePreloader{err: errors.New("artifact missing")}, testModels)

	err := m.StartServices(context.Background(), true)
	require.ErrorContains(t, err, "artifact missing")
	require.Equal(t, ServiceStatusError, m.GetStatus())
}

func TestStopServices(t *testing.T) {
	m := NewServiceManager(&fakePreloader{}, testModels)
	var order []string
	m.AddCloser("runtime", func() error { order = append(order, "runtime"); return nil })
	m.AddCloser("cache", func() error { order = append(order, "cache"); return nil })
	m.AddCloser("history", func() error { order = append(order, "history"); return errors.New("locked") })

	require.NoError(t, m.StartServices(context.Background(), false))

	err := m.StopServices()
	require.ErrorContains(t, err, "history: locked")
	require.Equal(t, []string{"history", "cache", "runtime"}, order)
	require.Equal(t, ServiceStatusStopped, m.GetStatus())

	select {
	case <-m.WaitForShutdown():
	default:
		t.Fatal("shutdown channel not closed")
	}

	require.NoError(t, m.StopServices())
	require.Len(t, order, 3)
}
