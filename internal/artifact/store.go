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

package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/utils/bcode"
)

const partSuffix = ".part"

// Fetcher copies the artifact named by source to dest. Implementations may leave a partial
// file at dest on failure; the Store never places dest at the final artifact path.
type Fetcher interface {
	Fetch(ctx context.Context, source, dest string) error
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, source, dest string) error

func (f FetcherFunc) Fetch(ctx context.Context, source, dest string) error {
	return f(ctx, source, dest)
}

// Store resolves model descriptors to local artifact files, fetching them on first use.
type Store struct {
	fetcher Fetcher
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore returns a Store that downloads through fetcher. A positive timeout bounds each
// fetch; zero means no bound beyond the caller's context.
func NewStore(fetcher Fetcher, timeout time.Duration) *Store {
	return &Store{
		fetcher: fetcher,
		timeout: timeout,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *Store) pathLock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[path]
	if !ok {
		l = &sync.Mutex{}
		s.locks[path] = l
	}
	return l
}

// Resolve returns the local path of desc's artifact. An existing file is returned without
// any network access. A missing file is fetched from desc.Source into a temporary file next
// to the target and renamed into place only after it is complete and verified.
func (s *Store) Resolve(ctx context.Context, desc types.ModelDescriptor) (string, error) {
	if desc.Path == "" {
		return "", bcode.NewModelError(bcode.ErrArtifactMissing, desc.ID, errors.New("no artifact path configured"))
	}

	if present(desc.Path) {
		return desc.Path, nil
	}

	lock := s.pathLock(desc.Path)
	lock.Lock()
	defer lock.Unlock()

	// another caller may have finished the fetch while we waited
	if present(desc.Path) {
		return desc.Path, nil
	}

	if desc.Source == "" {
		return "", bcode.NewModelError(bcode.ErrArtifactMissing, desc.ID,
			fmt.Errorf("%s does not exist and no source is configured", desc.Path))
	}

	if err := s.fetch(ctx, desc); err != nil {
		logger.LogicLogger.Error("[Artifact] fetch failed", "model", desc.ID, "source", desc.Source, "error", err)
		return "", bcode.NewModelError(bcode.ErrArtifactFetchFailed, desc.ID, err)
	}

	logger.LogicLogger.Info("[Artifact] fetched", "model", desc.ID, "path", desc.Path)
	return desc.Path, nil
}

func (s *Store) fetch(ctx context.Context, desc types.ModelDescriptor) (err error) {
	if s.fetcher == nil {
		return errors.New("no fetch transport configured")
	}

	dir := filepath.Dir(desc.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(desc.Path)+".*"+partSuffix)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	logger.LogicLogger.Info("[Artifact] fetching", "model", desc.ID, "source", desc.Source)
	if err = s.fetcher.Fetch(ctx, desc.Source, tmpPath); err != nil {
		return err
	}

	if desc.SHA256 != "" {
		var sum string
		sum, err = fileSHA256(tmpPath)
		if err != nil {
			return err
		}
		if sum != desc.SHA256 {
			err = fmt.Errorf("sha256 mismatch: want %s, got %s", desc.SHA256, sum)
			return err
		}
	}

	if err = os.Rename(tmpPath, desc.Path); err != nil {
		return fmt.Errorf("place artifact: %w", err)
	}
	return nil
}

func present(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
