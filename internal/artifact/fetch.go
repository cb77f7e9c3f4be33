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
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// HTTPFetcher downloads artifacts over http(s), honoring the proxy environment.
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
		},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, source, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file: HTTP status %s", resp.Status)
	}

	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer file.Close()

	n, err := io.Copy(file, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	if resp.ContentLength >= 0 && n != resp.ContentLength {
		return fmt.Errorf("truncated download: got %d of %d bytes", n, resp.ContentLength)
	}
	if n == 0 {
		return errors.New("empty download")
	}
	return file.Sync()
}

// FileFetcher copies artifacts from file:// sources, typically a shared mount.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, source, dest string) error {
	u, err := url.Parse(source)
	if err != nil {
		return err
	}
	src := filepath.FromSlash(u.Path)
	if u.Host != "" && u.Host != "localhost" {
		return fmt.Errorf("remote file host %q not supported", u.Host)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, readerWithContext{ctx: ctx, r: in}); err != nil {
		return err
	}
	return out.Sync()
}

type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// SchemeRouter dispatches on the source URL scheme.
type SchemeRouter map[string]Fetcher

// DefaultFetcher handles http, https and file sources.
func DefaultFetcher() SchemeRouter {
	h := NewHTTPFetcher()
	return SchemeRouter{
		"http":  h,
		"https": h,
		"file":  FileFetcher{},
	}
}

func (r SchemeRouter) Fetch(ctx context.Context, source, dest string) error {
	u, err := url.Parse(source)
	if err != nil {
		return fmt.Errorf("invalid source %q: %w", source, err)
	}
	f, ok := r[strings.ToLower(u.Scheme)]
	if !ok {
		return fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
	return f.Fetch(ctx, source, dest)
}
