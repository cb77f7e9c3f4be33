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

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rustlens/rustlens/internal/api/dto"
	"github.com/rustlens/rustlens/internal/constants"
	"github.com/rustlens/rustlens/internal/manager"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/utils/bcode"
)

const (
	imageFormField = "image"

	headerRecordID = "X-Rustlens-Record-Id"
	headerAgree    = "X-Rustlens-Agree"
)

// Client talks to a running rustlens server.
type Client struct {
	base *url.URL
	http *http.Client
}

// APIError is an error answered by the server. It matches the registered bcode with the
// same business code under errors.Is.
type APIError struct {
	StatusCode   int    `json:"-"`
	BusinessCode int32  `json:"business_code"`
	Message      string `json:"message"`
	Model        string `json:"model,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d", e.StatusCode)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return &bcode.Bcode{HTTPCode: int32(e.StatusCode), BusinessCode: e.BusinessCode, Message: e.Message}
}

func checkError(resp *http.Response, body []byte) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	apiError := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, apiError); err != nil {
		// Use the full body as the message if we fail to decode a response.
		apiError.Message = string(body)
	}
	return apiError
}

func NewClient(base *url.URL, http *http.Client) *Client {
	return &Client{
		base: base,
		http: http,
	}
}

// Do sends a JSON request and decodes a JSON answer into respData.
func (c *Client) Do(ctx context.Context, method, path string, reqData, respData any) error {
	var reqBody io.Reader
	switch reqData := reqData.(type) {
	case io.Reader:
		reqBody = reqData
	case nil:
	default:
		data, err := json.Marshal(reqData)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reqBody)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	_, respBody, err := c.send(request)
	if err != nil {
		return err
	}
	if len(respBody) > 0 && respData != nil {
		return json.Unmarshal(respBody, respData)
	}
	return nil
}

func (c *Client) send(request *http.Request) (http.Header, []byte, error) {
	respObj, err := c.http.Do(request)
	if err != nil {
		return nil, nil, err
	}
	defer respObj.Body.Close()

	respBody, err := io.ReadAll(respObj.Body)
	if err != nil {
		return nil, nil, err
	}
	if err := checkError(respObj, respBody); err != nil {
		return nil, nil, err
	}
	return respObj.Header, respBody, nil
}

// upload posts image as the "image" field of a multipart form.
func (c *Client) upload(ctx context.Context, path, filename string, image io.Reader) (http.Header, []byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(imageFormField, filename)
	if err != nil {
		return nil, nil, err
	}
	if _, err := io.Copy(fw, image); err != nil {
		return nil, nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.JoinPath(path).String(), &body)
	if err != nil {
		return nil, nil, err
	}
	request.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(request)
}

// Compare submits one image and returns the paired verdicts.
func (c *Client) Compare(ctx context.Context, filename string, image io.Reader) (*types.ComparisonRecord, error) {
	_, body, err := c.upload(ctx, constants.APIPrefix+"/compare", filename, image)
	if err != nil {
		return nil, err
	}
	var resp dto.CompareResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// AnnotatedResult is the answer of CompareAnnotated.
type AnnotatedResult struct {
	RecordID string
	Agree    bool
	JPEG     []byte
}

// CompareAnnotated submits one image and returns it as a JPEG with detector boxes drawn.
func (c *Client) CompareAnnotated(ctx context.Context, filename string, image io.Reader) (*AnnotatedResult, error) {
	header, body, err := c.upload(ctx, constants.APIPrefix+"/compare/annotated", filename, image)
	if err != nil {
		return nil, err
	}
	agree, _ := strconv.ParseBool(header.Get(headerAgree))
	return &AnnotatedResult{
		RecordID: header.Get(headerRecordID),
		Agree:    agree,
		JPEG:     body,
	}, nil
}

func (c *Client) GetModels(ctx context.Context) ([]manager.HandleState, error) {
	var resp dto.GetModelsResponse
	if err := c.Do(ctx, http.MethodGet, constants.APIPrefix+"/models", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) GetHistory(ctx context.Context, limit int, onlyDisagree bool) ([]*types.ComparisonRecord, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if onlyDisagree {
		q.Set("only_disagree", "true")
	}
	path := constants.APIPrefix + "/history"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+path, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")
	_, body, err := c.send(request)
	if err != nil {
		return nil, err
	}
	var resp dto.GetHistoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) GetHistoryRecord(ctx context.Context, id string) (*types.ComparisonRecord, error) {
	var resp dto.GetHistoryRecordResponse
	if err := c.Do(ctx, http.MethodGet, constants.APIPrefix+"/history/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) Health(ctx context.Context) (*dto.HealthData, error) {
	var resp dto.GetServerHealthResponse
	if err := c.Do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
