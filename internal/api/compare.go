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

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/utils/bcode"
)

const (
	imageFormField = "image"

	HeaderRecordID = "X-Rustlens-Record-Id"
	HeaderAgree    = "X-Rustlens-Agree"
)

func (t *RustlensCoreServer) Compare(c *gin.Context) {
	data, err := t.readImage(c)
	if err != nil {
		bcode.ReturnError(c, err)
		return
	}

	ctx := c.Request.Context()
	resp, err := t.Comparison.Compare(ctx, data)
	if err != nil {
		bcode.ReturnError(c, err)
		return
	}

	logger.ApiLogger.Debug("[API] Compare response", "id", resp.Data.ID)
	c.JSON(http.StatusOK, resp)
}

// CompareAnnotated answers with the JPEG of the submitted image with detector boxes drawn.
// The record id and agreement travel in response headers.
func (t *RustlensCoreServer) CompareAnnotated(c *gin.Context) {
	data, err := t.readImage(c)
	if err != nil {
		bcode.ReturnError(c, err)
		return
	}

	ctx := c.Request.Context()
	jpegData, record, err := t.Comparison.CompareAnnotated(ctx, data)
	if err != nil {
		bcode.ReturnError(c, err)
		return
	}

	c.Header(HeaderRecordID, record.ID)
	c.Header(HeaderAgree, strconv.FormatBool(record.Agree()))
	c.Data(http.StatusOK, "image/jpeg", jpegData)
}

// readImage accepts either a multipart form with an "image" file or a raw image body.
func (t *RustlensCoreServer) readImage(c *gin.Context) ([]byte, error) {
	if t.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, t.MaxUploadBytes)
	}

	var r io.Reader = c.Request.Body
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		fh, err := c.FormFile(imageFormField)
		if err != nil {
			return nil, uploadError(err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, bcode.ErrImageBadRequest.SetMessage(err.Error())
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, uploadError(err)
	}
	if len(data) == 0 {
		return nil, bcode.ErrImageBadRequest.SetMessage("image is empty")
	}
	return data, nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return bcode.ErrImageBadRequest.SetMessage(fmt.Sprintf("image exceeds %d bytes", tooLarge.Limit))
	}
	return bcode.ErrImageBadRequest.SetMessage(err.Error())
}
