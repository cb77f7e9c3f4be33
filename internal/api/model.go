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
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rustlens/rustlens/internal/api/dto"
	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/utils/bcode"
)

func (t *RustlensCoreServer) GetModels(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := t.Model.GetModels(ctx)
	if err != nil {
		bcode.ReturnError(c, err)
		return
	}

	logger.ApiLogger.Debug("[API] GetModels response", "count", len(resp.Data))
	c.JSON(http.StatusOK, resp)
}

func (t *RustlensCoreServer) GetHistory(c *gin.Context) {
	request := new(dto.GetHistoryRequest)
	if err := c.ShouldBindQuery(request); err != nil {
		bcode.ReturnError(c, bcode.ErrHistoryBadRequest.SetMessage(err.Error()))
		return
	}

	if err := validate.Struct(request); err != nil {
		bcode.ReturnError(c, err)
		return
	}

	ctx := c.Request.Context()
	resp, err := t.History.GetHistory(ctx, request)
	if err != nil {
		bcode.ReturnError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (t *RustlensCoreServer) GetHistoryRecord(c *gin.Context) {
	request := &dto.GetHistoryRecordRequest{ID: c.Param("id")}
	if err := validate.Struct(request); err != nil {
		bcode.ReturnError(c, err)
		return
	}

	ctx := c.Request.Context()
	resp, err := t.History.GetHistoryRecord(ctx, request)
	if err != nil {
		bcode.ReturnError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (t *RustlensCoreServer) HealthHeader(c *gin.Context) {
	resp, err := t.Health.HealthHeader(c.Request.Context())
	if err != nil {
		bcode.ReturnError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (t *RustlensCoreServer) GetVersion(c *gin.Context) {
	resp, err := t.Version.GetVersion(c.Request.Context())
	if err != nil {
		bcode.ReturnError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
