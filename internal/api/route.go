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
	"github.com/rustlens/rustlens/internal/constants"
	"github.com/rustlens/rustlens/internal/utils/bcode"
)

func InjectRouter(e *RustlensCoreServer) {
	e.Router.Handle(http.MethodGet, "/", rootHandler)
	e.Router.Handle(http.MethodGet, "/health", e.HealthHeader)
	e.Router.Handle(http.MethodGet, "/version", e.GetVersion)

	r := e.Router.Group(constants.APIPrefix)

	r.Handle(http.MethodPost, "/compare", e.Compare)
	r.Handle(http.MethodPost, "/compare/annotated", e.CompareAnnotated)

	r.Handle(http.MethodGet, "/models", e.GetModels)

	r.Handle(http.MethodGet, "/history", e.GetHistory)
	r.Handle(http.MethodGet, "/history/:id", e.GetHistoryRecord)

	e.Router.NoRoute(func(c *gin.Context) {
		bcode.ReturnError(c, bcode.ErrNotFound)
	})
}

func rootHandler(c *gin.Context) {
	c.String(http.StatusOK, "rustlens soybean rust checker")
}
