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

package constants

// Application information
const (
	AppName     = "rustlens"
	APIPrefix   = "/" + AppName + "/v1"
	ConfigFile  = "config.yaml"
	HistoryFile = "history.db"
	ModelsDir   = "models"
	LogsDir     = "logs"
)

// Network related
const (
	DefaultHTTPPort = "16690"
	DefaultHost     = "127.0.0.1"
)

// Data format constants
const (
	// Data size units
	Byte = 1

	// Byte units (decimal)
	KiloByte = Byte * 1000
	MegaByte = KiloByte * 1000
	GigaByte = MegaByte * 1000
	TeraByte = GigaByte * 1000

	// Byte units (binary)
	KibiByte = Byte * 1024
	MebiByte = KibiByte * 1024
	GibiByte = MebiByte * 1024
)
