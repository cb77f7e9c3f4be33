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

// ServiceStatus represents the status of the in-process services
type ServiceStatus int

const (
	ServiceStatusStopped ServiceStatus = iota
	ServiceStatusStarting
	ServiceStatusRunning
	ServiceStatusStopping
	ServiceStatusError
)

func (s ServiceStatus) String() string {
	switch s {
	case ServiceStatusStopped:
		return "stopped"
	case ServiceStatusStarting:
		return "starting"
	case ServiceStatusRunning:
		return "running"
	case ServiceStatusStopping:
		return "stopping"
	case ServiceStatusError:
		return "error"
	default:
		return "unknown"
	}
}
