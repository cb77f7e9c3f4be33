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

package utils

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jaypipes/ghw"
	"github.com/rustlens/rustlens/internal/constants"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/mem"
)

const (
	GPUTypeNvidia   = "nvidia"
	GPUTypeAmd      = "amd"
	GPUTypeIntelArc = "intel"
	GPUTypeNone     = "none"
)

// DiskInfo reports sizes in GiB for the volume holding a path.
type DiskInfo struct {
	Path      string  `json:"path"`
	TotalSize float64 `json:"total_gb"`
	FreeSize  float64 `json:"free_gb"`
	UsedSize  float64 `json:"used_gb"`
}

// DetectGpuModel returns the vendor of the first discrete accelerator found, or "none".
func DetectGpuModel() string {
	gpu, err := ghw.GPU()
	if err != nil {
		return GPUTypeNone
	}

	hasNvidia := false
	hasAMD := false
	hasIntel := false

	for _, card := range gpu.GraphicsCards {
		if card.DeviceInfo == nil || card.DeviceInfo.Product == nil {
			continue
		}
		productName := strings.ToLower(card.DeviceInfo.Product.Name)
		if strings.Contains(productName, "nvidia") {
			hasNvidia = true
		} else if strings.Contains(productName, "amd") {
			hasAMD = true
		} else if strings.Contains(productName, "intel") && (strings.Contains(productName, "arc") || strings.Contains(productName, "core")) {
			hasIntel = true
		}
	}

	switch {
	case hasNvidia && hasAMD:
		return GPUTypeNvidia + "," + GPUTypeAmd
	case hasNvidia:
		return GPUTypeNvidia
	case hasAMD:
		return GPUTypeAmd
	case hasIntel:
		return GPUTypeIntelArc
	default:
		return GPUTypeNone
	}
}

// SystemDiskSize reports usage of the volume holding path. The path must exist.
func SystemDiskSize(path string) (*DiskInfo, error) {
	target := path
	if runtime.GOOS == "windows" {
		target = filepath.VolumeName(path)
	}
	usage, err := disk.Usage(target)
	if err != nil {
		return &DiskInfo{Path: path}, err
	}
	return &DiskInfo{
		Path:      path,
		TotalSize: float64(usage.Total) / constants.GibiByte,
		FreeSize:  float64(usage.Free) / constants.GibiByte,
		UsedSize:  float64(usage.Used) / constants.GibiByte,
	}, nil
}

// AvailableMemoryGB returns the memory available to new allocations in GiB, or 0 when unknown.
func AvailableMemoryGB() float64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return float64(vm.Available) / constants.GibiByte
}
