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

package version

const RustlensVersion = "v0.3.0"

const RustlensName = "rustlens"

const RustlensDescription = "rustlens checks soybean leaf images for rust by running a CNN classifier and a YOLOv8 detector side by side and reporting both verdicts."

// Commit is set at build time via -ldflags "-X github.com/rustlens/rustlens/version.Commit=..."
var Commit = "dev"
