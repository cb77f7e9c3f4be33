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

package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rustlens/rustlens/internal/logger"
	"github.com/rustlens/rustlens/internal/types"
	ort "github.com/yalue/onnxruntime_go"
)

var (
	runtimeOnce sync.Once
	runtimeErr  error
)

// InitRuntime loads the onnxruntime shared library and initializes its environment once per
// process. Later calls return the first result.
func InitRuntime(libraryPath string) error {
	runtimeOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			runtimeErr = fmt.Errorf("failed to initialize ONNX environment: %w", err)
			return
		}
		logger.EngineLogger.Info("[Engine] onnxruntime initialized", "library", libraryPath)
	})
	return runtimeErr
}

// ShutdownRuntime releases the onnxruntime environment. No session may be used afterwards.
func ShutdownRuntime() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// ONNXSession runs one model through an AdvancedSession with pre-allocated tensors.
type ONNXSession struct {
	desc types.ModelDescriptor

	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// NewONNXSession loads the model file at path. Input and output names default to the first
// input and output the model declares.
func NewONNXSession(desc types.ModelDescriptor, path string, opts Options) (*ONNXSession, error) {
	if err := InitRuntime(opts.LibraryPath); err != nil {
		return nil, err
	}
	if len(desc.InputShape) == 0 || len(desc.OutputShape) == 0 {
		return nil, fmt.Errorf("%s: input and output shapes are required", desc.ID)
	}

	inputName, outputName := desc.InputName, desc.OutputName
	if inputName == "" || outputName == "" {
		inputs, outputs, err := ort.GetInputOutputInfo(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read model io info: %w", err)
		}
		if len(inputs) == 0 || len(outputs) == 0 {
			return nil, errors.New("model declares no inputs or outputs")
		}
		if inputName == "" {
			inputName = inputs[0].Name
		}
		if outputName == "" {
			outputName = outputs[0].Name
		}
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(desc.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(desc.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	var sessionOpts *ort.SessionOptions
	if opts.IntraOpThreads > 0 {
		sessionOpts, err = ort.NewSessionOptions()
		if err != nil {
			inputTensor.Destroy()
			outputTensor.Destroy()
			return nil, fmt.Errorf("failed to create session options: %w", err)
		}
		defer sessionOpts.Destroy()
		if err := sessionOpts.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			inputTensor.Destroy()
			outputTensor.Destroy()
			return nil, fmt.Errorf("failed to set intra-op threads: %w", err)
		}
	}

	session, err := ort.NewAdvancedSession(path,
		[]string{inputName}, []string{outputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		sessionOpts)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	logger.EngineLogger.Info("[Engine] session created", "model", desc.ID, "path", path,
		"input", inputName, "output", outputName)

	return &ONNXSession{
		desc:         desc,
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

func (s *ONNXSession) Run(input *types.Tensor) (*types.Tensor, error) {
	if err := CheckInput(s.desc, input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, fmt.Errorf("%s: session closed", s.desc.ID)
	}

	copy(s.inputTensor.GetData(), input.Data)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := types.NewTensor(s.desc.OutputShape...)
	copy(out.Data, s.outputTensor.GetData())
	return out, nil
}

func (s *ONNXSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inputTensor != nil {
		s.inputTensor.Destroy()
		s.inputTensor = nil
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
		s.outputTensor = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	return nil
}
