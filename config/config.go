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

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MatusOllah/slogcolor"
	"github.com/fatih/color"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rustlens/rustlens/internal/constants"
	"github.com/rustlens/rustlens/internal/types"
	"github.com/rustlens/rustlens/internal/utils"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	// Log levels
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	DefaultLogLevel = LogLevelInfo

	// Time formats
	DefaultTimeFormat = "2006-01-02 15:04:05"

	DefaultFetchTimeout   = 10 * time.Minute
	DefaultUploadMaxBytes = 20 * constants.MebiByte

	DefaultClassifierID   = "cnn_soybean_rust"
	DefaultClassifierFile = "cnn_soybean_rust.onnx"
	DefaultDetectorID     = "yolov8_soybean_rust"
	DefaultDetectorFile   = "yolov8_soybean_rust.onnx"

	LabelHealthy  = "healthy"
	LabelDiseased = "diseased"

	// Resampling filters accepted by classifier.resample
	ResampleNearest    = "nearest"
	ResampleLinear     = "linear"
	ResampleCatmullRom = "catmullrom"
	ResampleLanczos    = "lanczos"

	// Environment variable keys
	EnvHost              = "RUSTLENS_HOST"
	EnvLogLevel          = "RUSTLENS_LOG_LEVEL"
	EnvLogDir            = "RUSTLENS_LOG_DIR"
	EnvModelsDir         = "RUSTLENS_MODELS_DIR"
	EnvORTLibrary        = "RUSTLENS_ORT_LIBRARY"
	EnvFetchTimeout      = "RUSTLENS_FETCH_TIMEOUT"
	EnvClassifierSource  = "RUSTLENS_CLASSIFIER_SOURCE"
	EnvDetectorSource    = "RUSTLENS_DETECTOR_SOURCE"
	EnvHealthyConfidence = "RUSTLENS_HEALTHY_CONFIDENCE"
	EnvHistoryPath       = "RUSTLENS_HISTORY_PATH"
)

// GlobalEnvironment is set by the CLI root command. Library packages take their
// configuration as arguments and never read it.
var GlobalEnvironment *Environment

type RuntimeConfig struct {
	LibraryPath    string `yaml:"library_path"`
	IntraOpThreads int    `yaml:"intra_op_threads" validate:"gte=0"`
}

type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

type ClassifierConfig struct {
	ID          string   `yaml:"id" validate:"required"`
	Path        string   `yaml:"path" validate:"required"`
	Source      string   `yaml:"source"`
	SHA256      string   `yaml:"sha256" validate:"omitempty,len=64,hexadecimal"`
	InputName   string   `yaml:"input_name"`
	OutputName  string   `yaml:"output_name"`
	InputWidth  int      `yaml:"input_width" validate:"gt=0"`
	InputHeight int      `yaml:"input_height" validate:"gt=0"`
	Resample    string   `yaml:"resample" validate:"oneof=nearest linear catmullrom lanczos"`
	Softmax     bool     `yaml:"softmax"`
	Labels      []string `yaml:"labels" validate:"len=2,unique,dive,required"`
}

type DetectorConfig struct {
	ID                  string  `yaml:"id" validate:"required"`
	Path                string  `yaml:"path" validate:"required"`
	Source              string  `yaml:"source"`
	SHA256              string  `yaml:"sha256" validate:"omitempty,len=64,hexadecimal"`
	InputName           string  `yaml:"input_name"`
	OutputName          string  `yaml:"output_name"`
	InputSize           int     `yaml:"input_size" validate:"gt=0"`
	NumAnchors          int     `yaml:"num_anchors" validate:"gt=0"`
	NumClasses          int     `yaml:"num_classes" validate:"gt=0"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" validate:"gte=0,lte=1"`
	IoUThreshold        float64 `yaml:"iou_threshold" validate:"gte=0,lte=1"`
	MaxDetections       int     `yaml:"max_detections" validate:"gt=0"`
	PositiveLabel       string  `yaml:"positive_label" validate:"required"`
	NegativeLabel       string  `yaml:"negative_label" validate:"required,nefield=PositiveLabel"`
	HealthyConfidence   float64 `yaml:"healthy_confidence" validate:"gte=0,lte=1"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes" validate:"gt=0"`
}

// Environment is the fully resolved process configuration.
type Environment struct {
	Host       string           `yaml:"host" validate:"required,hostname_port"`
	LogLevel   string           `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogDir     string           `yaml:"log_dir"`
	ModelsDir  string           `yaml:"models_dir"`
	Runtime    RuntimeConfig    `yaml:"runtime"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Detector   DetectorConfig   `yaml:"detector"`
	History    HistoryConfig    `yaml:"history"`
	Upload     UploadConfig     `yaml:"upload"`

	// ConfigFile is the YAML file the environment was read from, empty when none was used.
	ConfigFile string `yaml:"-"`
}

// Default returns an Environment holding the built-in defaults. Directories are left empty
// and filled in by Load.
func Default() *Environment {
	return &Environment{
		Host:     net.JoinHostPort(constants.DefaultHost, constants.DefaultHTTPPort),
		LogLevel: DefaultLogLevel,
		Fetch:    FetchConfig{Timeout: DefaultFetchTimeout},
		Classifier: ClassifierConfig{
			ID:          DefaultClassifierID,
			Path:        DefaultClassifierFile,
			InputWidth:  224,
			InputHeight: 224,
			Resample:    ResampleCatmullRom,
			Labels:      []string{LabelHealthy, LabelDiseased},
		},
		Detector: DetectorConfig{
			ID:                  DefaultDetectorID,
			Path:                DefaultDetectorFile,
			InputSize:           640,
			NumAnchors:          8400,
			NumClasses:          1,
			ConfidenceThreshold: 0.25,
			IoUThreshold:        0.7,
			MaxDetections:       300,
			PositiveLabel:       LabelDiseased,
			NegativeLabel:       LabelHealthy,
			HealthyConfidence:   0,
		},
		History: HistoryConfig{Enabled: true},
		Upload:  UploadConfig{MaxBytes: DefaultUploadMaxBytes},
	}
}

// Load builds the Environment: defaults, then .env, then the YAML file at path (or the
// default config file when path is empty and that file exists), then RUSTLENS_* variables,
// then any flags set on fs. The result is validated before it is returned.
func Load(path string, fs *pflag.FlagSet) (*Environment, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := Default()

	if path == "" {
		if def := utils.ConfigFile(); utils.FileExists(def) {
			path = def
		}
	}
	if path != "" {
		if err := env.readFile(path); err != nil {
			return nil, err
		}
	}

	for _, o := range overrides {
		if v := Var(o.env); v != "" {
			if err := o.set(env, v); err != nil {
				return nil, fmt.Errorf("%s: %w", o.env, err)
			}
		}
	}

	if fs != nil {
		var flagErr error
		fs.Visit(func(f *pflag.Flag) {
			for _, o := range overrides {
				if o.flag == f.Name && flagErr == nil {
					if err := o.set(env, f.Value.String()); err != nil {
						flagErr = fmt.Errorf("--%s: %w", o.flag, err)
					}
				}
			}
		})
		if flagErr != nil {
			return nil, flagErr
		}
	}

	if err := env.resolveDirs(); err != nil {
		return nil, err
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

func (e *Environment) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(e); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	e.ConfigFile = path
	return nil
}

func (e *Environment) resolveDirs() error {
	if e.ModelsDir == "" || e.LogDir == "" || (e.History.Enabled && e.History.Path == "") {
		dataDir, err := utils.DataDir()
		if err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}
		if e.ModelsDir == "" {
			e.ModelsDir = filepath.Join(dataDir, constants.ModelsDir)
		}
		if e.History.Path == "" {
			e.History.Path = filepath.Join(dataDir, constants.HistoryFile)
		}
	}
	if e.LogDir == "" {
		stateDir, err := utils.StateDir()
		if err != nil {
			return fmt.Errorf("resolve state dir: %w", err)
		}
		e.LogDir = filepath.Join(stateDir, constants.LogsDir)
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	e.ModelsDir = utils.GetAbsolutePath(e.ModelsDir, wd)
	e.LogDir = utils.GetAbsolutePath(e.LogDir, wd)
	e.History.Path = utils.GetAbsolutePath(e.History.Path, wd)
	e.Classifier.Path = utils.GetAbsolutePath(e.Classifier.Path, e.ModelsDir)
	e.Detector.Path = utils.GetAbsolutePath(e.Detector.Path, e.ModelsDir)
	return nil
}

var validate = validator.New()

// Validate reports the first configuration problem found.
func (e *Environment) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if e.Classifier.ID == e.Detector.ID {
		return fmt.Errorf("invalid configuration: classifier and detector share id %q", e.Classifier.ID)
	}
	if e.Classifier.Path == e.Detector.Path {
		return fmt.Errorf("invalid configuration: classifier and detector share artifact path %s", e.Classifier.Path)
	}
	for _, src := range []string{e.Classifier.Source, e.Detector.Source} {
		if src == "" {
			continue
		}
		if u, err := url.Parse(src); err != nil || u.Scheme == "" {
			return fmt.Errorf("invalid configuration: source %q is not a URL", src)
		}
	}
	return nil
}

// ClassifierDescriptor returns the descriptor of the classifier artifact.
func (e *Environment) ClassifierDescriptor() types.ModelDescriptor {
	c := e.Classifier
	return types.ModelDescriptor{
		ID:          c.ID,
		Kind:        types.ModelKindClassifier,
		Path:        c.Path,
		Source:      c.Source,
		SHA256:      strings.ToLower(c.SHA256),
		InputName:   c.InputName,
		OutputName:  c.OutputName,
		InputShape:  []int64{1, int64(c.InputHeight), int64(c.InputWidth), 3},
		OutputShape: []int64{1, int64(len(c.Labels))},
	}
}

// DetectorDescriptor returns the descriptor of the detector artifact.
func (e *Environment) DetectorDescriptor() types.ModelDescriptor {
	d := e.Detector
	return types.ModelDescriptor{
		ID:          d.ID,
		Kind:        types.ModelKindDetector,
		Path:        d.Path,
		Source:      d.Source,
		SHA256:      strings.ToLower(d.SHA256),
		InputName:   d.InputName,
		OutputName:  d.OutputName,
		InputShape:  []int64{1, 3, int64(d.InputSize), int64(d.InputSize)},
		OutputShape: []int64{1, int64(4 + d.NumClasses), int64(d.NumAnchors)},
	}
}

// Descriptors returns both descriptors, classifier first.
func (e *Environment) Descriptors() []types.ModelDescriptor {
	return []types.ModelDescriptor{e.ClassifierDescriptor(), e.DetectorDescriptor()}
}

// BaseURL returns the http URL clients use to reach the API server. A wildcard listen
// address maps to loopback.
func (e *Environment) BaseURL() *url.URL {
	host, port, err := net.SplitHostPort(e.Host)
	if err != nil {
		host, port = constants.DefaultHost, constants.DefaultHTTPPort
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = constants.DefaultHost
	}
	return &url.URL{Scheme: "http", Host: net.JoinHostPort(host, port)}
}

// Var returns an environment variable stripped of leading and trailing quotes or spaces
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

type override struct {
	env   string
	flag  string
	usage string
	set   func(e *Environment, v string) error
}

var overrides = []override{
	{EnvHost, "host", "API listen address (host:port)", func(e *Environment, v string) error {
		e.Host = v
		return nil
	}},
	{EnvLogLevel, "log-level", "Log level: debug, info, warn or error", func(e *Environment, v string) error {
		e.LogLevel = strings.ToLower(v)
		return nil
	}},
	{EnvLogDir, "log-dir", "Directory for rotated log files", func(e *Environment, v string) error {
		e.LogDir = v
		return nil
	}},
	{EnvModelsDir, "models-dir", "Directory holding model artifacts", func(e *Environment, v string) error {
		e.ModelsDir = v
		return nil
	}},
	{EnvORTLibrary, "ort-library", "Path to the onnxruntime shared library", func(e *Environment, v string) error {
		e.Runtime.LibraryPath = v
		return nil
	}},
	{EnvFetchTimeout, "fetch-timeout", "Upper bound for one artifact download", func(e *Environment, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		e.Fetch.Timeout = d
		return nil
	}},
	{EnvClassifierSource, "classifier-source", "Remote source of the classifier artifact", func(e *Environment, v string) error {
		e.Classifier.Source = v
		return nil
	}},
	{EnvDetectorSource, "detector-source", "Remote source of the detector artifact", func(e *Environment, v string) error {
		e.Detector.Source = v
		return nil
	}},
	{EnvHealthyConfidence, "healthy-confidence", "Detector confidence reported when nothing is detected", func(e *Environment, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		e.Detector.HealthyConfidence = f
		return nil
	}},
	{EnvHistoryPath, "history-path", "Path of the comparison history database", func(e *Environment, v string) error {
		e.History.Path = v
		return nil
	}},
}

// FlagSets Define a struct to hold the flag sets and their order
type FlagSets struct {
	Order    []string
	FlagSets map[string]*pflag.FlagSet
}

// NewFlagSets Initialize the FlagSets struct
func NewFlagSets() *FlagSets {
	return &FlagSets{
		Order:    []string{},
		FlagSets: make(map[string]*pflag.FlagSet),
	}
}

// AddFlagSet Add a flag set to the struct and maintain the order
func (fs *FlagSets) AddFlagSet(name string, flagSet *pflag.FlagSet) {
	if _, exists := fs.FlagSets[name]; !exists {
		fs.Order = append(fs.Order, name)
	}
	fs.FlagSets[name] = flagSet
}

// GetFlagSet Get the flag set by name, creating it if it doesn't exist
func (fs *FlagSets) GetFlagSet(name string) *pflag.FlagSet {
	if _, exists := fs.FlagSets[name]; !exists {
		fs.FlagSets[name] = pflag.NewFlagSet(name, pflag.ContinueOnError)
		fs.Order = append(fs.Order, name)
	}
	return fs.FlagSets[name]
}

// Flags returns the override flags grouped for help output. Flag values are strings and
// are applied by Load only when set, so an unset flag never hides a YAML or env value.
func Flags() *FlagSets {
	fss := NewFlagSets()
	fs := fss.GetFlagSet("generic")
	for _, o := range overrides {
		fs.String(o.flag, "", o.usage+" (env "+o.env+")")
	}
	return fss
}

func (e *Environment) SlogLevel() slog.Level {
	switch e.LogLevel {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetSlogColor installs the colored console handler as the default slog logger.
func (e *Environment) SetSlogColor() {
	opts := slogcolor.DefaultOptions
	opts.Level = e.SlogLevel()
	opts.SrcFileMode = slogcolor.Nop
	opts.MsgColor = color.New(color.FgHiYellow)

	slog.SetDefault(slog.New(slogcolor.NewHandler(os.Stderr, opts)))
}

// Banner prints the start banner and returns a func printing the stop banner.
func Banner() func() {
	_, _ = color.New(color.FgHiCyan).Println(">>>>>> rustlens Starting : " + time.Now().Format(DefaultTimeFormat) + "\n")
	return func() {
		_, _ = color.New(color.FgHiGreen).Println("\n<<<<<< rustlens Stopped : " + time.Now().Format(DefaultTimeFormat))
	}
}
