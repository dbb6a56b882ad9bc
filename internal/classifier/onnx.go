package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Input element types accepted by ONNXConfig.InputType.
const (
	InputFloat32 = "float32"
	InputInt32   = "int32"
	InputInt64   = "int64"
)

type ONNXConfig struct {
	ModelPath string
	// SharedLibraryPath points at libonnxruntime. Empty keeps the runtime default.
	SharedLibraryPath string
	// InputName and OutputName default to the model's first input and output.
	InputName  string
	OutputName string
	InputType  string
	InputLen   int
	NumLabels  int
	// Sessions is the number of independent sessions. A session binds its
	// tensors and cannot run concurrently with itself.
	Sessions       int
	IntraOpThreads int
	// Logits applies softmax to the model output.
	Logits bool
}

// ONNX runs a pretrained sequence classifier through onnxruntime.
type ONNX struct {
	inputLen  int
	numLabels int
	logits    bool
	sessions  chan *onnxSession
	all       []*onnxSession
	closeOnce sync.Once
}

type onnxSession struct {
	session *ort.AdvancedSession
	input   ort.Value
	write   func(shaped []int)
	output  *ort.Tensor[float32]
}

var (
	envMu   sync.Mutex
	envRefs int
)

func acquireEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 && !ort.IsInitialized() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	envRefs++
	return nil
}

func releaseEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()

	envRefs--
	if envRefs > 0 {
		return nil
	}
	envRefs = 0
	return ort.DestroyEnvironment()
}

func NewONNX(cfg ONNXConfig) (*ONNX, error) {
	if cfg.InputLen <= 0 || cfg.NumLabels <= 0 {
		return nil, fmt.Errorf("onnx classifier needs positive input length and label count")
	}
	if cfg.Sessions <= 0 {
		cfg.Sessions = 1
	}
	if cfg.InputType == "" {
		cfg.InputType = InputFloat32
	}

	if err := acquireEnvironment(cfg.SharedLibraryPath); err != nil {
		return nil, err
	}

	if err := resolveIO(&cfg); err != nil {
		_ = releaseEnvironment()
		return nil, err
	}

	o := &ONNX{
		inputLen:  cfg.InputLen,
		numLabels: cfg.NumLabels,
		logits:    cfg.Logits,
		sessions:  make(chan *onnxSession, cfg.Sessions),
	}

	for i := 0; i < cfg.Sessions; i++ {
		s, err := newONNXSession(cfg)
		if err != nil {
			o.destroySessions()
			_ = releaseEnvironment()
			return nil, err
		}
		o.all = append(o.all, s)
		o.sessions <- s
	}

	slog.Info("[ONNXClassifier] Model loaded",
		slog.String("model", cfg.ModelPath),
		slog.String("input", cfg.InputName),
		slog.String("output", cfg.OutputName),
		slog.Int("labels", cfg.NumLabels),
		slog.Int("sessions", cfg.Sessions))

	return o, nil
}

// resolveIO fills in tensor names from the model and checks that its
// dimensions agree with the configured shape.
func resolveIO(cfg *ONNXConfig) error {
	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("inspect onnx model: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return fmt.Errorf("onnx model has no inputs or outputs")
	}

	if cfg.InputName == "" {
		cfg.InputName = inputs[0].Name
	}
	if cfg.OutputName == "" {
		cfg.OutputName = outputs[0].Name
	}

	for _, out := range outputs {
		if out.Name != cfg.OutputName {
			continue
		}
		dims := out.Dimensions
		if len(dims) > 0 && dims[len(dims)-1] > 0 && int(dims[len(dims)-1]) != cfg.NumLabels {
			return fmt.Errorf("model output %q has %d classes, label set has %d",
				out.Name, dims[len(dims)-1], cfg.NumLabels)
		}
	}
	for _, in := range inputs {
		if in.Name != cfg.InputName {
			continue
		}
		dims := in.Dimensions
		if len(dims) > 0 && dims[len(dims)-1] > 0 && int(dims[len(dims)-1]) != cfg.InputLen {
			return fmt.Errorf("model input %q expects length %d, configured %d",
				in.Name, dims[len(dims)-1], cfg.InputLen)
		}
	}
	return nil
}

func newONNXSession(cfg ONNXConfig) (*onnxSession, error) {
	input, write, err := newInputTensor(cfg.InputType, cfg.InputLen)
	if err != nil {
		return nil, err
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.NumLabels)))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	var opts *ort.SessionOptions
	if cfg.IntraOpThreads > 0 {
		opts, err = ort.NewSessionOptions()
		if err != nil {
			_ = input.Destroy()
			_ = output.Destroy()
			return nil, fmt.Errorf("create session options: %w", err)
		}
		defer opts.Destroy()
		if err := opts.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
			_ = input.Destroy()
			_ = output.Destroy()
			return nil, fmt.Errorf("set intra-op threads: %w", err)
		}
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.Value{input}, []ort.Value{output}, opts)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &onnxSession{session: session, input: input, write: write, output: output}, nil
}

func newInputTensor(kind string, n int) (ort.Value, func([]int), error) {
	shape := ort.NewShape(1, int64(n))
	switch kind {
	case InputFloat32:
		t, err := ort.NewEmptyTensor[float32](shape)
		if err != nil {
			return nil, nil, fmt.Errorf("allocate input tensor: %w", err)
		}
		return t, func(shaped []int) { fill(t.GetData(), shaped) }, nil
	case InputInt32:
		t, err := ort.NewEmptyTensor[int32](shape)
		if err != nil {
			return nil, nil, fmt.Errorf("allocate input tensor: %w", err)
		}
		return t, func(shaped []int) { fill(t.GetData(), shaped) }, nil
	case InputInt64:
		t, err := ort.NewEmptyTensor[int64](shape)
		if err != nil {
			return nil, nil, fmt.Errorf("allocate input tensor: %w", err)
		}
		return t, func(shaped []int) { fill(t.GetData(), shaped) }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported input type %q", kind)
	}
}

func fill[T float32 | int32 | int64](dst []T, src []int) {
	for i, v := range src {
		dst[i] = T(v)
	}
}

// Classify checks out a session for the duration of one run. Callers wait
// for a free session or until ctx is done.
func (o *ONNX) Classify(ctx context.Context, shaped []int) (Distribution, error) {
	if err := checkShape(shaped, o.inputLen); err != nil {
		return nil, err
	}

	var s *onnxSession
	select {
	case s = <-o.sessions:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { o.sessions <- s }()

	s.write(shaped)
	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("run onnx session: %w", err)
	}

	out := make(Distribution, o.numLabels)
	copy(out, s.output.GetData())
	if o.logits {
		return Softmax(out), nil
	}
	return out, nil
}

func (o *ONNX) InputLen() int {
	return o.inputLen
}

// Close waits for in-flight runs and releases every session.
func (o *ONNX) Close() error {
	var err error
	o.closeOnce.Do(func() {
		for range o.all {
			<-o.sessions
		}
		err = errors.Join(o.destroySessions(), releaseEnvironment())
	})
	return err
}

func (o *ONNX) destroySessions() error {
	var errs []error
	for _, s := range o.all {
		errs = append(errs, s.session.Destroy(), s.input.Destroy(), s.output.Destroy())
	}
	o.all = nil
	return errors.Join(errs...)
}
