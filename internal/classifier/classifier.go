package classifier

import (
	"context"
	"errors"
	"fmt"
)

// ErrShapeMismatch means a caller handed the classifier a sequence that was
// not shaped to the model's input length.
var ErrShapeMismatch = errors.New("sequence length does not match classifier input")

// Distribution holds one probability per label, in label-set order.
type Distribution []float32

// Classifier turns a shaped token sequence into a probability distribution.
// Implementations never mutate model parameters and are safe for concurrent
// use.
type Classifier interface {
	Classify(ctx context.Context, shaped []int) (Distribution, error)
	InputLen() int
	Close() error
}

func checkShape(shaped []int, want int) error {
	if len(shaped) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrShapeMismatch, len(shaped), want)
	}
	return nil
}

// Func adapts a plain function to Classifier.
type Func struct {
	inputLen int
	fn       func(ctx context.Context, shaped []int) (Distribution, error)
}

func NewFunc(inputLen int, fn func(ctx context.Context, shaped []int) (Distribution, error)) *Func {
	return &Func{inputLen: inputLen, fn: fn}
}

func (f *Func) Classify(ctx context.Context, shaped []int) (Distribution, error) {
	if err := checkShape(shaped, f.inputLen); err != nil {
		return nil, err
	}
	return f.fn(ctx, shaped)
}

func (f *Func) InputLen() int { return f.inputLen }

func (f *Func) Close() error { return nil }
