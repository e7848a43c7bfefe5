// Package fault defines the failure kinds reported by the digitizing pipeline.
package fault

import (
	"errors"
	"fmt"
)

// Failure kinds. Every pipeline error matches exactly one of these with errors.Is.
var (
	ErrInvalidImage     = errors.New("invalid image")
	ErrNoCurveFound     = errors.New("no curve found")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrIOFailure        = errors.New("io failure")
)

// Stage names used in error messages.
const (
	StageLoad      = "load"
	StageCrop      = "crop"
	StageNormalize = "normalize"
	StageExtract   = "extract"
	StageCalibrate = "calibrate"
	StagePeaks     = "peaks"
	StageCluster   = "cluster"
	StageExport    = "export"
	StageConfig    = "config"
	StagePlot      = "plot"
)

// Error is a pipeline failure tagged with the stage that produced it.
type Error struct {
	Stage string
	Kind  error
	Err   error // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New returns a stage failure whose detail is formatted from args.
func New(stage string, kind error, format string, args ...interface{}) error {
	return &Error{Stage: stage, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with a stage and kind. A nil err yields nil.
func Wrap(stage string, kind error, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: stage, Kind: kind, Err: err}
}

// KindOf reports which failure kind err carries, or nil if none.
func KindOf(err error) error {
	for _, k := range []error{ErrInvalidImage, ErrNoCurveFound, ErrInvalidParameter, ErrIOFailure} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
