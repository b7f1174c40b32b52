package myr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind groups error codes by when they can happen.
type Kind int

const (
	CreationFailure Kind = iota
	RuntimeFailure
	ResourceExhaustion
)

func (k Kind) String() string {
	switch k {
	case CreationFailure:
		return "creation failure"
	case RuntimeFailure:
		return "runtime failure"
	case ResourceExhaustion:
		return "resource exhaustion"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Code identifies a failure. Codes are errors themselves so they can be
// matched with errors.Is.
type Code int

const (
	SurfaceIncompatible Code = iota + 1
	SwapchainOutOfDate
	AcquireFailed
	SubmitFailed
	PresentFailed
	WaitFailed
	MapFailed
	NoSuitableMemoryType
	AllocationFailed
	CreationFailed
	NoDiscreteGPU
	NoDepthFormat
	FileNotFound
	ReadError
)

var codeNames = map[Code]string{
	SurfaceIncompatible:  "surface incompatible",
	SwapchainOutOfDate:   "swapchain out of date",
	AcquireFailed:        "acquire failed",
	SubmitFailed:         "submit failed",
	PresentFailed:        "present failed",
	WaitFailed:           "wait failed",
	MapFailed:            "map failed",
	NoSuitableMemoryType: "no suitable memory type",
	AllocationFailed:     "allocation failed",
	CreationFailed:       "creation failed",
	NoDiscreteGPU:        "no discrete gpu",
	NoDepthFormat:        "no depth format",
	FileNotFound:         "file not found",
	ReadError:            "read error",
}

func (c Code) Error() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

func (c Code) Kind() Kind {
	switch c {
	case SwapchainOutOfDate, AcquireFailed, SubmitFailed, PresentFailed, WaitFailed, MapFailed:
		return RuntimeFailure
	case SurfaceIncompatible, NoSuitableMemoryType, NoDiscreteGPU, NoDepthFormat:
		return ResourceExhaustion
	default:
		return CreationFailure
	}
}

// Error is returned by every engine operation. Err is the backend cause, if
// any.
type Error struct {
	Op   string
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Code.Error()
	}
	return e.Op + ": " + e.Code.Error() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.Code
}

func fail(op string, code Code, err error) error {
	return &Error{Op: op, Code: code, Err: err}
}

func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
