package myr

import (
	"github.com/pkg/errors"

	"github.com/perlw/myrcube/logger"
)

// Stage is a teardown group. Stages are released in declaration order.
type Stage int

const (
	StageSync Stage = iota
	StageBuffers
	StageDepth
	StageCommandPool
	StagePipeline
	StageFramebuffers
	StageSwapchain
	StageDescriptors
	StageSurface
	StageDevice
	StageInstance
	stageCount
)

var stageNames = [stageCount]string{
	"sync", "buffers", "depth", "command pool", "pipeline", "framebuffers",
	"swapchain", "descriptors", "surface", "device", "instance",
}

func (s Stage) String() string {
	if s < 0 || s >= stageCount {
		return "unknown"
	}
	return stageNames[s]
}

type release struct {
	name string
	fn   func()
}

// Lifecycle sequences destruction. It does no reference counting: whoever
// creates a resource registers its release under the stage it belongs to.
type Lifecycle struct {
	log    logger.Logger
	stages [stageCount][]release
}

func NewLifecycle(log logger.Logger) *Lifecycle {
	return &Lifecycle{log: log}
}

// Own registers fn to run at teardown. Within a stage releases run in
// reverse registration order.
func (l *Lifecycle) Own(stage Stage, name string, fn func()) {
	l.stages[stage] = append(l.stages[stage], release{name: name, fn: fn})
}

func (l *Lifecycle) Pending() int {
	n := 0
	for _, rs := range l.stages {
		n += len(rs)
	}
	return n
}

// Teardown waits for idle, then runs every release. A failed idle wait is
// returned but does not stop the releases.
func (l *Lifecycle) Teardown(idle func() error) error {
	var idleErr error
	if idle != nil {
		if err := idle(); err != nil {
			idleErr = errors.Wrap(err, "wait idle before teardown")
			l.log.Err(err, "waiting idle before teardown")
		}
	}

	for stage := StageSync; stage < stageCount; stage++ {
		rs := l.stages[stage]
		for t := len(rs) - 1; t >= 0; t-- {
			l.log.Trace("release %s (%s)", rs[t].name, stage)
			rs[t].fn()
		}
		l.stages[stage] = nil
	}
	return idleErr
}
