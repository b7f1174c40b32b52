// Package drivertest is an in-memory implementation of the driver
// interfaces. Submitted work stays pending until something waits for it,
// so ordering mistakes that a real GPU would only show as corruption are
// recorded as violations instead.
//
// Not safe for concurrent use.
package drivertest

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Event is one observable call against the fake.
type Event struct {
	Op     string
	Object string
	Detail string
	// Blocked is set on waits that had to complete pending work.
	Blocked bool
}

func (e Event) String() string {
	s := e.Op + " " + e.Object
	if e.Detail != "" {
		s += " " + e.Detail
	}
	if e.Blocked {
		s += " (blocked)"
	}
	return s
}

type sim struct {
	nextID     int
	events     []Event
	violations []string
	failures   map[string][]error
	acquire    []uint32
}

func newSim() *sim {
	return &sim{
		failures: map[string][]error{},
	}
}

func (s *sim) record(e Event) {
	s.events = append(s.events, e)
}

func (s *sim) violate(format string, a ...interface{}) {
	s.violations = append(s.violations, fmt.Sprintf(format, a...))
}

// fail pops the next injected error for op.
func (s *sim) fail(op string) error {
	errs := s.failures[op]
	if len(errs) == 0 {
		return nil
	}
	s.failures[op] = errs[1:]
	return errs[0]
}

// handle is the bookkeeping shared by every fake object.
type handle struct {
	sim       *sim
	id        int
	kind      string
	owner     *handle
	destroyed bool
	children  map[*handle]struct{}
}

func (s *sim) newHandle(kind string, owner *handle) *handle {
	s.nextID++
	h := &handle{
		sim:   s,
		id:    s.nextID,
		kind:  kind,
		owner: owner,
	}
	if owner != nil {
		if owner.children == nil {
			owner.children = map[*handle]struct{}{}
		}
		owner.children[h] = struct{}{}
	}
	s.record(Event{Op: "create", Object: h.String()})
	return h
}

func (h *handle) String() string {
	return fmt.Sprintf("%s#%d", h.kind, h.id)
}

// use reports whether h is still alive, flagging the call otherwise.
func (h *handle) use(op string) bool {
	if h.destroyed {
		h.sim.violate("%s on destroyed %s", op, h)
		return false
	}
	return true
}

func (h *handle) destroy() {
	if h.destroyed {
		h.sim.violate("double destroy of %s", h)
		return
	}
	if len(h.children) > 0 {
		names := make([]string, 0, len(h.children))
		for c := range h.children {
			names = append(names, c.String())
		}
		h.sim.violate("destroy of %s with live children: %s", h, strings.Join(names, ", "))
	}
	h.destroyed = true
	if h.owner != nil {
		delete(h.owner.children, h)
	}
	h.sim.record(Event{Op: "destroy", Object: h.String()})
}

// release drops h without recording a destroy event, for objects freed
// implicitly with their parent.
func (h *handle) release() {
	h.destroyed = true
	if h.owner != nil {
		delete(h.owner.children, h)
	}
}

var errOutOfPoolMemory = errors.New("out of pool memory")
