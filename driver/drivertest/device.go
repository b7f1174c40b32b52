package drivertest

import (
	"github.com/pkg/errors"

	"github.com/perlw/myrcube/driver"
)

var errDestroyed = errors.New("object destroyed")

type Device struct {
	*handle
	gpu      *GPU
	graphics *Queue
	present  *Queue
}

func (d *Device) GraphicsQueue() driver.Queue {
	return d.graphics
}

func (d *Device) PresentQueue() driver.Queue {
	return d.present
}

func (d *Device) WaitIdle() error {
	if !d.use("wait idle") {
		return errDestroyed
	}
	if err := d.sim.fail("DeviceWaitIdle"); err != nil {
		return err
	}
	d.graphics.drain()
	d.present.drain()
	d.sim.record(Event{Op: "waitidle", Object: d.String()})
	return nil
}

func (d *Device) Destroy() {
	if len(d.graphics.pending) > 0 || len(d.present.pending) > 0 {
		d.sim.violate("destroy of %s with pending work", d)
	}
	d.destroy()
}

func (d *Device) CreateSemaphore() (driver.Semaphore, error) {
	if err := d.create("CreateSemaphore"); err != nil {
		return nil, err
	}
	return &Semaphore{handle: d.sim.newHandle("semaphore", d.handle)}, nil
}

func (d *Device) CreateFence(signaled bool) (driver.Fence, error) {
	if err := d.create("CreateFence"); err != nil {
		return nil, err
	}
	return &Fence{handle: d.sim.newHandle("fence", d.handle), device: d, signaled: signaled}, nil
}

func (d *Device) create(op string) error {
	if !d.use(op) {
		return errDestroyed
	}
	return d.sim.fail(op)
}

// Queue executes batches in submission order once something waits on them.
type Queue struct {
	device  *Device
	family  int
	name    string
	pending []*batch
}

type batch struct {
	commands []*CommandBuffer
	signals  []*Semaphore
	fence    *Fence
}

func (q *Queue) String() string {
	return q.name
}

func (q *Queue) Submit(info driver.SubmitInfo) error {
	s := q.device.sim
	if !q.device.use("submit") {
		return errDestroyed
	}
	if err := s.fail("Submit"); err != nil {
		return err
	}
	if len(info.WaitSemaphores) != len(info.WaitStages) {
		s.violate("submit with %d wait semaphores and %d wait stages", len(info.WaitSemaphores), len(info.WaitStages))
	}
	for _, ws := range info.WaitSemaphores {
		sem := ws.(*Semaphore)
		sem.consume("submit")
	}

	b := &batch{}
	for _, c := range info.CommandBuffers {
		cb := c.(*CommandBuffer)
		cb.use("submit")
		switch {
		case cb.pending:
			s.violate("submit of %s while still pending", cb)
		case cb.state != stateExecutable:
			s.violate("submit of %s that is not executable", cb)
		}
		cb.pending = true
		b.commands = append(b.commands, cb)
	}
	for _, ss := range info.SignalSemaphores {
		sem := ss.(*Semaphore)
		sem.signal("submit")
		b.signals = append(b.signals, sem)
	}
	if info.Fence != nil {
		f := info.Fence.(*Fence)
		f.use("submit")
		if f.signaled {
			s.violate("submit with signaled %s", f)
		}
		if f.batch != nil {
			s.violate("submit with %s already pending", f)
		}
		f.batch = b
		b.fence = f
	}
	q.pending = append(q.pending, b)

	detail := ""
	for _, cb := range b.commands {
		detail += cb.String() + " "
	}
	if b.fence != nil {
		detail += "-> " + b.fence.String()
	}
	s.record(Event{Op: "submit", Object: q.name, Detail: detail})
	return nil
}

func (q *Queue) Present(info driver.PresentInfo) error {
	s := q.device.sim
	if !q.device.use("present") {
		return errDestroyed
	}
	for _, ws := range info.WaitSemaphores {
		ws.(*Semaphore).consume("present")
	}
	sc := info.Swapchain.(*Swapchain)
	if !sc.use("present") {
		return errDestroyed
	}
	if int(info.ImageIndex) >= len(sc.images) || !sc.acquired[info.ImageIndex] {
		s.violate("present of image %d not acquired from %s", info.ImageIndex, sc)
	} else {
		sc.acquired[info.ImageIndex] = false
	}
	s.record(Event{Op: "present", Object: sc.String(), Detail: imageDetail(info.ImageIndex)})
	if err := s.fail("Present"); err != nil {
		return err
	}
	return nil
}

func (q *Queue) WaitIdle() error {
	if !q.device.use("queue wait idle") {
		return errDestroyed
	}
	q.drain()
	q.device.sim.record(Event{Op: "waitidle", Object: q.name})
	return nil
}

func (q *Queue) drain() {
	for len(q.pending) > 0 {
		q.completeNext()
	}
}

// completeThrough completes every batch up to and including b.
func (q *Queue) completeThrough(b *batch) {
	for len(q.pending) > 0 {
		done := q.pending[0]
		q.completeNext()
		if done == b {
			return
		}
	}
}

func (q *Queue) completeNext() {
	b := q.pending[0]
	q.pending = q.pending[1:]
	for _, cb := range b.commands {
		cb.execute()
		cb.pending = false
	}
	if b.fence != nil {
		b.fence.signaled = true
		b.fence.batch = nil
	}
}

// inFlight reports whether pending work reads or writes memory.
func (q *Queue) inFlight(m *Memory) bool {
	for _, b := range q.pending {
		for _, cb := range b.commands {
			if cb.references(m) {
				return true
			}
		}
	}
	return false
}

type Semaphore struct {
	*handle
	signaled bool
}

func (s *Semaphore) signal(op string) {
	s.use(op)
	if s.signaled {
		s.sim.violate("%s signals %s which is already signaled", op, s)
	}
	s.signaled = true
}

func (s *Semaphore) consume(op string) {
	s.use(op)
	if !s.signaled {
		s.sim.violate("%s waits on unsignaled %s", op, s)
	}
	s.signaled = false
}

func (s *Semaphore) Destroy() {
	s.destroy()
}

type Fence struct {
	*handle
	device   *Device
	signaled bool
	batch    *batch
}

func (f *Fence) Wait(timeout uint64) error {
	if !f.use("wait") {
		return errDestroyed
	}
	if err := f.sim.fail("Wait"); err != nil {
		return err
	}
	switch {
	case f.signaled:
		f.sim.record(Event{Op: "wait", Object: f.String()})
	case f.batch != nil:
		f.owningQueue().completeThrough(f.batch)
		f.sim.record(Event{Op: "wait", Object: f.String(), Blocked: true})
	default:
		if timeout != 0 {
			f.sim.violate("wait on %s which nothing will signal", f)
		}
		return driver.ErrTimeout
	}
	return nil
}

func (f *Fence) owningQueue() *Queue {
	d := f.device
	for _, q := range []*Queue{d.graphics, d.present} {
		for _, b := range q.pending {
			if b == f.batch {
				return q
			}
		}
	}
	return d.graphics
}

func (f *Fence) Reset() error {
	if !f.use("reset") {
		return errDestroyed
	}
	if f.batch != nil {
		f.sim.violate("reset of %s while pending", f)
	}
	f.signaled = false
	f.sim.record(Event{Op: "reset", Object: f.String()})
	return nil
}

func (f *Fence) Destroy() {
	if f.batch != nil {
		f.sim.violate("destroy of %s while pending", f)
	}
	f.destroy()
}
