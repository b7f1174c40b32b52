package myr

type EventType int

const (
	KeyDown EventType = iota
	KeyUp
	MouseButtonDown
	MouseButtonUp
	MouseMotion
)

type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
)

type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// Event is an input event already translated from the window system.
type Event struct {
	Type   EventType
	Key    Key
	Button MouseButton
	// XRel and YRel are the motion since the previous motion event.
	XRel, YRel int
}

type InputState struct {
	Forward, Backward, Left, Right bool
	MouseXRel, MouseYRel           int
	MouseRight                     bool
}

// Apply folds ev into the state. Motion accumulates until ConsumeMotion.
func (s *InputState) Apply(ev Event) {
	switch ev.Type {
	case KeyDown, KeyUp:
		down := ev.Type == KeyDown
		switch ev.Key {
		case KeyW:
			s.Forward = down
		case KeyS:
			s.Backward = down
		case KeyA:
			s.Left = down
		case KeyD:
			s.Right = down
		}
	case MouseButtonDown, MouseButtonUp:
		if ev.Button == MouseRight {
			s.MouseRight = ev.Type == MouseButtonDown
		}
	case MouseMotion:
		s.MouseXRel += ev.XRel
		s.MouseYRel += ev.YRel
	}
}

func (s *InputState) ConsumeMotion() {
	s.MouseXRel = 0
	s.MouseYRel = 0
}
