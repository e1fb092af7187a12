package input

// Kind identifies an input event.
type Kind string

const (
	MouseMove  Kind = "mouse_move"
	MouseDown  Kind = "mouse_down"
	MouseUp    Kind = "mouse_up"
	MouseWheel Kind = "mouse_wheel"
	KeyDown    Kind = "key_down"
	KeyUp      Kind = "key_up"
	Char       Kind = "char"
)

// Button is a pointer button.
type Button string

const (
	ButtonNone   Button = ""
	ButtonLeft   Button = "left"
	ButtonMiddle Button = "middle"
	ButtonRight  Button = "right"
)

// Modifier flags, combinable.
type Modifier uint8

const (
	ModAlt Modifier = 1 << iota
	ModCtrl
	ModMeta
	ModShift
)

// Event is an OS-level input event. X/Y are in screen pixels when produced by
// the host and in panel-local pixels once routed to a renderer.
type Event struct {
	Kind      Kind     `json:"kind"`
	X         int      `json:"x,omitempty"`
	Y         int      `json:"y,omitempty"`
	Button    Button   `json:"button,omitempty"`
	DeltaX    float64  `json:"delta_x,omitempty"`
	DeltaY    float64  `json:"delta_y,omitempty"`
	Key       string   `json:"key,omitempty"`
	Rune      rune     `json:"rune,omitempty"`
	Modifiers Modifier `json:"modifiers,omitempty"`
}

// IsPointer reports whether the event carries a pointer position.
func (e Event) IsPointer() bool {
	switch e.Kind {
	case MouseMove, MouseDown, MouseUp, MouseWheel:
		return true
	}
	return false
}

// Target accepts input forwarded from the host.
type Target interface {
	SendInput(Event) error
}
