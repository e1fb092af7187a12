package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: panel not found: terminal
	Error string `json:"error" example:"panel not found: terminal"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// Rect is an on-screen rectangle in device pixels.
type Rect struct {
	X      int `json:"x" example:"100"`
	Y      int `json:"y" example:"75"`
	Width  int `json:"width" example:"800"`
	Height int `json:"height" example:"600"`
}

// PanelStatus summarizes one panel for /status.
type PanelStatus struct {
	// Panel name; also the relay name the host plays.
	// example: terminal
	Name string `json:"name" example:"terminal"`
	// Lifecycle state (uninitialized, created, awaiting_ready, ready, removed).
	// example: ready
	State string `json:"state" example:"ready"`
	// URL the renderer was navigated to.
	// example: file:///srv/panels/terminal/index.html
	URL string `json:"url,omitempty" example:"file:///srv/panels/terminal/index.html"`
	// Renderer pixel width, fixed at creation.
	// example: 800
	Width int `json:"width" example:"800"`
	// Renderer pixel height, fixed at creation.
	// example: 600
	Height int `json:"height" example:"600"`
	// On-screen rectangle computed on the last draw tick.
	Rect Rect `json:"rect"`
	// True while the busy indicator would be shown.
	// example: false
	Busy bool `json:"busy" example:"false"`
	// Whether the host reports the panel as visible.
	// example: true
	Visible bool `json:"visible" example:"true"`
	// Whether the panel holds a valid playback handle.
	// example: true
	Playing bool `json:"playing" example:"true"`
	// Completed draws.
	// example: 1200
	Draws uint64 `json:"draws" example:"1200"`
	// Draw ticks skipped for lack of a frame or a valid handle.
	// example: 3
	Skipped uint64 `json:"skipped" example:"3"`
	// Last message the page posted to the host, if any.
	LastMessage string `json:"last_message,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Panels known to the manager, sorted by name.
	Panels []PanelStatus `json:"panels"`
	// Names currently registered in the relay registry.
	// example: ["terminal"]
	Relays []string `json:"relays"`
	// Whether the host patches are installed.
	// example: true
	HooksInstalled bool `json:"hooks_installed" example:"true"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// ActionResponse acknowledges a debug action.
type ActionResponse struct {
	// example: reload
	Action string `json:"action" example:"reload"`
	// example: terminal
	Panel string `json:"panel,omitempty" example:"terminal"`
}

// InputResponse reports whether an input event was captured by a panel.
type InputResponse struct {
	// example: true
	Captured bool `json:"captured" example:"true"`
}
