package panel

import (
	"time"

	"webvideo/pkg/types"
)

// Status builds the response for /status.
func (m *Manager) Status() types.StatusResponse {
	resp := types.StatusResponse{
		Relays:         m.cfg.Relays.Names(),
		HooksInstalled: m.cfg.Hooks.Installed(),
		UptimeSeconds:  int64(time.Since(m.startTime) / time.Second),
		ServerTimeUnix: time.Now().Unix(),
	}
	panels := m.list()
	resp.Panels = make([]types.PanelStatus, 0, len(panels))
	for _, l := range panels {
		s := l.Snapshot()
		resp.Panels = append(resp.Panels, types.PanelStatus{
			Name:        s.Name,
			State:       string(s.State),
			URL:         s.URL,
			Width:       s.Size.Width,
			Height:      s.Size.Height,
			Rect:        types.Rect{X: s.Rect.X, Y: s.Rect.Y, Width: s.Rect.Width, Height: s.Rect.Height},
			Busy:        s.Busy,
			Visible:     s.Visible,
			Playing:     s.Playing,
			Draws:       s.Draws,
			Skipped:     s.Skipped,
			LastMessage: s.LastMessage,
		})
	}
	return resp
}
