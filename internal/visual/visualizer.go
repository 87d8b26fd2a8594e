package visual

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gridwalk/gridwalk/internal/movement"
)

// Renderer event names.
const (
	EventShowPath     = "show_path"
	EventClearMarkers = "clear_markers"
	EventClearPath    = "clear_path"
)

type pathData struct {
	Agent  uint64       `json:"agent"`
	Name   string       `json:"name"`
	Points []mgl32.Vec3 `json:"points"`
}

type markersData struct {
	Agent uint64 `json:"agent"`
	UpTo  int    `json:"up_to"`
}

type agentData struct {
	Agent uint64 `json:"agent"`
}

// Visualizer forwards path marker commands to connected renderers.
type Visualizer struct {
	hub *Hub
}

func NewVisualizer(hub *Hub) *Visualizer {
	return &Visualizer{hub: hub}
}

func (v *Visualizer) ShowPath(agent *movement.Agent, points []mgl32.Vec3) {
	v.hub.Publish(EventShowPath, pathData{Agent: uint64(agent.ID), Name: agent.Name, Points: points})
}

func (v *Visualizer) ClearMarkers(agent *movement.Agent, upTo int) {
	v.hub.Publish(EventClearMarkers, markersData{Agent: uint64(agent.ID), UpTo: upTo})
}

func (v *Visualizer) ClearPath(agent *movement.Agent) {
	v.hub.Publish(EventClearPath, agentData{Agent: uint64(agent.ID)})
}

var _ movement.Visualizer = (*Visualizer)(nil)
