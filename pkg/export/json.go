package export

import (
	"encoding/json"

	"github.com/pedalstack/pedalstack/pkg/board"
	"github.com/pedalstack/pedalstack/pkg/conflict"
	"github.com/pedalstack/pedalstack/pkg/route"
)

// Document is the JSON layout export: everything a consumer needs to redraw
// the board without access to the session.
type Document struct {
	Board     *board.Board           `json:"board"`
	Amp       *board.Amp             `json:"amp,omitempty"`
	Instances []*board.PedalInstance `json:"instances"`
	Layout    board.Layout           `json:"layout"`
	Routes    []route.Route          `json:"routes,omitempty"`
	Conflicts []conflict.Conflict    `json:"conflicts,omitempty"`
}

// RenderJSON marshals the document with indentation for diff-friendliness.
func RenderJSON(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
