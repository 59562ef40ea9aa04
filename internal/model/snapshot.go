package model

import "github.com/google/uuid"

// ButtonGraph is a button together with its optional functionality.
type ButtonGraph struct {
	Button
	Functionality *Functionality `json:"functionality,omitempty"`
}

// BoardGraph is a board with everything it owns.
type BoardGraph struct {
	Board
	Buttons []ButtonGraph `json:"buttons"`
}

// Snapshot is a serialisable set of boards. Page-switch targets must resolve
// inside the snapshot or in the store it is imported into.
type Snapshot struct {
	Boards []BoardGraph `json:"boards"`
}

// BoardIDs returns the ids of all boards in the snapshot.
func (s Snapshot) BoardIDs() map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(s.Boards))
	for _, g := range s.Boards {
		ids[g.ID] = true
	}
	return ids
}
