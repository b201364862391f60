package domain

// ProgramTree is a program loaded with its client and every nested level,
// each level sorted (week number, day number, order index).
type ProgramTree struct {
	Program
	Client     *Client         `json:"client,omitempty"`
	Mesocycles []MesocycleNode `json:"mesocycles"`
}

type MesocycleNode struct {
	Mesocycle
	Days []DayNode `json:"days"`
}

type DayNode struct {
	Day
	Blocks []WorkoutBlock `json:"blocks"`
}

// EachBlock walks every block of the tree in order.
func (t *ProgramTree) EachBlock(fn func(week MesocycleNode, day DayNode, block WorkoutBlock)) {
	for _, m := range t.Mesocycles {
		for _, d := range m.Days {
			for _, b := range d.Blocks {
				fn(m, d, b)
			}
		}
	}
}
