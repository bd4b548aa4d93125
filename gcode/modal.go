package gcode

import "fmt"

type sliceOfWords []*Word

const (
	NonModalGroup     = "nonModalGroup"
	MotionGroup       = "motionGroup"
	DistanceModeGroup = "distanceModeGroup"
	UnitsGroup        = "unitsGroup"
	ExtruderModeGroup = "extruderModeGroup"
	PlaneGroup        = "planeSelectionGroup"
)

var (
	groups = map[string]sliceOfWords{
		NonModalGroup: sliceOfWords{&Word{'G', 4},
			&Word{'G', 10},
			&Word{'G', 11},
			&Word{'G', 28},
			&Word{'G', 92},
		},
		MotionGroup: sliceOfWords{&Word{'G', 0},
			&Word{'G', 1},
			&Word{'G', 2},
			&Word{'G', 3},
		},
		PlaneGroup: sliceOfWords{&Word{'G', 17},
			&Word{'G', 18},
			&Word{'G', 19},
		},
		DistanceModeGroup: sliceOfWords{&Word{'G', 90},
			&Word{'G', 91},
		},
		UnitsGroup: sliceOfWords{&Word{'G', 20},
			&Word{'G', 21},
		},
		ExtruderModeGroup: sliceOfWords{&Word{'M', 82},
			&Word{'M', 83},
		},
	}
)

func (n sliceOfWords) isInGroup(w *Word) bool {
	for _, word := range n {
		if *word == *w {
			return true
		}
	}
	return false
}

// GetModalGroup returns the word of the given group present in the block,
// or nil. Two words from the same group in one block is an error.
func (b *Block) GetModalGroup(t string) (*Word, error) {
	var word *Word
	group := groups[t]
	for _, n := range b.Nodes {
		if w, ok := n.(*Word); ok {
			if group.isInGroup(w) {
				if word != nil {
					return nil, fmt.Errorf("multiple gcodes from same modal group (%s)", t)
				}
				word = w
			}
		}
	}
	return word, nil
}
