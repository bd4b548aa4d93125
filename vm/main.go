package vm

import (
	"fmt"

	"github.com/kennylevinsen/gospiral/gcode"
	"seehuhn.de/go/geom/vec"
)

// Constants for move modes
const (
	MoveModeNone = iota
	MoveModeRapid
	MoveModeLinear
	MoveModeCWArc
	MoveModeCCWArc
)

// State is the modal state of the machine.
type State struct {
	MoveMode        int
	Feedrate        float64
	AbsoluteMove    bool
	RelativeExtrude bool
	Imperial        bool
}

// Position is the logical position of every axis, in millimetres.
type Position struct {
	X, Y, Z, E float64
}

func (p Position) XY() vec.Vec2 {
	return vec.Vec2{X: p.X, Y: p.Y}
}

// Machine tracks modal state and position across blocks. It only holds values,
// so a copy of a Machine tracks independently of the original.
type Machine struct {
	State    State
	Position Position
}

// Init resets the machine to absolute millimetre positioning at the origin.
func (vm *Machine) Init(relativeExtrude bool) {
	vm.State = State{
		MoveMode:        MoveModeNone,
		AbsoluteMove:    true,
		RelativeExtrude: relativeExtrude,
	}
	vm.Position = Position{}
}

// Clone returns a copy that can be stepped without disturbing vm.
func (vm *Machine) Clone() Machine {
	return *vm
}

// Step executes a block and returns the move it caused.
func (vm *Machine) Step(b *gcode.Block) (Move, error) {
	mv := Move{Block: b, From: vm.Position, To: vm.Position, RelativeExtrude: vm.State.RelativeExtrude}
	if b.BlockDelete {
		return mv, nil
	}

	if err := vm.updateModes(b); err != nil {
		return mv, err
	}
	mv.RelativeExtrude = vm.State.RelativeExtrude

	nonModal, err := b.GetModalGroup(gcode.NonModalGroup)
	if err != nil {
		return mv, err
	}
	motion, err := b.GetModalGroup(gcode.MotionGroup)
	if err != nil {
		return mv, err
	}
	if motion != nil {
		switch motion.Command {
		case 0:
			vm.State.MoveMode = MoveModeRapid
		case 1:
			vm.State.MoveMode = MoveModeLinear
		case 2:
			vm.State.MoveMode = MoveModeCWArc
		case 3:
			vm.State.MoveMode = MoveModeCCWArc
		}
	}

	switch {
	case nonModal != nil && nonModal.Command == 92:
		vm.setPosition(b)
	case nonModal != nil && nonModal.Command == 28:
		vm.home(b)
	case nonModal != nil:
		// Dwell and firmware retraction leave the logical position alone
	case motion != nil || (hasAxisWords(b) && !hasCommandWords(b)):
		if vm.State.MoveMode != MoveModeNone {
			mv.Motion = vm.State.MoveMode
			vm.Position = vm.calcPos(b)
		}
	}

	mv.To = vm.Position
	return mv, nil
}

// Walk steps through every block of the document, handing each move to fn.
// fn may be nil, in which case the document is only observed.
func (vm *Machine) Walk(doc *gcode.Document, fn func(Move) error) error {
	for idx := range doc.Blocks {
		mv, err := vm.Step(&doc.Blocks[idx])
		if err != nil {
			return fmt.Errorf("line %d: %w", idx+1, err)
		}
		if fn == nil {
			continue
		}
		if err := fn(mv); err != nil {
			return err
		}
	}
	return nil
}

func (vm *Machine) updateModes(b *gcode.Block) error {
	if w, err := b.GetModalGroup(gcode.UnitsGroup); err != nil {
		return err
	} else if w != nil {
		vm.State.Imperial = w.Command == 20
	}

	if w, err := b.GetModalGroup(gcode.DistanceModeGroup); err != nil {
		return err
	} else if w != nil {
		vm.State.AbsoluteMove = w.Command == 90
	}

	if w, err := b.GetModalGroup(gcode.ExtruderModeGroup); err != nil {
		return err
	} else if w != nil {
		vm.State.RelativeExtrude = w.Command == 83
	}

	if f, err := b.GetWord('F'); err == nil {
		vm.State.Feedrate = f
	}
	return nil
}

func hasAxisWords(b *gcode.Block) bool {
	return b.HasWord('X') || b.HasWord('Y') || b.HasWord('Z') || b.HasWord('E')
}

func hasCommandWords(b *gcode.Block) bool {
	return b.HasWord('G') || b.HasWord('M') || b.HasWord('T')
}
