package vm

import "github.com/kennylevinsen/gospiral/gcode"

// Move is what a single block did to the machine.
type Move struct {
	Block           *gcode.Block
	Motion          int // MoveModeNone unless the block travels along a path
	From, To        Position
	RelativeExtrude bool
}

// Linear reports whether the block is a straight G0/G1 move.
func (m Move) Linear() bool {
	return m.Motion == MoveModeLinear || m.Motion == MoveModeRapid
}

// Has reports whether the block carries a word for the axis.
func (m Move) Has(axis rune) bool {
	return m.Block.HasWord(axis)
}

// DistXY is the planar length of the move.
func (m Move) DistXY() float64 {
	return m.To.XY().Sub(m.From.XY()).Length()
}

// DistZ is the signed vertical change of the move.
func (m Move) DistZ() float64 {
	return m.To.Z - m.From.Z
}

// DistE is the amount of filament fed by the move.
func (m Move) DistE() float64 {
	return m.To.E - m.From.E
}

// Extruding reports whether material is deposited while moving.
func (m Move) Extruding() bool {
	return m.Motion != MoveModeNone && m.DistE() > 0
}

// SetsPosition reports whether the block redefined the logical position (G92).
func (m Move) SetsPosition() bool {
	return m.Block.IsCommand('G', 92)
}

// Calculates the absolute position of the given statement
func (vm *Machine) calcPos(stmt *gcode.Block) Position {
	pos := vm.Position
	pos.X = vm.axisValue(stmt, 'X', pos.X, !vm.State.AbsoluteMove)
	pos.Y = vm.axisValue(stmt, 'Y', pos.Y, !vm.State.AbsoluteMove)
	pos.Z = vm.axisValue(stmt, 'Z', pos.Z, !vm.State.AbsoluteMove)
	pos.E = vm.axisValue(stmt, 'E', pos.E, vm.State.RelativeExtrude)
	return pos
}

func (vm *Machine) axisValue(stmt *gcode.Block, address rune, cur float64, relative bool) float64 {
	v, err := stmt.GetWord(address)
	if err != nil {
		return cur
	}
	if vm.State.Imperial {
		v *= 25.4
	}
	if relative {
		return cur + v
	}
	return v
}

// G92: the given axes take the given values without moving.
func (vm *Machine) setPosition(stmt *gcode.Block) {
	pos := &vm.Position
	pos.X = vm.axisValue(stmt, 'X', pos.X, false)
	pos.Y = vm.axisValue(stmt, 'Y', pos.Y, false)
	pos.Z = vm.axisValue(stmt, 'Z', pos.Z, false)
	pos.E = vm.axisValue(stmt, 'E', pos.E, false)
}

// G28: the given axes, or all of them, return to zero.
func (vm *Machine) home(stmt *gcode.Block) {
	all := !stmt.HasWord('X') && !stmt.HasWord('Y') && !stmt.HasWord('Z')
	if all || stmt.HasWord('X') {
		vm.Position.X = 0
	}
	if all || stmt.HasWord('Y') {
		vm.Position.Y = 0
	}
	if all || stmt.HasWord('Z') {
		vm.Position.Z = 0
	}
}
