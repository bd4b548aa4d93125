package spiral

import (
	"github.com/kennylevinsen/gospiral/gcode"
	"github.com/kennylevinsen/gospiral/vm"
)

type layerGeometry struct {
	Length float64 // planar length of all extrusion moves
	Rise   float64 // vertical travel of the non-extruding moves
	Base   float64 // height right before the first vertical move

	// Absolute is set when the whole layer moves in absolute millimetres.
	Absolute bool
}

// Without extrusion length there is nothing to spread the rise over.
func (g layerGeometry) degenerate() bool {
	return g.Length == 0
}

// measure scans the layer on its own copy of the machine.
func measure(m vm.Machine, doc *gcode.Document) (layerGeometry, error) {
	g := layerGeometry{Base: m.Position.Z, Absolute: absolute(m.State)}
	seenZ := false

	err := m.Walk(doc, func(mv vm.Move) error {
		g.Absolute = g.Absolute && absolute(m.State)
		if !mv.Linear() {
			return nil
		}
		if mv.Extruding() {
			g.Length += mv.DistXY()
			return nil
		}
		if mv.Has('Z') {
			if !seenZ {
				g.Base = mv.From.Z
				seenZ = true
			}
			g.Rise += mv.DistZ()
		}
		return nil
	})
	return g, err
}

func absolute(s vm.State) bool {
	return s.AbsoluteMove && !s.Imperial
}
