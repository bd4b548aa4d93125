package spiral

import (
	"github.com/kennylevinsen/gospiral/export"
	"github.com/kennylevinsen/gospiral/gcode"
	"github.com/kennylevinsen/gospiral/utils"
	"github.com/kennylevinsen/gospiral/vm"
	"seehuhn.de/go/geom/vec"
)

// extruder keeps the E words of one output stream in line with the amounts
// actually written. With absolute extrusion a scaled amount shifts every
// later E value, so the shift is carried along until the next G92.
type extruder struct {
	offset float64
}

func (x *extruder) apply(b *gcode.Block, mv vm.Move, factor float64) {
	if !b.HasWord('E') || (mv.Motion == vm.MoveModeNone && !mv.SetsPosition()) {
		return
	}

	if mv.RelativeExtrude {
		if factor != 1 {
			b.SetWord('E', b.GetWordDefault('E', 0)*factor)
		}
		return
	}

	if mv.SetsPosition() {
		x.offset = 0
		return
	}
	if factor != 1 {
		d := mv.DistE()
		x.offset += d*factor - d
	}
	if x.offset != 0 {
		b.SetWord('E', mv.To.E+x.offset)
	}
}

// A block of the taper-out loop, finished once the main loop is done.
type taperMove struct {
	block  *gcode.Block
	move   vm.Move
	factor float64
}

func (p *Processor) rewrite(doc *gcode.Document, g layerGeometry, last bool) (string, error) {
	// A transition under absolute extrusion would have to shift every later
	// E value of the print, so it only happens with relative extrusion.
	transition := p.transition && p.machine.State.RelativeExtrude
	// A degenerate layer has no loop to repeat.
	taperOut := last && !transition && !g.degenerate()

	var (
		body      = export.NewStringCodeGenerator(p.cfg.Precision)
		tail      = export.NewStringCodeGenerator(p.cfg.Precision)
		flow      extruder
		taper     []taperMove
		current   []vec.Vec2
		length    float64
		heightSet bool
		printing  bool
		height    float64 // original height of the loop
		smoothed  int
		startE    = p.machine.Position.E
		lastPoint = p.machine.Position.XY()
	)
	body.Newline = doc.LineEnding()
	tail.Newline = doc.LineEnding()

	err := p.machine.Walk(doc, func(mv vm.Move) error {
		b := mv.Block

		switch {
		case mv.Linear() && !mv.Extruding() && mv.Has('Z'):
			if heightSet && taperOut {
				taper = append(taper, taperMove{b.Clone(), mv, 1})
			}
			// Replace the layer change with a (redundant) move to the height
			// the previous layer ended at. The layer climbs while printing.
			// Hops keep their distance above the loop, wherever the ramp is.
			z := g.Base
			if printing {
				z = g.Base + length/g.Length*g.Rise + mv.To.Z - height
			}
			heightSet = true
			b.SetWord('Z', z)
			flow.apply(b, mv, 1)

		case !g.degenerate() && mv.Linear() && mv.Extruding() && mv.DistXY() > 0:
			if !printing {
				printing = true
				height = mv.To.Z
			}
			length += mv.DistXY()
			progress := length / g.Length
			if taperOut {
				taper = append(taper, taperMove{b.Clone(), mv, 1 - progress})
			}

			b.SetWord('Z', g.Base+progress*g.Rise)

			factor := 1.0
			if transition {
				factor = progress
			}

			target := mv.To.XY()
			point := target
			if p.cfg.SmoothSpiral {
				current = append(current, target)
				if nearest, dist, ok := utils.NearestOnPolyline(target, p.previous); ok && dist <= p.cfg.MaxXYSmoothing {
					point = utils.Lerp(nearest, target, progress)
					b.SetWord('X', point.X)
					b.SetWord('Y', point.Y)
					// Keep the flow per length as it was on the original path
					factor *= utils.Distance(lastPoint, point) / mv.DistXY()
					smoothed++
				}
			}
			flow.apply(b, mv, factor)
			body.Block(b)
			lastPoint = point
			return nil

		default:
			if taperOut {
				taper = append(taper, taperMove{b.Clone(), mv, 1})
			}
			flow.apply(b, mv, 1)
		}

		body.Block(b)
		lastPoint = mv.To.XY()
		return nil
	})
	if err != nil {
		return "", err
	}

	offset := flow.offset
	if len(taper) > 0 {
		tf := extruder{offset: p.machine.Position.E + flow.offset - startE}
		for _, t := range taper {
			tf.apply(t.block, t.move, t.factor)
			tail.Block(t.block)
		}
		offset = tf.offset
	}
	if !p.machine.State.RelativeExtrude && offset != 0 {
		tail.SetExtruder(p.machine.Position.E)
	}

	p.log.Debug("spiral layer",
		"length", g.Length,
		"rise", g.Rise,
		"base", g.Base,
		"degenerate", g.degenerate(),
		"transition", transition,
		"last", last,
		"smoothed", smoothed)

	// The old trace is dropped, the new one is used by the next layer.
	p.previous = current

	body.Append(tail)
	return body.Retrieve(), nil
}
