package pipeline

import (
	"math"
	"strings"

	"github.com/kennylevinsen/gospiral/gcode"
	"github.com/kennylevinsen/gospiral/vm"
)

// Print is a program cut at its layer changes. Joining the parts in order
// gives back the input.
type Print struct {
	Header string
	Layers []string
	Footer string
}

// Split cuts input into layers. A layer starts at a non-extruding Z move that
// goes above every height printed at so far, provided the nozzle then prints
// before coming back down. Moves in between, such as the travel of a Z hop,
// belong to the new layer. Everything after the last printing move is the
// footer.
func Split(input string, relativeExtrude bool) (*Print, error) {
	doc, err := gcode.Parse(input)
	if err != nil {
		return nil, err
	}

	lines := strings.SplitAfter(input, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	var (
		m       vm.Machine
		starts  []int
		printed = math.Inf(-1)
		pending = -1
		end     = 0
		idx     = 0
	)
	m.Init(relativeExtrude)

	err = m.Walk(doc, func(mv vm.Move) error {
		defer func() { idx++ }()
		if !mv.Linear() {
			return nil
		}

		switch {
		case mv.Extruding() && mv.DistXY() > 0:
			if pending >= 0 {
				starts = append(starts, pending)
				pending = -1
			}
			printed = math.Max(printed, mv.To.Z)
			end = idx + 1
		case !mv.Extruding() && mv.Has('Z'):
			switch {
			case mv.To.Z <= printed:
				pending = -1
			case pending < 0 || math.IsInf(printed, -1):
				// Start G-code may move up and down freely, the last
				// move before printing starts the first layer.
				pending = idx
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	pr := &Print{}
	if len(starts) == 0 {
		pr.Header = input
		return pr, nil
	}

	pr.Header = strings.Join(lines[:starts[0]], "")
	for i, s := range starts {
		e := end
		if i+1 < len(starts) {
			e = starts[i+1]
		}
		pr.Layers = append(pr.Layers, strings.Join(lines[s:e], ""))
	}
	pr.Footer = strings.Join(lines[end:], "")
	return pr, nil
}
