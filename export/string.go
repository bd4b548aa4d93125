package export

import (
	"strings"

	"github.com/kennylevinsen/gospiral/gcode"
)

// StringCodeGenerator collects blocks and renders them as G-code text.
type StringCodeGenerator struct {
	Precision gcode.Precision
	Lines     []string
	Newline   string // "\n" when empty
}

func NewStringCodeGenerator(p gcode.Precision) *StringCodeGenerator {
	return &StringCodeGenerator{Precision: p}
}

func (s *StringCodeGenerator) put(x string) {
	s.Lines = append(s.Lines, x)
}

// Adds a block, verbatim unless it was modified.
func (s *StringCodeGenerator) Block(b *gcode.Block) {
	s.put(b.Export(s.Precision))
}

// Adds a G92 setting the logical extruder position.
func (s *StringCodeGenerator) SetExtruder(e float64) {
	var b gcode.Block
	b.AppendNode(&gcode.Word{Address: 'G', Command: 92})
	b.AppendNode(&gcode.Word{Address: 'E', Command: e})
	s.Block(&b)
}

// Appends everything collected by o.
func (s *StringCodeGenerator) Append(o *StringCodeGenerator) {
	s.Lines = append(s.Lines, o.Lines...)
}

func (s *StringCodeGenerator) Length() int {
	return len(s.Lines)
}

// Fetch the generated gcodes.
func (s *StringCodeGenerator) Retrieve() string {
	nl := s.Newline
	if nl == "" {
		nl = "\n"
	}
	var sb strings.Builder
	for _, x := range s.Lines {
		sb.WriteString(x)
		sb.WriteString(nl)
	}
	return sb.String()
}
