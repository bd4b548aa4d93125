// Package spiral turns the layers of a single-wall print into one continuous
// helix ("spiral vase" mode).
//
// A Processor is fed every layer of the print in order, including those that
// must not be transformed, so that its machine tracker knows where the
// nozzle is. Each layer is expected to start with a single Z move and to hold
// one loop of extrusion. The processor spreads the layer's height change over
// the horizontal travel of that loop, optionally blends the start of the loop
// toward the previous layer, tapers the flow in on a transition layer and
// appends a flow-tapering extra loop after the final layer.
package spiral

import (
	"fmt"
	"log/slog"

	"github.com/kennylevinsen/gospiral/gcode"
	"github.com/kennylevinsen/gospiral/internal/logging"
	"github.com/kennylevinsen/gospiral/vm"
	"seehuhn.de/go/geom/vec"
)

// DefaultMaxXYSmoothing is the largest distance, in millimetres, a point is
// pulled toward the previous layer. Ideally this follows the extrusion width.
const DefaultMaxXYSmoothing = 1.0

// Config holds the settings of a Processor.
type Config struct {
	// Enabled is the initial state, see Processor.Enable.
	Enabled bool
	// SmoothSpiral blends each loop with the previous one in XY.
	SmoothSpiral bool
	// MaxXYSmoothing caps the blend distance. Zero means DefaultMaxXYSmoothing.
	MaxXYSmoothing float64
	// RelativeExtrusion is the extruder mode (M83) at the start of the print.
	RelativeExtrusion bool
	// Precision of rewritten words. Zero means gcode.DefaultPrecision.
	Precision gcode.Precision
}

// Option customises a Processor.
type Option func(*Processor)

// WithLogger sets the logger for per-layer details and warnings.
func WithLogger(log *slog.Logger) Option {
	return func(p *Processor) {
		p.log = log
	}
}

// Processor rewrites one layer per call. It is not safe for concurrent use.
type Processor struct {
	cfg        Config
	machine    vm.Machine
	enabled    bool
	transition bool
	previous   []vec.Vec2
	log        *slog.Logger
}

// New returns a processor whose machine starts at the origin.
func New(cfg Config, opts ...Option) *Processor {
	if cfg.MaxXYSmoothing == 0 {
		cfg.MaxXYSmoothing = DefaultMaxXYSmoothing
	}
	if cfg.Precision == (gcode.Precision{}) {
		cfg.Precision = gcode.DefaultPrecision
	}

	p := &Processor{
		cfg:     cfg,
		enabled: cfg.Enabled,
		log:     logging.NewNop(),
	}
	p.machine.Init(cfg.RelativeExtrusion)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enable switches the transformation on or off. A disabled processor still
// tracks the machine through every layer it is given.
func (p *Processor) Enable(on bool) {
	p.enabled = on
}

func (p *Processor) Enabled() bool {
	return p.enabled
}

// SetTransitionLayer marks the next layers as the taper-in from solid layers.
// It only has an effect with relative extrusion.
func (p *Processor) SetTransitionLayer(on bool) {
	p.transition = on
}

// Machine returns a copy of the tracked machine.
func (p *Processor) Machine() vm.Machine {
	return p.machine.Clone()
}

// ProcessLayer transforms a single layer. When last is set, a second loop
// with flow going from full to nothing is appended to the output.
func (p *Processor) ProcessLayer(layer string, last bool) (string, error) {
	doc, err := gcode.Parse(layer)
	if err != nil {
		return "", fmt.Errorf("parse layer: %w", err)
	}

	// If we're not going to modify G-code, just feed it to the machine
	// in order to update positions.
	if !p.enabled {
		p.previous = nil
		if err := p.machine.Walk(doc, nil); err != nil {
			return "", err
		}
		return layer, nil
	}

	g, err := measure(p.machine.Clone(), doc)
	if err != nil {
		return "", err
	}

	if !g.Absolute {
		p.log.Warn("layer does not use absolute millimetre positioning, leaving it as is")
		p.previous = nil
		if err := p.machine.Walk(doc, nil); err != nil {
			return "", err
		}
		return layer, nil
	}

	return p.rewrite(doc, g, last)
}
