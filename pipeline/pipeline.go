// Package pipeline runs a whole print through the spiral processor, one layer
// at a time.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kennylevinsen/gospiral/config"
	"github.com/kennylevinsen/gospiral/internal/logging"
	"github.com/kennylevinsen/gospiral/spiral"
)

type options struct {
	log     *slog.Logger
	onLayer func(done, total int)
}

type Option func(*options)

func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// OnLayer registers a callback run after every layer.
func OnLayer(fn func(done, total int)) Option {
	return func(o *options) {
		o.onLayer = fn
	}
}

// Stats describes a finished run.
type Stats struct {
	Layers     int
	Spiralized int
}

// Run reads a print from in and writes the processed print to out. The
// first cfg.BottomLayers layers are kept as they are, every later layer becomes
// part of the spiral.
func Run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer, opts ...Option) (Stats, error) {
	o := options{log: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	var stats Stats
	data, err := io.ReadAll(in)
	if err != nil {
		return stats, fmt.Errorf("failed to read input: %w", err)
	}
	pr, err := Split(string(data), cfg.RelativeExtrusion)
	if err != nil {
		return stats, fmt.Errorf("failed to split input: %w", err)
	}
	stats.Layers = len(pr.Layers)
	o.log.Debug("split print", "layers", stats.Layers)

	p := spiral.New(cfg.Spiral(), spiral.WithLogger(o.log))
	w := bufio.NewWriter(out)

	put := func(code string, last bool) error {
		res, err := p.ProcessLayer(code, last)
		if err != nil {
			return err
		}
		_, err = w.WriteString(res)
		return err
	}

	if err := put(pr.Header, false); err != nil {
		return stats, fmt.Errorf("header: %w", err)
	}

	for idx, layer := range pr.Layers {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		enabled := cfg.SpiralVase && idx >= cfg.BottomLayers
		transition := enabled && cfg.TransitionLayer && idx == cfg.BottomLayers
		if transition && !p.Machine().State.RelativeExtrude {
			o.log.Warn("transition layer needs relative extrusion, skipping it", "layer", idx)
		}
		p.Enable(enabled)
		p.SetTransitionLayer(transition)

		if err := put(layer, idx == len(pr.Layers)-1); err != nil {
			return stats, fmt.Errorf("layer %d: %w", idx, err)
		}
		if enabled {
			stats.Spiralized++
		}
		if o.onLayer != nil {
			o.onLayer(idx+1, len(pr.Layers))
		}
	}

	p.Enable(false)
	if err := put(pr.Footer, false); err != nil {
		return stats, fmt.Errorf("footer: %w", err)
	}

	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("failed to write output: %w", err)
	}
	o.log.Info("processed print", "layers", stats.Layers, "spiralized", stats.Spiralized)
	return stats, nil
}
