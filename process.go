package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/kennylevinsen/gospiral/config"
	"github.com/kennylevinsen/gospiral/internal/logging"
	"github.com/kennylevinsen/gospiral/pipeline"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Spiralize a G-code file",
	Long: `Reads a sliced print, keeps the bottom layers as they are and turns every
later layer into a part of one continuous spiral.`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringP("input", "i", "", "G-code file to process")
	processCmd.Flags().StringP("output", "o", "", "Location to write processed G-code")
	processCmd.Flags().StringP("config", "c", "", "YAML file with settings")
	processCmd.Flags().StringArray("set", nil, "Override a setting, as key=value")
	processCmd.Flags().Bool("stdout", false, "Output to stdout")
	processCmd.Flags().Bool("progress", false, "Show layer progress on stderr")
	processCmd.Flags().BoolP("verbose", "v", false, "Log every layer")
}

func runProcess(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	inputFile, _ := flags.GetString("input")
	outputFile, _ := flags.GetString("output")
	configFile, _ := flags.GetString("config")
	overrides, _ := flags.GetStringArray("set")
	dumpStdout, _ := flags.GetBool("stdout")
	showProgress, _ := flags.GetBool("progress")
	verbose, _ := flags.GetBool("verbose")

	if inputFile == "" {
		return fail(exitUsage, "no file provided")
	}
	if outputFile == "" && !dumpStdout {
		return fail(exitUsage, "no output location provided")
	}

	cfg, err := config.Load(configFile, overrides)
	if err != nil {
		return fail(exitUsage, "%w", err)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := logging.New(level)

	in, err := os.Open(inputFile)
	if err != nil {
		return fail(exitIO, "could not open file: %w", err)
	}
	defer in.Close()

	ctx, stop := registerSignals(cmd.Context())
	defer stop()

	opts := []pipeline.Option{pipeline.WithLogger(log)}
	var bar *pb.ProgressBar
	if showProgress {
		opts = append(opts, pipeline.OnLayer(func(done, total int) {
			if bar == nil {
				bar = pb.New(total)
				bar.Output = os.Stderr
				bar.Format("[=> ]")
				bar.Start()
			}
			bar.Increment()
		}))
	}

	startTime := time.Now()
	var output bytes.Buffer
	stats, err := pipeline.Run(ctx, cfg, in, &output, opts...)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fail(exitProcess, "processing failed: %w", err)
	}

	if dumpStdout {
		if _, err := cmd.OutOrStdout().Write(output.Bytes()); err != nil {
			return fail(exitIO, "could not write to stdout: %w", err)
		}
	}
	if outputFile != "" {
		if err := writeFile(outputFile, output.Bytes()); err != nil {
			return fail(exitIO, "could not write to file: %w", err)
		}
	}

	log.Info("done",
		"layers", stats.Layers,
		"spiralized", stats.Spiralized,
		"elapsed", time.Since(startTime))
	return nil
}

// writeFile replaces path in one step, so readers never see partial output.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
