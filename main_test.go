package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `M83
G1 Z0.2
G1 X10 Y0 E1
G1 X10 Y10 E1
G1 Z0.4
G1 X10 Y0 E1
G1 X10 Y10 E1
M84
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Flag values stick to the command between runs.
	processCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			require.NoError(t, sv.Replace(nil))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func exitCode(err error) int {
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return 0
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.gcode")
	out := filepath.Join(dir, "out.gcode")
	require.NoError(t, os.WriteFile(in, []byte(sample), 0644))

	_, err := execute(t, "process", "-i", in, "-o", out, "--set", "transition_layer=false")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "G1 Z0.2\nG1 X10 Y0 Z0.3 E1\nG1 X10 Y10 Z0.4 E1\n")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files are left behind")
}

func TestProcessErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.gcode")
	require.NoError(t, os.WriteFile(in, []byte("G0 G1 X1\n"), 0644))

	_, err := execute(t, "process", "-i", in)
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = execute(t, "process", "-i", filepath.Join(dir, "missing.gcode"), "-o", filepath.Join(dir, "out.gcode"))
	assert.Equal(t, exitIO, exitCode(err))

	_, err = execute(t, "process", "-i", in, "-o", filepath.Join(dir, "out.gcode"))
	assert.Equal(t, exitProcess, exitCode(err))
	assert.NoFileExists(t, filepath.Join(dir, "out.gcode"))

	_, err = execute(t, "process", "-i", in, "-o", filepath.Join(dir, "out.gcode"), "--set", "nozzle=0.4")
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gospiral version dev\n", out)
}
