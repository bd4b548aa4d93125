package pipeline_test

import (
	"strings"
	"testing"

	"github.com/kennylevinsen/gospiral/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func join(pr *pipeline.Print) string {
	return pr.Header + strings.Join(pr.Layers, "") + pr.Footer
}

func TestSplit(t *testing.T) {
	pr, err := pipeline.Split(vase, true)
	require.NoError(t, err)

	assert.Equal(t, "M83\nG28\nG1 Z5 F3000\nG1 X0 Y0\n", pr.Header)
	require.Len(t, pr.Layers, 3)
	assert.True(t, strings.HasPrefix(pr.Layers[0], "G1 Z0.2\n"))
	assert.True(t, strings.HasPrefix(pr.Layers[1], "G1 Z0.4\n"))
	assert.True(t, strings.HasPrefix(pr.Layers[2], "G1 Z0.6\n"))
	assert.Equal(t, "G1 E-1\nG1 Z10\nM84\n", pr.Footer)
	assert.Equal(t, vase, join(pr))
}

func TestSplitZHop(t *testing.T) {
	input := `G1 Z0.2
G1 X10 Y0 E1
G1 Z0.6
G1 X0 Y10
G1 Z0.2
G1 X10 Y10 E1
G1 Z0.8
G1 X0 Y0
G1 Z0.4
G1 X10 Y0 E1
`
	pr, err := pipeline.Split(input, true)
	require.NoError(t, err)

	// The hop inside the first layer comes back down, the one at the layer
	// change does not.
	assert.Equal(t, []string{
		"G1 Z0.2\nG1 X10 Y0 E1\nG1 Z0.6\nG1 X0 Y10\nG1 Z0.2\nG1 X10 Y10 E1\n",
		"G1 Z0.8\nG1 X0 Y0\nG1 Z0.4\nG1 X10 Y0 E1\n",
	}, pr.Layers)
	assert.Equal(t, "", pr.Header)
	assert.Equal(t, "", pr.Footer)
}

func TestSplitAbsoluteExtrusion(t *testing.T) {
	input := "M82\nG92 E0\nG1 Z0.2\nG1 X10 E1\nG1 Z0.4\nG1 X0 E2\nG92 E0\n"
	pr, err := pipeline.Split(input, false)
	require.NoError(t, err)

	assert.Equal(t, "M82\nG92 E0\n", pr.Header)
	assert.Equal(t, []string{"G1 Z0.2\nG1 X10 E1\n", "G1 Z0.4\nG1 X0 E2\n"}, pr.Layers)
	assert.Equal(t, "G92 E0\n", pr.Footer)
}

func TestSplitNothingPrinted(t *testing.T) {
	input := "G28\nG1 Z5\nM84"
	pr, err := pipeline.Split(input, true)
	require.NoError(t, err)

	assert.Equal(t, input, pr.Header)
	assert.Empty(t, pr.Layers)
	assert.Empty(t, pr.Footer)
}

func TestSplitKeepsLineEndings(t *testing.T) {
	input := "M83\r\nG1 Z0.2\r\nG1 X10 E1\r\nG1 Z0.4\r\nG1 X0 E1"
	pr, err := pipeline.Split(input, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"G1 Z0.2\r\nG1 X10 E1\r\n", "G1 Z0.4\r\nG1 X0 E1"}, pr.Layers)
	assert.Equal(t, input, join(pr))
}

func TestSplitError(t *testing.T) {
	_, err := pipeline.Split("G1 X1\nG0 G1 X2\n", true)
	assert.ErrorContains(t, err, "line 2")
}
