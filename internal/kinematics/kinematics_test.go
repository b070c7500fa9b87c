package kinematics

import (
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrystalGradientIdentity(t *testing.T) {
	l := UniaxialTension(1e-2)
	assert.Equal(t, l, CrystalGradient(tensor.Identity(), l))
}

func TestCrystalGradientRotated(t *testing.T) {
	// 90 degrees about z swaps the x and y stretch
	r := tensor.Mat3{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}}
	g := CrystalGradient(r, tensor.Diag(1, 2, 3))
	assert.Equal(t, tensor.Diag(2, 1, 3), g)
}

func TestUpdateAndIntegrateStrain(t *testing.T) {
	tbl := grain.NewTable(3)
	for i := 0; i < 3; i++ {
		tbl.Append(grain.Record{Rotation: tensor.Identity()})
	}

	l := SimpleShear(2e-2)
	Update(tbl, l)
	for i := 0; i < 10; i++ {
		IntegrateStrain(tbl, 0.1)
	}

	for id := range tbl.Len() {
		assert.Equal(t, l, tbl.GradV[id])
		assert.InDelta(t, 1e-2, tbl.D[id].Tensor()[0][1], 1e-15)
		assert.InDelta(t, 1e-2, tbl.D[id].Tensor()[1][0], 1e-15)
		assert.InDelta(t, 1e-2, tbl.Eps[id].Tensor()[0][1], 1e-15)
	}
}

func TestPresets(t *testing.T) {
	l, err := Preset("uniaxial_tension", 1e-2)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, l.Trace(), 1e-18, "isochoric")
	assert.Equal(t, 1e-2, l[0][0])

	c, err := Preset("uniaxial_compression", 1e-2)
	require.NoError(t, err)
	assert.Equal(t, -1e-2, c[0][0])

	_, err = Preset("twist", 1)
	assert.ErrorIs(t, err, ErrUnknownPath)
	assert.Contains(t, PresetNames(), "plane_strain")
}

const trajectoryInput = `# time c0 c1 c2 c3 c4 c5
0.0 1 0 0 -0.5 0 -0.5

1.0 2 0 0 -1 0 -1
2.0 0 1 0 0 0 0
`

func TestTrajectoryStep(t *testing.T) {
	tr, err := LoadTrajectory(strings.NewReader(trajectoryInput), "grad_v.input", Step)
	require.NoError(t, err)
	require.Equal(t, 3, tr.Len())

	l, err := tr.At(0.5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, l[0][0])

	l, err = tr.At(1.0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, l[0][0])

	l, err = tr.At(10)
	require.NoError(t, err)
	assert.Equal(t, 1.0, l[0][1])
	assert.Equal(t, 1.0, l[1][0], "components fill a symmetric gradient")
}

func TestTrajectoryLinear(t *testing.T) {
	tr, err := LoadTrajectory(strings.NewReader(trajectoryInput), "grad_v.input", Linear)
	require.NoError(t, err)

	l, err := tr.At(0.25)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, l[0][0], 1e-12)

	l, err = tr.At(1.5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, l[0][0], 1e-12)
	assert.InDelta(t, 0.5, l[0][1], 1e-12)
}

func TestTrajectoryBeforeFirstWaypoint(t *testing.T) {
	tr, err := NewTrajectory([]Waypoint{{Time: 1, L: tensor.Identity()}}, Linear)
	require.NoError(t, err)
	l, err := tr.At(0)
	require.NoError(t, err)
	assert.Equal(t, tensor.Identity(), l)
}

func TestTrajectoryIsMonotone(t *testing.T) {
	tr, err := LoadTrajectory(strings.NewReader(trajectoryInput), "grad_v.input", Step)
	require.NoError(t, err)

	_, err = tr.At(1.5)
	require.NoError(t, err)
	_, err = tr.At(1.5)
	require.NoError(t, err, "repeating the same time is allowed")
	_, err = tr.At(0.5)
	assert.ErrorIs(t, err, ErrNonMonotonic)
}

func TestLoadTrajectoryErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"short row", "0 1 2 3\n", 1},
		{"bad number", "0 1 0 0 a 0 0\n", 1},
		{"time goes back", "1 0 0 0 0 0 0\n0 0 0 0 0 0 0\n", 2},
		{"empty", "# nothing\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTrajectory(strings.NewReader(tt.input), "grad_v.input", Step)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
			var inErr *InputError
			require.True(t, errors.As(err, &inErr))
			assert.Equal(t, tt.line, inErr.Line)
		})
	}
}

func TestParseInterpolation(t *testing.T) {
	m, err := ParseInterpolation("linear")
	require.NoError(t, err)
	assert.Equal(t, Linear, m)
	m, err = ParseInterpolation("")
	require.NoError(t, err)
	assert.Equal(t, Step, m)
	_, err = ParseInterpolation("cubic")
	assert.Error(t, err)
}
