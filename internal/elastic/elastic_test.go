package elastic

import (
	"testing"

	"github.com/san-kum/polycryst/internal/grain"
	"github.com/san-kum/polycryst/internal/slip"
	"github.com/san-kum/polycryst/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var copper = Constants{C11: 168.4e9, C12: 121.4e9, C44: 75.4e9, Koef: 1}

func TestCubicStiffness(t *testing.T) {
	c := CubicStiffness(copper)

	assert.InDelta(t, 168400.0, c[0][0], 1e-9)
	assert.InDelta(t, 121400.0, c[0][1], 1e-9)
	assert.InDelta(t, 121400.0, c[2][1], 1e-9)
	assert.InDelta(t, 75400.0, c[3][3], 1e-9)
	assert.InDelta(t, 75400.0, c[5][5], 1e-9)
	assert.Zero(t, c[0][3])
	assert.Zero(t, c[3][4])

	half := CubicStiffness(Constants{C11: copper.C11, C12: copper.C12, C44: copper.C44, Koef: 0.5})
	assert.InDelta(t, c[0][0]/2, half[0][0], 1e-9)
}

func TestValidateStiffness(t *testing.T) {
	_, err := NewStiffness(copper)
	require.NoError(t, err)

	_, err = NewStiffness(Constants{C11: 100e9, C12: 150e9, C44: 50e9, Koef: 1})
	assert.ErrorIs(t, err, ErrNotPositiveDefinite)

	_, err = NewStiffness(Constants{C11: 100e9, C12: 50e9, C44: -1e9, Koef: 1})
	assert.ErrorIs(t, err, ErrNotPositiveDefinite)
}

func TestHydrostaticResponse(t *testing.T) {
	c := CubicStiffness(copper)
	d := tensor.SymFromTensor(tensor.Identity().Scale(1e-3))

	_, rate := StressRate(c, d, tensor.Sym{})
	bulk := (168400.0 + 2*121400.0) * 1e-3
	s := rate.Tensor()
	assert.InDelta(t, bulk, s[0][0], 1e-9)
	assert.InDelta(t, bulk, s[1][1], 1e-9)
	assert.InDelta(t, 0.0, s[0][1], 1e-12)
}

func TestShearResponse(t *testing.T) {
	d := tensor.SymFromTensor(tensor.Mat3{{0, 1e-3, 0}, {1e-3, 0, 0}, {0, 0, 0}})

	tests := []struct {
		shear ShearConvention
		want  float64
	}{
		{ShearC44, 75400.0 * 1e-3},
		// tensor shear 1e-3 is engineering shear 2e-3
		{ShearDoubledC44, 75400.0 * 2e-3},
	}
	for _, tt := range tests {
		t.Run(tt.shear.String(), func(t *testing.T) {
			c := copper
			c.Shear = tt.shear
			_, rate := StressRate(CubicStiffness(c), d, tensor.Sym{})
			assert.InDelta(t, tt.want, rate.Tensor()[0][1], 1e-9)
			assert.InDelta(t, tt.want, rate.Tensor()[1][0], 1e-9)
		})
	}
}

func TestParseShearConvention(t *testing.T) {
	for _, s := range []string{"", "c44", "2c44"} {
		c, err := ParseShearConvention(s)
		require.NoError(t, err)
		if s != "" {
			assert.Equal(t, s, c.String())
		}
	}
	def, _ := ParseShearConvention("")
	assert.Equal(t, ShearC44, def)
	assert.Equal(t, 1.0, def.Factor())
	assert.Equal(t, 2.0, ShearDoubledC44.Factor())

	_, err := ParseShearConvention("engineering")
	assert.ErrorIs(t, err, ErrUnknownShear)
}

func TestPlasticRateAndSplit(t *testing.T) {
	g := slip.DefaultFCC()
	var gammaRate grain.SlipVector
	gammaRate[0] = 1e-3

	din := PlasticRate(&g.Schmid, gammaRate)
	want := g.Schmid[0].SymPart().Scale(1e-3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, want[i][j], din.Tensor()[i][j], 1e-15)
		}
	}
	assert.InDelta(t, 0.0, din.Tensor().Trace(), 1e-15, "slip is isochoric")

	de, _ := StressRate(CubicStiffness(copper), din, din)
	assert.Equal(t, tensor.Vec6{}, de.Vector())

	assert.Equal(t, tensor.Sym{}, PlasticRate(&g.Schmid, grain.SlipVector{}))
}

func TestTablePhasesElastic(t *testing.T) {
	g := slip.DefaultFCC()
	c := CubicStiffness(copper)

	tbl := grain.NewTable(1)
	tbl.Append(grain.Record{
		Rotation:  tensor.Identity(),
		Stiffness: c,
		Burgers:   &g.Burgers,
		Normals:   &g.Normals,
		Schmid:    &g.Schmid,
		D:         tensor.SymFromTensor(tensor.Diag(1e-3, 0, 0)),
	})

	UpdatePlasticRate(tbl)
	UpdateStressRate(tbl)
	IntegrateStress(tbl, 2)

	assert.Equal(t, tbl.D[0], tbl.De[0])
	assert.InDelta(t, 168400.0*1e-3*2, tbl.Sigma[0].Tensor()[0][0], 1e-9)
	assert.InDelta(t, 121400.0*1e-3*2, tbl.Sigma[0].Tensor()[1][1], 1e-9)
}
