package grain

import (
	"fmt"

	"github.com/san-kum/polycryst/internal/tensor"
)

// Record is one row of the table. Slices in a Record are owned by the table
// once appended.
type Record struct {
	Rotation  tensor.Mat3
	GradV     tensor.Mat3
	D         tensor.Sym
	De        tensor.Sym
	Din       tensor.Sym
	Eps       tensor.Sym
	Sigma     tensor.Sym
	SigmaRate tensor.Sym
	Stiffness tensor.Mat6

	Burgers *DirectionSet
	Normals *DirectionSet
	Schmid  *SchmidSet

	Tau       SlipVector
	TauC      SlipVector
	TauRate   SlipVector
	TauCRate  SlipVector
	Gamma     SlipVector
	GammaRate SlipVector
	HVector   SlipVector
	HMatrix   SlipMatrix

	GrainSize  float64
	Energy     float64
	EnergyRate float64
	SubGrains  []float64
	DriveForce []float64
	Status     Status

	FacetMobility   float64
	FacetVelocity   float64
	DriveForceCryst float64
}

// Table stores grain state column by column.
type Table struct {
	Rotation  []tensor.Mat3
	GradV     []tensor.Mat3
	D         []tensor.Sym
	De        []tensor.Sym
	Din       []tensor.Sym
	Eps       []tensor.Sym
	Sigma     []tensor.Sym
	SigmaRate []tensor.Sym
	Stiffness []tensor.Mat6

	Burgers []*DirectionSet
	Normals []*DirectionSet
	Schmid  []*SchmidSet

	Tau       []SlipVector
	TauC      []SlipVector
	TauRate   []SlipVector
	TauCRate  []SlipVector
	Gamma     []SlipVector
	GammaRate []SlipVector
	HVector   []SlipVector
	HMatrix   []SlipMatrix

	GrainSize  []float64
	Energy     []float64
	EnergyRate []float64
	SubGrains  [][]float64
	DriveForce [][]float64
	Status     []Status

	FacetMobility   []float64
	FacetVelocity   []float64
	DriveForceCryst []float64

	n int
}

// NewTable returns an empty table with room for capacity grains.
func NewTable(capacity int) *Table {
	if capacity < 0 {
		capacity = 0
	}
	return &Table{
		Rotation:        make([]tensor.Mat3, 0, capacity),
		GradV:           make([]tensor.Mat3, 0, capacity),
		D:               make([]tensor.Sym, 0, capacity),
		De:              make([]tensor.Sym, 0, capacity),
		Din:             make([]tensor.Sym, 0, capacity),
		Eps:             make([]tensor.Sym, 0, capacity),
		Sigma:           make([]tensor.Sym, 0, capacity),
		SigmaRate:       make([]tensor.Sym, 0, capacity),
		Stiffness:       make([]tensor.Mat6, 0, capacity),
		Burgers:         make([]*DirectionSet, 0, capacity),
		Normals:         make([]*DirectionSet, 0, capacity),
		Schmid:          make([]*SchmidSet, 0, capacity),
		Tau:             make([]SlipVector, 0, capacity),
		TauC:            make([]SlipVector, 0, capacity),
		TauRate:         make([]SlipVector, 0, capacity),
		TauCRate:        make([]SlipVector, 0, capacity),
		Gamma:           make([]SlipVector, 0, capacity),
		GammaRate:       make([]SlipVector, 0, capacity),
		HVector:         make([]SlipVector, 0, capacity),
		HMatrix:         make([]SlipMatrix, 0, capacity),
		GrainSize:       make([]float64, 0, capacity),
		Energy:          make([]float64, 0, capacity),
		EnergyRate:      make([]float64, 0, capacity),
		SubGrains:       make([][]float64, 0, capacity),
		DriveForce:      make([][]float64, 0, capacity),
		Status:          make([]Status, 0, capacity),
		FacetMobility:   make([]float64, 0, capacity),
		FacetVelocity:   make([]float64, 0, capacity),
		DriveForceCryst: make([]float64, 0, capacity),
	}
}

// Len is the number of grains.
func (t *Table) Len() int { return t.n }

// Append adds one grain to every column and returns its ID.
func (t *Table) Append(r Record) ID {
	if len(r.DriveForce) != len(r.SubGrains) {
		df := make([]float64, len(r.SubGrains))
		copy(df, r.DriveForce)
		r.DriveForce = df
	}

	t.Rotation = append(t.Rotation, r.Rotation)
	t.GradV = append(t.GradV, r.GradV)
	t.D = append(t.D, r.D)
	t.De = append(t.De, r.De)
	t.Din = append(t.Din, r.Din)
	t.Eps = append(t.Eps, r.Eps)
	t.Sigma = append(t.Sigma, r.Sigma)
	t.SigmaRate = append(t.SigmaRate, r.SigmaRate)
	t.Stiffness = append(t.Stiffness, r.Stiffness)
	t.Burgers = append(t.Burgers, r.Burgers)
	t.Normals = append(t.Normals, r.Normals)
	t.Schmid = append(t.Schmid, r.Schmid)
	t.Tau = append(t.Tau, r.Tau)
	t.TauC = append(t.TauC, r.TauC)
	t.TauRate = append(t.TauRate, r.TauRate)
	t.TauCRate = append(t.TauCRate, r.TauCRate)
	t.Gamma = append(t.Gamma, r.Gamma)
	t.GammaRate = append(t.GammaRate, r.GammaRate)
	t.HVector = append(t.HVector, r.HVector)
	t.HMatrix = append(t.HMatrix, r.HMatrix)
	t.GrainSize = append(t.GrainSize, r.GrainSize)
	t.Energy = append(t.Energy, r.Energy)
	t.EnergyRate = append(t.EnergyRate, r.EnergyRate)
	t.SubGrains = append(t.SubGrains, r.SubGrains)
	t.DriveForce = append(t.DriveForce, r.DriveForce)
	t.Status = append(t.Status, r.Status)
	t.FacetMobility = append(t.FacetMobility, r.FacetMobility)
	t.FacetVelocity = append(t.FacetVelocity, r.FacetVelocity)
	t.DriveForceCryst = append(t.DriveForceCryst, r.DriveForceCryst)

	id := ID(t.n)
	t.n++
	return id
}

// Row returns a copy of one grain. Slice fields are copied too.
func (t *Table) Row(id ID) Record {
	i := int(id)
	return Record{
		Rotation:        t.Rotation[i],
		GradV:           t.GradV[i],
		D:               t.D[i],
		De:              t.De[i],
		Din:             t.Din[i],
		Eps:             t.Eps[i],
		Sigma:           t.Sigma[i],
		SigmaRate:       t.SigmaRate[i],
		Stiffness:       t.Stiffness[i],
		Burgers:         t.Burgers[i],
		Normals:         t.Normals[i],
		Schmid:          t.Schmid[i],
		Tau:             t.Tau[i],
		TauC:            t.TauC[i],
		TauRate:         t.TauRate[i],
		TauCRate:        t.TauCRate[i],
		Gamma:           t.Gamma[i],
		GammaRate:       t.GammaRate[i],
		HVector:         t.HVector[i],
		HMatrix:         t.HMatrix[i],
		GrainSize:       t.GrainSize[i],
		Energy:          t.Energy[i],
		EnergyRate:      t.EnergyRate[i],
		SubGrains:       append([]float64(nil), t.SubGrains[i]...),
		DriveForce:      append([]float64(nil), t.DriveForce[i]...),
		Status:          t.Status[i],
		FacetMobility:   t.FacetMobility[i],
		FacetVelocity:   t.FacetVelocity[i],
		DriveForceCryst: t.DriveForceCryst[i],
	}
}

// Contains reports whether id addresses a grain of t.
func (t *Table) Contains(id ID) bool { return id >= 0 && int(id) < t.n }

func (t *Table) columnLens() []struct {
	name string
	n    int
} {
	return []struct {
		name string
		n    int
	}{
		{"Rotation", len(t.Rotation)},
		{"GradV", len(t.GradV)},
		{"D", len(t.D)},
		{"De", len(t.De)},
		{"Din", len(t.Din)},
		{"Eps", len(t.Eps)},
		{"Sigma", len(t.Sigma)},
		{"SigmaRate", len(t.SigmaRate)},
		{"Stiffness", len(t.Stiffness)},
		{"Burgers", len(t.Burgers)},
		{"Normals", len(t.Normals)},
		{"Schmid", len(t.Schmid)},
		{"Tau", len(t.Tau)},
		{"TauC", len(t.TauC)},
		{"TauRate", len(t.TauRate)},
		{"TauCRate", len(t.TauCRate)},
		{"Gamma", len(t.Gamma)},
		{"GammaRate", len(t.GammaRate)},
		{"HVector", len(t.HVector)},
		{"HMatrix", len(t.HMatrix)},
		{"GrainSize", len(t.GrainSize)},
		{"Energy", len(t.Energy)},
		{"EnergyRate", len(t.EnergyRate)},
		{"SubGrains", len(t.SubGrains)},
		{"DriveForce", len(t.DriveForce)},
		{"Status", len(t.Status)},
		{"FacetMobility", len(t.FacetMobility)},
		{"FacetVelocity", len(t.FacetVelocity)},
		{"DriveForceCryst", len(t.DriveForceCryst)},
	}
}

// Validate checks that every column holds exactly Len rows and that the
// subgrain and driving force lists of each grain line up.
func (t *Table) Validate() error {
	for _, c := range t.columnLens() {
		if c.n != t.n {
			return &ColumnError{Column: c.name, Len: c.n, Want: t.n}
		}
	}
	for i := range t.SubGrains {
		if len(t.DriveForce[i]) != len(t.SubGrains[i]) {
			return &ColumnError{Column: "DriveForce", Len: len(t.DriveForce[i]), Want: len(t.SubGrains[i])}
		}
		if t.Schmid[i] == nil || t.Burgers[i] == nil || t.Normals[i] == nil {
			return fmt.Errorf("%w: grain %d has no slip geometry", ErrInconsistent, i)
		}
	}
	return nil
}
