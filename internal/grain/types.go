package grain

import "github.com/san-kum/polycryst/internal/tensor"

// NumSlipSystems is the number of signed FCC slip systems per grain.
const NumSlipSystems = 24

// ID is a dense, stable index into a Table.
type ID int

type SlipVector [NumSlipSystems]float64

type SlipMatrix [NumSlipSystems][NumSlipSystems]float64

type DirectionSet [NumSlipSystems]tensor.Vec3

type SchmidSet [NumSlipSystems]tensor.Mat3

// Status is the recrystallization state of a grain.
type Status int

const (
	Deformed Status = iota
	Recrystallized
)

func (s Status) String() string {
	switch s {
	case Deformed:
		return "deformed"
	case Recrystallized:
		return "recrystallized"
	default:
		return "unknown"
	}
}
