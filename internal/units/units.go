// Package units holds the unit conventions shared by the constitutive code.
//
// Material constants are configured in SI units (Pa, J/m^3, m). Stresses,
// stiffness and hardening moduli are carried in MPa inside the grain table.
package units

const (
	// Mega converts Pa to MPa (divide) and back (multiply).
	Mega = 1.0e6

	// GasConstant in J/(mol K).
	GasConstant = 8.314
)

// ToMPa converts a value given in Pa.
func ToMPa(pa float64) float64 { return pa / Mega }

// ToPa converts a value given in MPa.
func ToPa(mpa float64) float64 { return mpa * Mega }
