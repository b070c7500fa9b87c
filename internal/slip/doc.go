// Package slip implements FCC slip geometry and the rate-dependent slip and
// hardening laws.
//
// Geometry is built from 12 canonical (b, n) pairs, each used with both signs
// of b, which gives 24 signed slip systems; system 2k carries b_k and system
// 2k+1 carries -b_k on the same plane. The Schmid tensor of a system is b⊗n.
//
// Stresses and critical resolved shear stresses are in MPa.
package slip
