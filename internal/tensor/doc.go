// Package tensor provides the small fixed-size linear algebra used on the
// per-grain hot path.
//
//   - [Vec3], [Mat3]: vectors and second-order tensors in 3D
//   - [Vec6], [Mat6]: Voigt vectors and fourth-order tensors in matrix form
//   - [Sym]: a symmetric tensor kept together with its Voigt vector
//
// All types are plain arrays, so values are copied on assignment and never
// allocate. Voigt order is (11, 22, 33, 23, 13, 12) and shear components are
// stored as true tensor components, not doubled engineering strains.
package tensor
