// Package mesh provides the minimal solid geometry needed to assemble an
// actuator: rigid transforms, triangulated cylinders, merged assemblies with
// per-face provenance, bounding boxes, convex hull area and pairwise
// collision detection.
//
// It is not a general CAD kernel. Solids are cylinders placed by a
// [Transform]; collisions are exact for cylinders with parallel axes, which
// is every solid the gear chain emits.
//
// # Example
//
//	at := mesh.Translation(0, 0, 5).Mul(mesh.RotationZ(math.Pi / 4))
//	s := mesh.NewCylinder(10, 4, at)
//	asm := mesh.Merge([]*mesh.Solid{s}, nil)
//	fmt.Println(asm.Extents())
package mesh
