// Package kernel defines the abstract geometry kernel interface used to turn
// part definitions into render meshes. The abstraction allows swapping
// backends without changing the rest of the system.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives. Solids are centered at the origin so that part rotation
	// and grab scaling pivot around the part center.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Extent returns the edge lengths of a solid's bounding box.
func Extent(s Solid) [3]float64 {
	min, max := s.BoundingBox()
	return [3]float64{max[0] - min[0], max[1] - min[1], max[2] - min[2]}
}
