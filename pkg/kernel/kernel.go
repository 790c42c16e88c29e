// Package kernel defines the abstract geometry kernel used to turn
// decomposition solids into drawable meshes. Implementations wrap a solid
// modeling library behind this interface so renderers and exporters never
// depend on it directly.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box creates an axis-aligned box of the given size centered at the origin.
	Box(x, y, z float64) Solid

	// Union joins two solids.
	Union(a, b Solid) Solid

	// Translate moves a solid by (x, y, z).
	Translate(s Solid, x, y, z float64) Solid

	// ToMesh tessellates a solid into triangles.
	ToMesh(s Solid) (*Mesh, error)

	// ExportSTL tessellates a solid and writes it as binary STL to path.
	ExportSTL(s Solid, path string) error
}
