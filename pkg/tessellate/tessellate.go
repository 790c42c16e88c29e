// Package tessellate walks a decomposition layout at a given dx and produces
// triangle meshes using a geometry kernel. One mesh is produced per solid.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/cubed/pkg/decomp"
	"github.com/chazu/cubed/pkg/kernel"
)

// ErrEmpty is returned by Assemble when every solid is degenerate.
var ErrEmpty = errors.New("tessellate: nothing to assemble")

// build creates the kernel solid for s at pose p. Solids with a zero or
// negative scaled dimension (dx = 0) have no volume and are skipped.
func build(k kernel.Kernel, s decomp.Solid, p decomp.Pose) (kernel.Solid, bool) {
	size := s.Dimensions.Mul(p.Scale)
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, false
	}
	solid := k.Box(size.X, size.Y, size.Z)

	pos := p.Position
	if pos.X != 0 || pos.Y != 0 || pos.Z != 0 {
		solid = k.Translate(solid, pos.X, pos.Y, pos.Z)
	}
	return solid, true
}

// Tessellate produces one mesh per non-degenerate solid of l posed at dx.
// It is read-only: neither the layout nor any session state is touched.
func Tessellate(cfg decomp.Config, l *decomp.Layout, dx float64, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if l == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, s := range l.Solids() {
		solid, ok := build(k, s, decomp.PoseAt(cfg, s, dx))
		if !ok {
			continue
		}
		mesh, err := k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", s.Name, err)
		}
		mesh.Name = s.Name
		mesh.Color = s.Color
		mesh.Opacity = s.Opacity
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// Assemble unions every non-degenerate solid of l posed at dx into a single
// solid, e.g. for exporting the whole (x+dx)³ cube.
func Assemble(cfg decomp.Config, l *decomp.Layout, dx float64, k kernel.Kernel) (kernel.Solid, error) {
	if l == nil {
		return nil, ErrEmpty
	}
	var acc kernel.Solid
	for _, s := range l.Solids() {
		solid, ok := build(k, s, decomp.PoseAt(cfg, s, dx))
		if !ok {
			continue
		}
		if acc == nil {
			acc = solid
			continue
		}
		acc = k.Union(acc, solid)
	}
	if acc == nil {
		return nil, ErrEmpty
	}
	return acc, nil
}

// Pieces returns the kernel solid of each non-degenerate solid at dx keyed
// by name, for per-piece export.
func Pieces(cfg decomp.Config, l *decomp.Layout, dx float64, k kernel.Kernel) map[string]kernel.Solid {
	out := make(map[string]kernel.Solid, 8)
	if l == nil {
		return out
	}
	for _, s := range l.Solids() {
		if solid, ok := build(k, s, decomp.PoseAt(cfg, s, dx)); ok {
			out[s.Name] = solid
		}
	}
	return out
}
