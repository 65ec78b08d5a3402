// Package tessellate walks an assembly design and produces triangle meshes
// using a geometry kernel. One mesh is produced per placed part instance, at
// its rest pose.
package tessellate

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Sudip13/TinkerVR/pkg/assembly"
	"github.com/Sudip13/TinkerVR/pkg/kernel"
)

// Tessellate produces one mesh per placed part instance, positioned at the
// instance's rest pose in world space. The tessellator is read-only and never
// mutates the design.
func Tessellate(d *assembly.Design, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if d == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, root := range d.Roots {
		collected, err := walkAssembly(d, k, root, mgl64.Vec3{})
		if err != nil {
			return nil, fmt.Errorf("tessellate: %w", err)
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// walkAssembly recurses through an assembly, accumulating parent translation.
func walkAssembly(d *assembly.Design, k kernel.Kernel, a *assembly.AssemblySpec, origin mgl64.Vec3) ([]*kernel.Mesh, error) {
	base := origin.Add(a.At)

	var meshes []*kernel.Mesh
	for _, sub := range a.Assemblies {
		collected, err := walkAssembly(d, k, sub, base)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	for _, p := range a.Places {
		mesh, err := meshPlace(d, k, p, base)
		if err != nil {
			return nil, fmt.Errorf("assembly %q: %w", a.Name, err)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// meshPlace creates world-positioned geometry for one placed instance.
func meshPlace(d *assembly.Design, k kernel.Kernel, p *assembly.PlaceSpec, base mgl64.Vec3) (*kernel.Mesh, error) {
	solid, err := Solidify(d.Part(p.Part), k)
	if err != nil {
		return nil, fmt.Errorf("instance %q: %w", p.Name(), err)
	}

	// Rotation about the part center first, then placement.
	if p.Rotate != (mgl64.Vec3{}) {
		solid = k.Rotate(solid, p.Rotate.X(), p.Rotate.Y(), p.Rotate.Z())
	}
	pos := base.Add(p.At)
	if pos != (mgl64.Vec3{}) {
		solid = k.Translate(solid, pos.X(), pos.Y(), pos.Z())
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("instance %q: ToMesh: %w", p.Name(), err)
	}
	mesh.PartName = p.Name()
	return mesh, nil
}

// Solidify builds the kernel solid for a part definition, centered at the
// origin.
func Solidify(p *assembly.PartSpec, k kernel.Kernel) (kernel.Solid, error) {
	if p == nil {
		return nil, fmt.Errorf("nil part")
	}
	switch p.Kind {
	case assembly.PrimBox:
		return k.Box(p.Size.X(), p.Size.Y(), p.Size.Z()), nil
	case assembly.PrimCylinder:
		return k.Cylinder(p.Height, p.Radius), nil
	default:
		return nil, fmt.Errorf("part %q has unsupported kind %v", p.Name, p.Kind)
	}
}

// offsetScale sizes derived explode offsets relative to the part's largest
// bounding box extent, clearing neighbouring parts without flying off screen.
const offsetScale = 1.5

// DefaultOffset derives an explode offset for a part that does not declare
// one: straight up along Z by 1.5x the part's largest extent.
func DefaultOffset(p *assembly.PartSpec, k kernel.Kernel) (mgl64.Vec3, error) {
	solid, err := Solidify(p, k)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	ext := kernel.Extent(solid)
	largest := ext[0]
	for _, e := range ext[1:] {
		if e > largest {
			largest = e
		}
	}
	return mgl64.Vec3{0, 0, largest * offsetScale}, nil
}
