package assembly

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// PrimitiveKind distinguishes part shapes.
type PrimitiveKind int

const (
	PrimBox PrimitiveKind = iota
	PrimCylinder
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBox:
		return "box"
	case PrimCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// PartSpec is a reusable part definition created by the (defpart ...) form.
type PartSpec struct {
	Name string        `json:"name"`
	Kind PrimitiveKind `json:"kind"`
	// Size is the box edge lengths; unused for cylinders.
	Size mgl64.Vec3 `json:"size"`
	// Height and Radius describe cylinders; unused for boxes.
	Height float64 `json:"height"`
	Radius float64 `json:"radius"`
}

// PlaceSpec is one placed instance of a part inside an assembly, created by
// the (place ...) form.
type PlaceSpec struct {
	Part string `json:"part"` // defpart name
	// As names the instance; defaults to the part name. Instance names must
	// be unique across the design.
	As string `json:"as,omitempty"`
	// At is the rest position relative to the owning assembly.
	At mgl64.Vec3 `json:"at"`
	// Rotate is the rest rotation as Euler angles in degrees.
	Rotate mgl64.Vec3 `json:"rotate"`
	// Offset is the per-axis explode offset in the part's local frame.
	// Nil means "derive a default from the part's extent".
	Offset *mgl64.Vec3 `json:"offset,omitempty"`
	// Grab marks the instance as a grab-capable leaf.
	Grab bool `json:"grab"`
	// Layer is the group layer at which the instance becomes grabbable.
	Layer int `json:"layer"`
}

// Name returns the effective instance name.
func (p *PlaceSpec) Name() string {
	if p.As != "" {
		return p.As
	}
	return p.Part
}

// AssemblySpec is a (sub-)assembly: a named group of placed parts and
// nested assemblies, created by the (assembly ...) form.
type AssemblySpec struct {
	Name  string `json:"name"`
	Group string `json:"group,omitempty"`
	// At is the assembly's rest position relative to its parent.
	At mgl64.Vec3 `json:"at"`
	// Offset is the assembly root's own explode offset.
	Offset mgl64.Vec3 `json:"offset"`
	// Places are the directly placed part instances, in source order.
	Places []*PlaceSpec `json:"places,omitempty"`
	// Assemblies are the nested sub-assemblies, in source order.
	Assemblies []*AssemblySpec `json:"assemblies,omitempty"`
}

// Design is the complete evaluated output of a definition script: the part
// bank plus the assembly tree roots.
type Design struct {
	Parts map[string]*PartSpec `json:"parts"`
	Roots []*AssemblySpec      `json:"roots"`
}

// NewDesign returns an empty design.
func NewDesign() *Design {
	return &Design{Parts: make(map[string]*PartSpec)}
}

// AddPart registers a part definition. Redefining a name is an error.
func (d *Design) AddPart(p *PartSpec) error {
	if _, exists := d.Parts[p.Name]; exists {
		return fmt.Errorf("part %q already defined", p.Name)
	}
	d.Parts[p.Name] = p
	return nil
}

// Part returns the part definition with the given name, or nil.
func (d *Design) Part(name string) *PartSpec {
	return d.Parts[name]
}

// AddRoot registers a top-level assembly.
func (d *Design) AddRoot(a *AssemblySpec) {
	d.Roots = append(d.Roots, a)
}

// RemoveRoot unregisters an assembly that became a child of another one.
func (d *Design) RemoveRoot(a *AssemblySpec) {
	for i, r := range d.Roots {
		if r == a {
			d.Roots = append(d.Roots[:i], d.Roots[i+1:]...)
			return
		}
	}
}

// Validate checks referential integrity: every placed part must be defined
// and instance names must be unique across the whole design.
func (d *Design) Validate() error {
	seen := make(map[string]bool)
	var check func(a *AssemblySpec) error
	check = func(a *AssemblySpec) error {
		if seen[a.Name] {
			return fmt.Errorf("duplicate assembly name %q", a.Name)
		}
		seen[a.Name] = true
		for _, p := range a.Places {
			if d.Part(p.Part) == nil {
				return fmt.Errorf("assembly %q places unknown part %q", a.Name, p.Part)
			}
			if seen[p.Name()] {
				return fmt.Errorf("duplicate instance name %q in assembly %q", p.Name(), a.Name)
			}
			seen[p.Name()] = true
		}
		for _, sub := range a.Assemblies {
			if err := check(sub); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range d.Roots {
		if err := check(r); err != nil {
			return err
		}
	}
	return nil
}
