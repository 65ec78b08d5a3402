package assembly

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Sudip13/TinkerVR/pkg/pose"
)

// GrabDesignation names a built node that the design marks grab-capable,
// together with the group layer at which grabbing should unlock.
type GrabDesignation struct {
	Node  *Node
	Layer int
}

// BuildOptions tune tree construction from a design.
type BuildOptions struct {
	// Speed is the explode/implode travel speed for every node.
	// Zero means DefaultMoveSpeed.
	Speed float64
	// DefaultOffset supplies an explode offset for placements that do not
	// set one. Nil leaves such placements with zero offsets.
	DefaultOffset func(p *PartSpec) mgl64.Vec3
	// NewTransform constructs the backing transform for a node at the given
	// rest pose. Nil uses pose.NewBasicTransform.
	NewTransform func(rest pose.Pose) pose.Transform
}

// BuildResult is the runtime tree instantiated from a design.
type BuildResult struct {
	Roots []*Node
	Grabs []GrabDesignation
}

// Build instantiates the runtime node tree described by a design. Positions
// in the design are parent-relative; the built transforms hold them as local
// poses the same way.
func Build(d *Design, opts BuildOptions) (*BuildResult, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("building design: %w", err)
	}
	speed := opts.Speed
	if speed <= 0 {
		speed = DefaultMoveSpeed
	}
	newTransform := opts.NewTransform
	if newTransform == nil {
		newTransform = func(rest pose.Pose) pose.Transform {
			tr := pose.NewBasicTransform(rest.Pos)
			pose.Apply(tr, rest)
			return tr
		}
	}

	res := &BuildResult{}
	var buildAssembly func(a *AssemblySpec) *Node
	buildAssembly = func(a *AssemblySpec) *Node {
		rest := pose.Identity()
		rest.Pos = a.At
		n := NewNode(a.Name, a.Group, newTransform(rest))
		n.SetOffsets(a.Offset)
		n.SetSpeed(speed)
		for _, sub := range a.Assemblies {
			n.AddChild(buildAssembly(sub))
		}
		for _, p := range a.Places {
			child := buildPlace(d, p, opts, newTransform)
			child.SetSpeed(speed)
			n.AddChild(child)
			if p.Grab {
				layer := p.Layer
				if layer <= 0 {
					layer = 1
				}
				res.Grabs = append(res.Grabs, GrabDesignation{Node: child, Layer: layer})
			}
		}
		return n
	}
	for _, r := range d.Roots {
		res.Roots = append(res.Roots, buildAssembly(r))
	}
	return res, nil
}

func buildPlace(d *Design, p *PlaceSpec, opts BuildOptions, newTransform func(pose.Pose) pose.Transform) *Node {
	rest := pose.Identity()
	rest.Pos = p.At
	rest.Rot = eulerDegrees(p.Rotate)
	n := NewNode(p.Name(), "", newTransform(rest))
	switch {
	case p.Offset != nil:
		n.SetOffsets(*p.Offset)
	case opts.DefaultOffset != nil:
		n.SetOffsets(opts.DefaultOffset(d.Part(p.Part)))
	}
	return n
}

// eulerDegrees converts XYZ Euler angles in degrees to a quaternion.
func eulerDegrees(deg mgl64.Vec3) mgl64.Quat {
	const rad = math.Pi / 180
	return mgl64.AnglesToQuat(deg.X()*rad, deg.Y()*rad, deg.Z()*rad, mgl64.XYZ)
}
