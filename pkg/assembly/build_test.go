package assembly

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func sampleDesign() *Design {
	d := NewDesign()
	d.AddPart(&PartSpec{Name: "plate", Kind: PrimBox, Size: mgl64.Vec3{100, 100, 10}})
	d.AddPart(&PartSpec{Name: "pin", Kind: PrimCylinder, Height: 40, Radius: 4})
	off := mgl64.Vec3{0, 0, 80}
	d.AddRoot(&AssemblySpec{
		Name:   "base",
		Group:  "G1",
		At:     mgl64.Vec3{0, 0, 5},
		Offset: mgl64.Vec3{0, 0, 30},
		Places: []*PlaceSpec{
			{Part: "plate"},
			{Part: "pin", As: "pin-1", At: mgl64.Vec3{20, 20, 0}, Offset: &off, Grab: true, Layer: 2},
			{Part: "pin", As: "pin-2", At: mgl64.Vec3{-20, 20, 0}, Grab: true},
		},
	})
	return d
}

func TestBuildTreeShape(t *testing.T) {
	res, err := Build(sampleDesign(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(res.Roots))
	}
	root := res.Roots[0]
	if root.Name() != "base" || root.Group() != "G1" {
		t.Errorf("root = %s/%s, want base/G1", root.Name(), root.Group())
	}
	if got := root.Transform().LocalPosition(); got != (mgl64.Vec3{0, 0, 5}) {
		t.Errorf("root rest position = %v", got)
	}
	if n := len(root.Children()); n != 3 {
		t.Fatalf("expected 3 children, got %d", n)
	}
	// Children inherit the root's group at attach time.
	for _, c := range root.Children() {
		if c.Group() != "G1" {
			t.Errorf("child %s group = %q, want G1", c.Name(), c.Group())
		}
	}
}

func TestBuildGrabDesignations(t *testing.T) {
	res, err := Build(sampleDesign(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Grabs) != 2 {
		t.Fatalf("expected 2 grab designations, got %d", len(res.Grabs))
	}
	byName := map[string]int{}
	for _, g := range res.Grabs {
		byName[g.Node.Name()] = g.Layer
	}
	if byName["pin-1"] != 2 {
		t.Errorf("pin-1 layer = %d, want 2", byName["pin-1"])
	}
	// Unset layer defaults to 1.
	if byName["pin-2"] != 1 {
		t.Errorf("pin-2 layer = %d, want 1", byName["pin-2"])
	}
}

func TestBuildOffsets(t *testing.T) {
	res, err := Build(sampleDesign(), BuildOptions{
		DefaultOffset: func(p *PartSpec) mgl64.Vec3 {
			return mgl64.Vec3{0, 0, p.Size.Z() * 2}
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	root := res.Roots[0]
	var plate, pin1 *Node
	for _, c := range root.Children() {
		switch c.Name() {
		case "plate":
			plate = c
		case "pin-1":
			pin1 = c
		}
	}
	if got := plate.Offsets(); got != (mgl64.Vec3{0, 0, 20}) {
		t.Errorf("plate default offset = %v, want (0,0,20)", got)
	}
	if got := pin1.Offsets(); got != (mgl64.Vec3{0, 0, 80}) {
		t.Errorf("pin-1 explicit offset = %v, want (0,0,80)", got)
	}
}

func TestBuildRotationDegrees(t *testing.T) {
	d := NewDesign()
	d.AddPart(&PartSpec{Name: "bar", Kind: PrimBox, Size: mgl64.Vec3{10, 10, 50}})
	d.AddRoot(&AssemblySpec{
		Name:   "a",
		Places: []*PlaceSpec{{Part: "bar", Rotate: mgl64.Vec3{90, 0, 0}}},
	})
	res, err := Build(d, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	q := res.Roots[0].Children()[0].Transform().LocalRotation()
	got := q.Rotate(mgl64.Vec3{0, 0, 1})
	want := mgl64.Vec3{0, -1, 0}
	if got.Sub(want).Len() > 1e-9 {
		t.Errorf("rotated Z axis = %v, want %v", got, want)
	}
}

func TestValidateRejectsUnknownPart(t *testing.T) {
	d := NewDesign()
	d.AddRoot(&AssemblySpec{Name: "a", Places: []*PlaceSpec{{Part: "ghost"}}})
	if _, err := Build(d, BuildOptions{}); err == nil {
		t.Fatal("expected error for unknown part reference")
	}
}

func TestValidateRejectsDuplicateInstance(t *testing.T) {
	d := NewDesign()
	d.AddPart(&PartSpec{Name: "pin", Kind: PrimCylinder, Height: 10, Radius: 1})
	d.AddRoot(&AssemblySpec{
		Name:   "a",
		Places: []*PlaceSpec{{Part: "pin"}, {Part: "pin"}},
	})
	if _, err := Build(d, BuildOptions{}); err == nil {
		t.Fatal("expected error for duplicate instance name")
	}
}
