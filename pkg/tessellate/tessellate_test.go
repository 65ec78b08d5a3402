package tessellate_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Sudip13/TinkerVR/pkg/assembly"
	"github.com/Sudip13/TinkerVR/pkg/kernel"
	"github.com/Sudip13/TinkerVR/pkg/tessellate"
)

// fakeSolid tracks the transforms applied to it so tests can assert on
// placement math without meshing real geometry.
type fakeSolid struct {
	minBB, maxBB [3]float64
	pos          mgl64.Vec3
	rot          mgl64.Vec3
}

func (s *fakeSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// fakeKernel implements kernel.Kernel with bookkeeping solids.
type fakeKernel struct{}

func (k *fakeKernel) Box(x, y, z float64) kernel.Solid {
	return &fakeSolid{
		minBB: [3]float64{-x / 2, -y / 2, -z / 2},
		maxBB: [3]float64{x / 2, y / 2, z / 2},
	}
}

func (k *fakeKernel) Cylinder(height, radius float64) kernel.Solid {
	return &fakeSolid{
		minBB: [3]float64{-radius, -radius, -height / 2},
		maxBB: [3]float64{radius, radius, height / 2},
	}
}

func (k *fakeKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	fs := s.(*fakeSolid)
	moved := *fs
	moved.pos = fs.pos.Add(mgl64.Vec3{x, y, z})
	return &moved
}

func (k *fakeKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	fs := s.(*fakeSolid)
	turned := *fs
	turned.rot = fs.rot.Add(mgl64.Vec3{x, y, z})
	return &turned
}

func (k *fakeKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	fs := s.(*fakeSolid)
	// One degenerate triangle at the solid position, enough to be non-empty.
	p := fs.pos
	return &kernel.Mesh{
		Vertices: []float32{
			float32(p.X()), float32(p.Y()), float32(p.Z()),
			float32(p.X()), float32(p.Y()), float32(p.Z()),
			float32(p.X()), float32(p.Y()), float32(p.Z()),
		},
		Normals: []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices: []uint32{0, 1, 2},
	}, nil
}

func testDesign() *assembly.Design {
	d := assembly.NewDesign()
	d.AddPart(&assembly.PartSpec{Name: "plate", Kind: assembly.PrimBox, Size: mgl64.Vec3{100, 100, 10}})
	d.AddPart(&assembly.PartSpec{Name: "pin", Kind: assembly.PrimCylinder, Height: 40, Radius: 4})
	d.AddRoot(&assembly.AssemblySpec{
		Name: "base",
		At:   mgl64.Vec3{0, 0, 5},
		Places: []*assembly.PlaceSpec{
			{Part: "plate"},
			{Part: "pin", As: "pin-1", At: mgl64.Vec3{20, 20, 0}},
		},
		Assemblies: []*assembly.AssemblySpec{
			{
				Name:   "tower",
				At:     mgl64.Vec3{0, 0, 60},
				Places: []*assembly.PlaceSpec{{Part: "pin", As: "pin-2"}},
			},
		},
	})
	return d
}

func TestTessellateOneMeshPerInstance(t *testing.T) {
	meshes, err := tessellate.Tessellate(testDesign(), &fakeKernel{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 3 {
		t.Fatalf("expected 3 meshes, got %d", len(meshes))
	}
	names := map[string]bool{}
	for _, m := range meshes {
		if m.IsEmpty() {
			t.Errorf("mesh %q is empty", m.PartName)
		}
		names[m.PartName] = true
	}
	for _, want := range []string{"plate", "pin-1", "pin-2"} {
		if !names[want] {
			t.Errorf("missing mesh for instance %q", want)
		}
	}
}

func TestTessellateAccumulatesAssemblyTranslation(t *testing.T) {
	meshes, err := tessellate.Tessellate(testDesign(), &fakeKernel{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	byName := map[string]*kernel.Mesh{}
	for _, m := range meshes {
		byName[m.PartName] = m
	}

	// pin-1 sits at base(0,0,5) + place(20,20,0).
	v := byName["pin-1"].Vertices
	if v[0] != 20 || v[1] != 20 || v[2] != 5 {
		t.Errorf("pin-1 position = (%v,%v,%v), want (20,20,5)", v[0], v[1], v[2])
	}
	// pin-2 sits at base(0,0,5) + tower(0,0,60).
	v = byName["pin-2"].Vertices
	if v[0] != 0 || v[1] != 0 || v[2] != 65 {
		t.Errorf("pin-2 position = (%v,%v,%v), want (0,0,65)", v[0], v[1], v[2])
	}
}

func TestTessellateNilDesign(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil, &fakeKernel{})
	if err != nil {
		t.Fatalf("Tessellate(nil) error: %v", err)
	}
	if meshes != nil {
		t.Errorf("expected nil meshes for nil design, got %d", len(meshes))
	}
}

func TestTessellateUnknownPartFails(t *testing.T) {
	d := assembly.NewDesign()
	d.AddRoot(&assembly.AssemblySpec{
		Name:   "a",
		Places: []*assembly.PlaceSpec{{Part: "ghost"}},
	})
	if _, err := tessellate.Tessellate(d, &fakeKernel{}); err == nil {
		t.Fatal("expected error for unknown part")
	}
}

func TestDefaultOffsetUsesLargestExtent(t *testing.T) {
	p := &assembly.PartSpec{Name: "plank", Kind: assembly.PrimBox, Size: mgl64.Vec3{200, 20, 10}}
	off, err := tessellate.DefaultOffset(p, &fakeKernel{})
	if err != nil {
		t.Fatalf("DefaultOffset failed: %v", err)
	}
	want := mgl64.Vec3{0, 0, 300} // 200 * 1.5, straight up
	if off != want {
		t.Errorf("offset = %v, want %v", off, want)
	}
}
