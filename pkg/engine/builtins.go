package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Sudip13/TinkerVR/pkg/assembly"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms definition source before passing it to zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal).
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. ; line comments become // comments, which is what zygomys parses.
//
// Both transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPrim wraps a primitive shape produced by `box` or `cylinder` so it can
// be consumed by `defpart`.
type sexpPrim struct {
	kind   assembly.PrimitiveKind
	size   mgl64.Vec3
	height float64
	radius float64
}

func (p *sexpPrim) SexpString(ps *zygo.PrintState) string {
	if p.kind == assembly.PrimCylinder {
		return fmt.Sprintf("(cylinder :height %.1f :radius %.1f)", p.height, p.radius)
	}
	return fmt.Sprintf("(box %.1fx%.1fx%.1f)", p.size.X(), p.size.Y(), p.size.Z())
}
func (p *sexpPrim) Type() *zygo.RegisteredType { return nil }

// sexpPartRef wraps a defined part name so `place` can reference it.
type sexpPartRef struct {
	name string
}

func (p *sexpPartRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(part %q)", p.name)
}
func (p *sexpPartRef) Type() *zygo.RegisteredType { return nil }

// sexpPlace wraps a placed instance so `assembly` can collect it.
type sexpPlace struct {
	spec *assembly.PlaceSpec
}

func (p *sexpPlace) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(place %q)", p.spec.Name())
}
func (p *sexpPlace) Type() *zygo.RegisteredType { return nil }

// sexpAsm wraps an assembly so nesting can be expressed by passing one
// assembly form as a child of another.
type sexpAsm struct {
	spec *assembly.AssemblySpec
}

func (a *sexpAsm) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(assembly %q)", a.spec.Name)
}
func (a *sexpAsm) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps an mgl64.Vec3.
type sexpVec3 struct {
	vec mgl64.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X(), v.vec.Y(), v.vec.Z())
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value; treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all DSL builtins into a zygomys environment.
// The builtins populate the provided Design during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, d *assembly.Design) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var vec mgl64.Vec3
		for i, arg := range args {
			f, err := toFloat64(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: component %d: %w", i, err)
			}
			vec[i] = f
		}
		return &sexpVec3{vec: vec}, nil
	})

	// -----------------------------------------------------------------------
	// (box :x 100 :y 50 :z 20)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		p := &sexpPrim{kind: assembly.PrimBox}
		for i, axis := range []string{"x", "y", "z"} {
			v, ok := pa.kw[axis]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("box: missing :%s", axis)
			}
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: %s: %w", axis, err)
			}
			if f <= 0 {
				return zygo.SexpNull, fmt.Errorf("box: %s must be positive, got %v", axis, f)
			}
			p.size[i] = f
		}
		return p, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 80 :radius 10)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		p := &sexpPrim{kind: assembly.PrimCylinder}

		v, ok := pa.kw["height"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("cylinder: missing :height")
		}
		h, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
		}
		v, ok = pa.kw["radius"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("cylinder: missing :radius")
		}
		r, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
		}
		if h <= 0 || r <= 0 {
			return zygo.SexpNull, fmt.Errorf("cylinder: height and radius must be positive, got %v, %v", h, r)
		}
		p.height, p.radius = h, r
		return p, nil
	})

	// -----------------------------------------------------------------------
	// (defpart "name" (box ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a shape expression")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}
		prim, ok := args[1].(*sexpPrim)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defpart: expected box or cylinder expression, got %T", args[1])
		}
		spec := &assembly.PartSpec{
			Name:   partName,
			Kind:   prim.kind,
			Size:   prim.size,
			Height: prim.height,
			Radius: prim.radius,
		}
		if err := d.AddPart(spec); err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: %w", err)
		}
		return &sexpPartRef{name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		if d.Part(partName) == nil {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}
		return &sexpPartRef{name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (place (part "leg") :as "leg-1" :at (vec3 0 0 19) :rotate (vec3 90 0 0)
	//        :offset (vec3 0 0 120) :grab true :layer 2)
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a part reference as first argument")
		}
		ref, ok := pa.positional[0].(*sexpPartRef)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("place: expected part reference, got %T (%s)",
				pa.positional[0], pa.positional[0].SexpString(nil))
		}

		spec := &assembly.PlaceSpec{Part: ref.name}
		if v, ok := pa.kw["as"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: as: %w", err)
			}
			spec.As = s
		}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			spec.At = vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			spec.Rotate = vec
		}
		if v, ok := pa.kw["offset"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: offset: %w", err)
			}
			spec.Offset = &vec
		}
		if v, ok := pa.kw["grab"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: grab: %w", err)
			}
			spec.Grab = b
		}
		if v, ok := pa.kw["layer"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: layer: %w", err)
			}
			if n < 1 {
				return zygo.SexpNull, fmt.Errorf("place: layer must be >= 1, got %d", n)
			}
			spec.Layer = n
		}
		return &sexpPlace{spec: spec}, nil
	})

	// -----------------------------------------------------------------------
	// (assembly "name" :group "drivetrain" :at (vec3 0 0 0) :offset (vec3 0 0 40)
	//           (place ...) (assembly ...) ...)
	//
	// An assembly used as a child of another assembly stops being a design
	// root; only top-level assemblies remain roots.
	// -----------------------------------------------------------------------
	env.AddFunction("assembly", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("assembly requires a name argument")
		}
		asmName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: name: %w", err)
		}

		spec := &assembly.AssemblySpec{Name: asmName}
		if v, ok := pa.kw["group"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("assembly: group: %w", err)
			}
			spec.Group = s
		}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("assembly: at: %w", err)
			}
			spec.At = vec
		}
		if v, ok := pa.kw["offset"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("assembly: offset: %w", err)
			}
			spec.Offset = vec
		}

		for i := 1; i < len(pa.positional); i++ {
			switch child := pa.positional[i].(type) {
			case *sexpPlace:
				spec.Places = append(spec.Places, child.spec)
			case *sexpAsm:
				spec.Assemblies = append(spec.Assemblies, child.spec)
				d.RemoveRoot(child.spec)
			default:
				return zygo.SexpNull, fmt.Errorf("assembly: child %d: expected place or assembly, got %T (%s)",
					i, pa.positional[i], pa.positional[i].SexpString(nil))
			}
		}

		d.AddRoot(spec)
		return &sexpAsm{spec: spec}, nil
	})
}
