package shader

import (
	"strconv"
	"strings"
)

// wgslTypeLayout holds the byte size and alignment for a WGSL type.
// Used to compute MinBindingSize for buffer bindings.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// wgslPrimitiveLayoutMap maps host-shareable WGSL scalar, vector and matrix types to size and alignment.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32": {4, 4},
	"i32": {4, 4},
	"u32": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},
	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

// roundUpAlign rounds value up to the next multiple of a power-of-two alignment.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves a WGSL type to its size and alignment using the primitive table,
// previously computed structs and fixed-size arrays. Runtime-sized arrays resolve to one element.
//
// Parameters:
//   - typeName: the WGSL type name, e.g. "f32", "Camera", "array<vec4<f32>, 6>"
//   - knownTypes: already-resolved struct layouts
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: false for unknown types
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return wgslTypeLayout{}, false
	}
	parts := splitAtTopLevelCommas(inner[:len(inner)-1])
	elem, ok := resolveTypeLayout(strings.TrimSpace(parts[0]), knownTypes)
	if !ok {
		return wgslTypeLayout{}, false
	}
	stride := roundUpAlign(elem.align, elem.size)
	if len(parts) < 2 {
		return wgslTypeLayout{stride, elem.align}, true
	}
	count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false
	}
	return wgslTypeLayout{count * stride, elem.align}, true
}

// computeStructLayout lays out a struct per WGSL rules: each field at the next aligned
// offset, total size rounded up to the largest field alignment. Builtin fields are skipped.
func computeStructLayout(ps parsedStruct, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	offset := uint64(0)
	maxAlign := uint64(1)
	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		fl, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = roundUpAlign(fl.align, offset) + fl.size
		maxAlign = max(maxAlign, fl.align)
	}
	return wgslTypeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}

// computeStructSizes resolves every struct, iterating until nested struct references settle.
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := append([]parsedStruct(nil), structs...)
	for len(remaining) > 0 {
		next := remaining[:0]
		for _, ps := range remaining {
			if layout, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = layout
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(remaining) {
			break
		}
		remaining = next
	}
	return resolved
}
