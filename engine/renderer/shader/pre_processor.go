// pre_processor.go implements the Oxy WGSL pre-processor. It scans shader source for
// @oxy: annotations and replaces each one with WGSL text from its include registry, so a
// uniform struct is defined once next to the Go type that marshals it.
package shader

import (
	"fmt"
	"maps"
	"strings"

	"github.com/Carmen-Shannon/oxy-pano/engine/camera"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@oxy:"

// annotationTypeInclude injects a registered WGSL source at the annotation site.
//
// Syntax: //@oxy:include <name>
//
// Example: //@oxy:include camera
const annotationTypeInclude = "include"

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// includes maps an include name to the WGSL text it expands to.
	includes map[string]string
}

// PreProcessor expands @oxy: annotations in raw WGSL source.
type PreProcessor interface {
	// Process replaces every //@oxy:include <name> line with the registered source for name.
	// Other lines pass through unchanged.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error naming the line if an annotation is malformed or references an unknown include
	Process(source string) (string, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the given include registry.
//
// Parameters:
//   - includes: WGSL source keyed by include name
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(includes map[string]string) PreProcessor {
	return &preProcessor{includes: maps.Clone(includes)}
}

// NewCameraPreProcessor creates a PreProcessor whose "camera" include expands to the Camera
// struct matching the projection's uniform layout.
//
// Parameters:
//   - p: the camera projection
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewCameraPreProcessor(p camera.Projection) PreProcessor {
	return NewPreProcessor(map[string]string{
		"camera": p.UniformSource(),
	})
}

func (p *preProcessor) Process(source string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		_, after, ok := strings.Cut(trimmed, annotationPrefix)
		if !ok || !strings.HasPrefix(trimmed, "//") {
			out = append(out, line)
			continue
		}

		args := strings.Fields(after)
		if len(args) != 2 || args[0] != annotationTypeInclude {
			return "", fmt.Errorf("line %d: malformed @oxy annotation %q", i+1, trimmed)
		}
		included, ok := p.includes[args[1]]
		if !ok {
			return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", i+1, args[1])
		}
		out = append(out, strings.TrimRight(included, "\n"))
	}
	return strings.Join(out, "\n"), nil
}
