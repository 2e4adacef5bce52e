package model

// This file contains the run identifier model: parsing filesystem paths
// into typed identifiers and reducing them to comparable join keys.

import (
	"path"
	"path/filepath"
	"strings"
)

// HardwareGoldenIdentifier is the label used for comparisons against the
// hardware-captured golden results rather than another run's output.
const HardwareGoldenIdentifier = "Hardware"

// DriverInfo describes the graphics driver a run executed under.
type DriverInfo struct {
	GL   string
	GLSL string
}

// ParseDriverInfo splits a combined "gl:glsl" path component.
func ParseDriverInfo(component string) DriverInfo {
	gl, glsl, _ := strings.Cut(component, ":")
	return DriverInfo{GL: gl, GLSL: glsl}
}

func (d DriverInfo) String() string {
	return d.GL + ":" + d.GLSL
}

// RunKey is the reduced, comparable join key for a run. Two identifiers
// with equal keys refer to the same physical run.
type RunKey struct {
	ToolVersion  string
	PlatformInfo string
	Driver       string
}

// RunIdentifier identifies one (tool version, platform, driver) combination.
// Components holds the full path components as discovered; the typed fields
// are derived from the trailing four components.
type RunIdentifier struct {
	Components   []string
	ToolVersion  string
	PlatformInfo string
	Driver       DriverInfo
}

// ParseRunPath derives a RunIdentifier from a results run root path laid
// out as .../<tool-version>/<platform>/<gl-version>/<glsl-version>.
//
// The path must have at least four components. Shallower paths are a
// caller error: discovery only ever hands run roots at depth four or more
// to this function, so no defensive validation is performed here.
func ParseRunPath(p string) RunIdentifier {
	components := splitPath(p)
	n := len(components)
	return RunIdentifier{
		Components:   components,
		ToolVersion:  components[n-4],
		PlatformInfo: components[n-3],
		Driver:       DriverInfo{GL: components[n-2], GLSL: components[n-1]},
	}
}

// ParseComparisonPath derives the results-side RunIdentifier from a
// comparison directory laid out as
// .../<tool-version>/<platform>/<gl:glsl>/<golden-dir>. The driver pair is
// a single combined component because comparison trees are one level
// deeper than results trees. The same minimum-depth precondition as
// ParseRunPath applies.
func ParseComparisonPath(p string) RunIdentifier {
	components := splitPath(p)
	n := len(components)
	return RunIdentifier{
		Components:   components,
		ToolVersion:  components[n-4],
		PlatformInfo: components[n-3],
		Driver:       ParseDriverInfo(components[n-2]),
	}
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(filepath.ToSlash(p), "/"), "/")
}

// Minimal returns an identifier reduced to the (tool, platform, driver)
// triple, discarding any extra path components. It is idempotent.
func (r RunIdentifier) Minimal() RunIdentifier {
	return RunIdentifier{
		Components:   []string{r.ToolVersion, r.PlatformInfo, r.Driver.String()},
		ToolVersion:  r.ToolVersion,
		PlatformInfo: r.PlatformInfo,
		Driver:       r.Driver,
	}
}

// Key returns the comparable join key for this identifier.
func (r RunIdentifier) Key() RunKey {
	return RunKey{
		ToolVersion:  r.ToolVersion,
		PlatformInfo: r.PlatformInfo,
		Driver:       r.Driver.String(),
	}
}

// Path returns the identifier's components joined as a slash path.
func (r RunIdentifier) Path() string {
	return path.Join(r.Components...)
}

// MinimalPath returns "tool/platform/gl:glsl".
func (r RunIdentifier) MinimalPath() string {
	return r.Minimal().Path()
}

// String returns the colon-separated label form "tool:platform:gl:glsl"
// used in summary files.
func (r RunIdentifier) String() string {
	return strings.Join([]string{r.ToolVersion, r.PlatformInfo, r.Driver.GL, r.Driver.GLSL}, ":")
}

// DirName returns the label form with colons replaced so it can be used
// as a single directory name.
func (r RunIdentifier) DirName() string {
	return strings.ReplaceAll(r.String(), ":", "__")
}

// ParseLabel parses a colon-separated run label such as a summary's
// golden identifier. Inverse of RunIdentifier.String.
func ParseLabel(label string) RunIdentifier {
	return ParseRunPath(LabelPath(label))
}

// LabelPath converts a colon-separated run label into a slash path,
// e.g. "tool:platform:gl:glsl" -> "tool/platform/gl/glsl".
func LabelPath(label string) string {
	return strings.ReplaceAll(label, ":", "/")
}

// LabelDirName converts a run label into a single directory name.
func LabelDirName(label string) string {
	return strings.ReplaceAll(label, ":", "__")
}
