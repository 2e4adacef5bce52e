package model

// This file contains the human-readable rendering of run machine info.

import "strings"

// PrettyMachineInfo holds the nicest available human-readable components
// for a run, preferring machine_info.txt contents and falling back to
// the run identifier's path components.
type PrettyMachineInfo struct {
	Platform string
	GL       string
	GLSL     string
	Renderer string
}

// FlatName returns a single-line description of the run environment.
func (p PrettyMachineInfo) FlatName() string {
	return strings.Join([]string{p.Platform, p.Renderer, p.GL, p.GLSL}, " ")
}

// DriverLabel returns the driver description used in page headings.
func (p PrettyMachineInfo) DriverLabel() string {
	return p.GL + " - GLSL version " + p.GLSL
}

// PrettyInfo derives PrettyMachineInfo for this run.
func (r *ResultsInfo) PrettyInfo() PrettyMachineInfo {
	info := r.MachineInfoDict()

	sanitize := func(key string) string {
		return strings.ReplaceAll(info[key], "/", "-")
	}

	cpu := sanitize("CPU")
	osVersion := sanitize("OS_Version")
	glVendor := sanitize("GL_VENDOR")
	glRenderer := sanitize("GL_RENDERER")
	glVersion := sanitize("GL_VERSION")
	glslVersion := sanitize("GL_SHADING_LANGUAGE_VERSION")

	platform := r.Identifier.PlatformInfo
	if cpu != "" && osVersion != "" {
		platform = osVersion + " - " + cpu
	}

	gl := r.Identifier.Driver.GL
	if glVendor != "" && glRenderer != "" && glVersion != "" {
		gl = glVendor + " - " + glRenderer + " - " + glVersion
	}

	if glslVersion == "" {
		glslVersion = r.Identifier.Driver.GLSL
	}

	renderer := "OpenGL"
	if r.RendererInfo.Vulkan {
		renderer = "Vulkan"
	}

	return PrettyMachineInfo{
		Platform: platform,
		GL:       gl,
		GLSL:     glslVersion,
		Renderer: renderer,
	}
}
