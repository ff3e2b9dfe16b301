// Package platform normalizes and compares OS/architecture/variant triples
// to decide whether an existing workspace container can be reused for a
// requested platform.
package platform

import "strings"

// Triple is a normalized os/arch/variant platform descriptor.
// Empty fields are unconstrained.
type Triple struct {
	OS      string
	Arch    string
	Variant string
}

// archAliases maps common architecture spellings to their canonical names.
var archAliases = map[string]string{
	"x86_64":  "amd64",
	"x86-64":  "amd64",
	"aarch64": "arm64",
	"armhf":   "arm",
}

// Parse normalizes an "os/arch[/variant]" string into a Triple.
// Unknown or missing segments are left empty rather than rejected; the
// matcher treats them as unconstrained.
func Parse(s string) Triple {
	var t Triple

	parts := strings.SplitN(strings.TrimSpace(s), "/", 3)
	if len(parts) > 0 {
		t.OS = strings.ToLower(strings.TrimSpace(parts[0]))
	}
	if len(parts) > 1 {
		t.Arch = normalizeArch(parts[1])
	}
	if len(parts) > 2 {
		t.Variant = normalizeVariant(parts[2])
	}

	return t
}

// String renders the triple back to "os/arch[/variant]" form.
func (t Triple) String() string {
	s := t.OS + "/" + t.Arch
	if t.Variant != "" {
		s += "/" + t.Variant
	}
	return s
}

func normalizeArch(arch string) string {
	arch = strings.ToLower(strings.TrimSpace(arch))
	if canonical, ok := archAliases[arch]; ok {
		return canonical
	}
	return arch
}

// normalizeVariant canonicalizes variant spellings: bare digits become
// "vN", everything else is lowercased ("V7" -> "v7").
func normalizeVariant(variant string) string {
	variant = strings.ToLower(strings.TrimSpace(variant))
	if variant == "" {
		return ""
	}
	if variant[0] != 'v' {
		return "v" + variant
	}
	return variant
}

// Compatible reports whether an existing container's platform satisfies a
// requested one. A missing os or arch on either side matches; variants are
// compared only for arm/arm64 and only when both sides specify one.
//
// Registries report variants inconsistently, so the match is deliberately
// best-effort: an unnecessary recreation is acceptable, running the wrong
// architecture is not.
func Compatible(requested, existing Triple) bool {
	if requested.OS != "" && existing.OS != "" && requested.OS != existing.OS {
		return false
	}

	if requested.Arch == "" || existing.Arch == "" {
		return true
	}
	if requested.Arch != existing.Arch {
		return false
	}

	if requested.Arch == "arm" || requested.Arch == "arm64" {
		if requested.Variant != "" && existing.Variant != "" &&
			requested.Variant != existing.Variant {
			return false
		}
	}

	return true
}

// CompatibleStrings is Compatible over raw triple strings.
func CompatibleStrings(requested, existing string) bool {
	return Compatible(Parse(requested), Parse(existing))
}
