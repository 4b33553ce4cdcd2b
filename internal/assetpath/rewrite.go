package assetpath

import "strings"

// Rewrite recomputes d so that it resolves to newCanonicalPath from
// ownerFolder. The result is d itself when it already resolves there.
//
// ABSOLUTE descriptors stay absolute. EMPTY and RELATIVE descriptors become
// the shortest relative path, unless the first path component (the tree
// root) differs, in which case the descriptor is forced to ABSOLUTE.
func Rewrite(ownerFolder, ownerName string, d Descriptor, newCanonicalPath string) Descriptor {
	current := Resolve(ownerFolder, ownerName, d)
	if Canonical(current) == Canonical(newCanonicalPath) {
		return d
	}
	target := Canonical(newCanonicalPath)
	if d.Kind == KindAbsolute {
		return Absolute(Separator + target)
	}

	owner := Components(ownerFolder)
	parts := Components(target)
	if len(owner) == 0 {
		return Relative(target)
	}
	if len(parts) == 0 || owner[0] != parts[0] {
		return Absolute(Separator + target)
	}

	common := commonPrefix(owner, parts)
	var b strings.Builder
	for i := common; i < len(owner); i++ {
		b.WriteString("..")
		b.WriteString(Separator)
	}
	b.WriteString(strings.Join(parts[common:], Separator))
	if b.Len() == 0 {
		// target is the owner folder itself
		return Relative(".")
	}
	return Relative(b.String())
}

// Components splits a project path on the separator, dropping empty
// segments produced by leading or trailing separators.
func Components(p string) []string {
	raw := strings.Split(p, Separator)
	out := raw[:0]
	for _, part := range raw {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// commonPrefix returns the index of the first differing component. When one
// sequence runs out first the shorter component count wins.
func commonPrefix(a, b []string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
