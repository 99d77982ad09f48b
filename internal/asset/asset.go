// Package asset defines content identifiers and the category model used
// by preload rule evaluation.
//
// An identifier has the form "/Root/Path/Package.Object". The part before
// the first dot is the long package path; the remainder names one object
// inside that package. Identifiers compare by canonical string equality.
package asset

import "strings"

type ID string

// Valid reports whether the identifier is well-formed: a rooted package
// path plus a non-empty object name.
func (id ID) Valid() bool {
	s := string(id)
	if len(s) < 4 || s[0] != '/' {
		return false
	}
	dot := strings.IndexByte(s, '.')
	if dot <= 1 || dot == len(s)-1 {
		return false
	}
	pkg := s[:dot]
	if strings.HasSuffix(pkg, "/") || strings.Contains(pkg, "//") {
		return false
	}
	return !strings.ContainsAny(s, " \t\r\n\\")
}

// Package returns the long package path of the identifier, empty when the
// identifier is malformed.
func (id ID) Package() string {
	s := string(id)
	dot := strings.IndexByte(s, '.')
	if dot <= 0 {
		return ""
	}
	return s[:dot]
}

// ObjectName returns the object part after the package path.
func (id ID) ObjectName() string {
	s := string(id)
	dot := strings.IndexByte(s, '.')
	if dot < 0 || dot == len(s)-1 {
		return ""
	}
	return s[dot+1:]
}

// FromPackage builds a synthetic identifier for a package without
// per-asset metadata: the object name repeats the last path segment.
func FromPackage(pkg string) ID {
	if pkg == "" || pkg[0] != '/' {
		return ""
	}
	name := pkg
	if i := strings.LastIndexByte(pkg, '/'); i >= 0 {
		name = pkg[i+1:]
	}
	if name == "" {
		return ""
	}
	return ID(pkg + "." + name)
}

// IsEnginePackage reports whether the package path sits under a reserved
// engine or script namespace. Such packages never enter preload sets.
func IsEnginePackage(pkg string) bool {
	return strings.HasPrefix(pkg, "/Engine/") || strings.HasPrefix(pkg, "/Script/")
}

// Dedupe drops invalid and repeated identifiers, preserving first-seen
// order.
func Dedupe(ids []ID) []ID {
	out := make([]ID, 0, len(ids))
	seen := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		if !id.Valid() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
