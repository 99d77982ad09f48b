package asset

import "strings"

const contentRoot = "/Game"

// NormalizeFolder canonicalizes a folder rule path: trims whitespace,
// converts backslashes, strips trailing slashes and anchors relative
// paths under the content root. Normalization is idempotent. Returns ""
// for paths that collapse to nothing.
func NormalizeFolder(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return ""
	}
	for strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "/") {
		return p
	}
	if strings.HasPrefix(p, "Game/") {
		return "/" + p
	}
	return contentRoot + "/" + p
}

// FolderContains reports whether pkg has the normalized folder path as a
// prefix.
func FolderContains(folder, pkg string) bool {
	if folder == "" || pkg == "" {
		return false
	}
	return strings.HasPrefix(pkg, folder)
}
