// Package naming decides which on-disk file holds a given survey response.
// Resolution is deterministic and collision-free: for a fixed response id
// and a fixed view of the existing documents, the same path comes back on
// every call. Two strategies exist, an HMAC-derived opaque token (default,
// so filenames do not leak titles) and a title slug, selected once per
// deployment and never switched at runtime.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Index answers ownership questions during collision probing. Implemented
// by document.Store; tests substitute fakes.
type Index interface {
	// Exists reports whether a file already sits at the candidate path.
	Exists(path string) bool
	// OwnerOf returns the response id that has claimed the candidate path
	// in the current run, if any.
	OwnerOf(path string) (string, bool)
}

// Resolver maps a response onto its target path. currentPath is the path
// that holds the response today, or empty if none does.
type Resolver interface {
	Resolve(title, responseID, currentPath string) string
}

// resolve implements the shared sticky-resolution and collision-probing
// policy over a strategy-specific base name:
//
//   - If the response already owns a path derived from the same base name,
//     that path is returned unchanged. Stable rows never churn.
//   - Otherwise candidates base.md, base-2.md, base-3.md, ... are probed
//     until one is free or already owned by this response. A differing
//     result from currentPath is a rename, never a duplicate.
//
// Probing terminates because the counter grows without bound; resolution
// never fails.
func resolve(idx Index, dir, base, responseID, currentPath string) string {
	if currentPath != "" && derivedFrom(currentPath, base) {
		return currentPath
	}

	candidate := filepath.Join(dir, base+".md")
	for counter := 2; ; counter++ {
		if candidate == currentPath {
			return candidate
		}
		if owner, ok := idx.OwnerOf(candidate); ok {
			if owner == responseID {
				return candidate
			}
		} else if !idx.Exists(candidate) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d.md", base, counter))
	}
}

// derivedFrom reports whether a path's file name was produced from the
// given base name, directly or with a collision counter.
func derivedFrom(path, base string) bool {
	name := strings.TrimSuffix(filepath.Base(path), ".md")
	if name == base {
		return true
	}
	suffix, ok := strings.CutPrefix(name, base+"-")
	if !ok || suffix == "" {
		return false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
