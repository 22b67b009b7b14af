// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

// Package paths defines the strongly typed component and resource path
// identifiers used throughout the machine core. A ComponentPath addresses a
// node in the component tree ("/component/foo/bar"); a ResourcePath
// addresses a leaf resource attached to a component
// ("/resource/foo/bar/screen"). Both are canonicalised on parse so that
// textual equality after parsing is the only equality that matters.
package paths

import (
	"strings"

	"github.com/multiconsole/corefab/curated"
)

const (
	componentPrefix = "component"
	resourcePrefix  = "resource"
	separator       = "/"
)

// ComponentPath identifies a node in the component tree.
type ComponentPath struct {
	segments []string
}

// ResourcePath identifies a leaf resource attached to a component.
type ResourcePath struct {
	segments []string
}

func splitSegments(kind, prefix, s string) ([]string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, ":")
	s = strings.TrimPrefix(s, separator)

	parts := strings.Split(s, separator)
	if len(parts) == 0 || parts[0] != prefix {
		return nil, curated.Errorf("paths: %s path must begin with %q: %q", kind, prefix, s)
	}

	segs := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, curated.Errorf("paths: %s path contains an empty segment: %q", kind, s)
		}
		if strings.ContainsAny(p, " \t\n\r") {
			return nil, curated.Errorf("paths: %s path segment contains whitespace: %q", kind, p)
		}
		segs = append(segs, p)
	}

	if len(segs) == 0 {
		return nil, curated.Errorf("paths: %s path has no segments: %q", kind, s)
	}

	return segs, nil
}

// NewComponentPath parses a string of the form ":component/foo/bar".
func NewComponentPath(s string) (ComponentPath, error) {
	segs, err := splitSegments("component", componentPrefix, s)
	if err != nil {
		return ComponentPath{}, err
	}
	return ComponentPath{segments: segs}, nil
}

// NewResourcePath parses a string of the form ":resource/foo/bar/screen".
func NewResourcePath(s string) (ResourcePath, error) {
	segs, err := splitSegments("resource", resourcePrefix, s)
	if err != nil {
		return ResourcePath{}, err
	}
	return ResourcePath{segments: segs}, nil
}

// String returns the canonical representation.
func (p ComponentPath) String() string {
	return separator + componentPrefix + separator + strings.Join(p.segments, separator)
}

// String returns the canonical representation.
func (p ResourcePath) String() string {
	return separator + resourcePrefix + separator + strings.Join(p.segments, separator)
}

// Equal compares two component paths after canonicalisation.
func (p ComponentPath) Equal(other ComponentPath) bool {
	return p.String() == other.String()
}

// Equal compares two resource paths after canonicalisation.
func (p ResourcePath) Equal(other ResourcePath) bool {
	return p.String() == other.String()
}

// Push appends a segment and returns the new, deeper path.
func (p ComponentPath) Push(segment string) (ComponentPath, error) {
	if segment == "" || strings.ContainsAny(segment, " \t\n\r"+separator) {
		return ComponentPath{}, curated.Errorf("paths: invalid path segment: %q", segment)
	}
	segs := make([]string, len(p.segments)+1)
	copy(segs, p.segments)
	segs[len(p.segments)] = segment
	return ComponentPath{segments: segs}, nil
}

// Resource attaches a resource leaf name to this component, producing a
// ResourcePath.
func (p ComponentPath) Resource(name string) (ResourcePath, error) {
	if name == "" || strings.ContainsAny(name, " \t\n\r"+separator) {
		return ResourcePath{}, curated.Errorf("paths: invalid resource name: %q", name)
	}
	segs := make([]string, len(p.segments)+1)
	copy(segs, p.segments)
	segs[len(p.segments)] = name
	return ResourcePath{segments: segs}, nil
}

// Parent returns the path one level up. Fails for a root (single segment)
// component path.
func (p ComponentPath) Parent() (ComponentPath, error) {
	if len(p.segments) <= 1 {
		return ComponentPath{}, curated.Errorf("paths: component path %q has no parent", p.String())
	}
	return ComponentPath{segments: append([]string(nil), p.segments[:len(p.segments)-1]...)}, nil
}

// IterSegments calls fn for each segment of the path, in order, stopping
// early if fn returns false.
func (p ComponentPath) IterSegments(fn func(segment string) bool) {
	for _, s := range p.segments {
		if !fn(s) {
			return
		}
	}
}

// IterSegments calls fn for each segment of the path, in order, stopping
// early if fn returns false.
func (p ResourcePath) IterSegments(fn func(segment string) bool) {
	for _, s := range p.segments {
		if !fn(s) {
			return
		}
	}
}

// Leaf returns the final segment of the path, used as a file/bucket name
// when the path is projected onto a filesystem (see the persistence
// package).
func (p ComponentPath) Leaf() string {
	return p.segments[len(p.segments)-1]
}

// Leaf returns the final segment of the path.
func (p ResourcePath) Leaf() string {
	return p.segments[len(p.segments)-1]
}

// Dirs returns all but the final segment, suitable for building a
// subdirectory chain.
func (p ComponentPath) Dirs() []string {
	if len(p.segments) <= 1 {
		return nil
	}
	return append([]string(nil), p.segments[:len(p.segments)-1]...)
}
