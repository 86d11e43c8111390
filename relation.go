package coinscrape

import (
	"fmt"
	"strconv"
	"strings"
)

// RelationKind identifies a structural move in the document tree.
type RelationKind int

// Relation kinds.
const (
	RelationParent RelationKind = iota
	RelationChild
	RelationSibling
)

// String returns the textual name used in configuration files.
func (k RelationKind) String() string {
	switch k {
	case RelationParent:
		return "parent"
	case RelationChild:
		return "child"
	case RelationSibling:
		return "sibling"
	default:
		return fmt.Sprintf("RelationKind(%d)", int(k))
	}
}

// Relation is one step of a RelationPath.
//
// For RelationChild, N selects the child: 0 is the first child, a negative
// value the last child, and k > 0 the element reached by k next-sibling
// moves from the first child. For RelationSibling, N counts additional
// moves after the first: Sibling(0) is the immediately following sibling.
// N is ignored for RelationParent.
type Relation struct {
	Kind RelationKind
	N    int
}

// Parent returns a step to the immediate parent element.
func Parent() Relation { return Relation{Kind: RelationParent} }

// Child returns a step to a child element.
func Child(i int) Relation { return Relation{Kind: RelationChild, N: i} }

// Sibling returns a step forward through following siblings.
func Sibling(k int) Relation { return Relation{Kind: RelationSibling, N: k} }

// String returns the textual form of the step, e.g. "child:-1".
func (r Relation) String() string {
	if r.Kind == RelationParent {
		return "parent"
	}
	return r.Kind.String() + ":" + strconv.Itoa(r.N)
}

// RelationPath is an ordered sequence of steps evaluated left to right
// from an anchor element. An empty path refers to the anchor itself.
type RelationPath []Relation

// String returns the comma separated textual form of the path.
func (p RelationPath) String() string {
	parts := make([]string, len(p))
	for i, r := range p {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// Append returns a new path with steps added to the end. The receiver is
// never modified.
func (p RelationPath) Append(steps ...Relation) RelationPath {
	out := make(RelationPath, 0, len(p)+len(steps))
	out = append(out, p...)
	return append(out, steps...)
}

// ParseRelationPath parses the textual form of a path, e.g.
// "child:0,sibling:0" or "parent". An empty string yields an empty path.
func ParseRelationPath(s string) (RelationPath, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RelationPath{}, nil
	}

	var path RelationPath
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		name, arg, hasArg := strings.Cut(part, ":")

		switch name {
		case "parent":
			if hasArg {
				return nil, Errorf(ECONFIG, "relation %q takes no argument", part)
			}
			path = append(path, Parent())
		case "child", "sibling":
			if !hasArg {
				return nil, Errorf(ECONFIG, "relation %q requires an index", part)
			}
			n, err := strconv.Atoi(arg)
			if err != nil {
				return nil, Errorf(ECONFIG, "relation %q has invalid index", part)
			}
			if name == "child" {
				path = append(path, Child(n))
			} else {
				path = append(path, Sibling(n))
			}
		default:
			return nil, Errorf(ECONFIG, "unknown relation %q", part)
		}
	}
	return path, nil
}
