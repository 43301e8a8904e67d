// Package pathref parses dotted node-reference strings of the form
// `nodeId.property` into structured references.
//
// A reference with no property segment picks up a caller-supplied default,
// so `filter` resolved against the default property "input" is the same
// reference as `filter.input`. Properties may themselves be dotted
// (`synth.oscillator.frequency`) to address nested engine parameters.
package pathref

import (
	"regexp"
	"strings"
)

// pathRegex constrains references to the characters node ids and parameter
// names are built from.
var pathRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Ref is the structured form of a node-reference string.
type Ref struct {
	NodeID   string
	Property string
}

// Parse splits a reference string on `.`. A single segment names a node and
// takes defaultProperty; two segments split directly; anything longer keeps
// the first segment as the node id and rejoins the remainder as a nested
// property path. Parsing is best-effort and never fails.
func Parse(path, defaultProperty string) Ref {
	segments := strings.Split(path, ".")
	switch len(segments) {
	case 1:
		return Ref{NodeID: segments[0], Property: defaultProperty}
	case 2:
		return Ref{NodeID: segments[0], Property: segments[1]}
	default:
		return Ref{NodeID: segments[0], Property: strings.Join(segments[1:], ".")}
	}
}

// IsValid reports whether path is a non-empty, well-formed reference string.
func IsValid(path string) bool {
	return path != "" && pathRegex.MatchString(path)
}

// String serializes the reference back into its canonical dotted form.
func (r Ref) String() string {
	if r.Property == "" {
		return r.NodeID
	}
	return r.NodeID + "." + r.Property
}
