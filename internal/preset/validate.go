package preset

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gridsound/audiograph/internal/pathref"
)

var validate = validator.New()

// Validate checks a configuration for structural problems before it is
// handed to the orchestrator: struct-level constraints first, then the
// graph-level invariants the tag syntax cannot express.
func (c *GraphConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid preset %q: %w", c.Name, err)
	}

	for id := range c.Nodes {
		if !pathref.IsValid(id) || strings.Contains(id, ".") {
			return fmt.Errorf("invalid preset %q: node id %q is not a valid identifier", c.Name, id)
		}
	}

	triggers := c.TriggerNodeIDs()
	if len(triggers) != 1 {
		return fmt.Errorf("invalid preset %q: exactly one node must be marked trigger, found %d", c.Name, len(triggers))
	}

	for _, conn := range c.Connections {
		for _, path := range []string{conn.From, conn.To} {
			if !pathref.IsValid(path) {
				return fmt.Errorf("invalid preset %q: malformed connection path %q", c.Name, path)
			}
			ref := pathref.Parse(path, "")
			if _, ok := c.Nodes[ref.NodeID]; !ok {
				return fmt.Errorf("invalid preset %q: connection references unknown node %q", c.Name, ref.NodeID)
			}
		}
	}

	for _, route := range c.Modulation {
		for _, path := range []string{route.Source, route.Destination} {
			if !pathref.IsValid(path) {
				return fmt.Errorf("invalid preset %q: malformed modulation path %q", c.Name, path)
			}
			ref := pathref.Parse(path, "")
			if _, ok := c.Nodes[ref.NodeID]; !ok {
				return fmt.Errorf("invalid preset %q: modulation references unknown node %q", c.Name, ref.NodeID)
			}
		}
	}

	return nil
}
