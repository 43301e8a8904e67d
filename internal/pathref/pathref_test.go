package pathref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Run("bare node id takes the default property", func(t *testing.T) {
		ref := Parse("kick", "output")
		assert.Equal(t, Ref{NodeID: "kick", Property: "output"}, ref)
	})

	t.Run("two segments split directly", func(t *testing.T) {
		ref := Parse("filter.frequency", "value")
		assert.Equal(t, Ref{NodeID: "filter", Property: "frequency"}, ref)
	})

	t.Run("extra segments become a nested property path", func(t *testing.T) {
		ref := Parse("lead.oscillator.frequency", "value")
		assert.Equal(t, Ref{NodeID: "lead", Property: "oscillator.frequency"}, ref)
	})
}

func TestIsValid(t *testing.T) {
	valid := []string{"kick", "kick.output", "node-1.sub_prop", "a.b.c", "osc1"}
	for _, path := range valid {
		assert.True(t, IsValid(path), "expected %q to be valid", path)
	}

	invalid := []string{"", "kick output", "node!", "a/b", "kick,output"}
	for _, path := range invalid {
		assert.False(t, IsValid(path), "expected %q to be invalid", path)
	}
}

func TestRefString(t *testing.T) {
	assert.Equal(t, "kick.output", Ref{NodeID: "kick", Property: "output"}.String())
	assert.Equal(t, "kick", Ref{NodeID: "kick"}.String())
}
