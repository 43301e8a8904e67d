package synth

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// semitone offsets from C within one octave.
var noteOffsets = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// NoteToFreq converts a scientific pitch name such as "C4", "F#3" or "Bb2"
// into its equal-tempered frequency in Hz (A4 = 440).
func NoteToFreq(note string) (float64, error) {
	s := strings.TrimSpace(note)
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid note name %q", note)
	}

	letter := strings.ToUpper(s[:1])
	offset, ok := noteOffsets[letter]
	if !ok {
		return 0, fmt.Errorf("invalid note letter in %q", note)
	}
	rest := s[1:]

	switch {
	case strings.HasPrefix(rest, "#"):
		offset++
		rest = rest[1:]
	case strings.HasPrefix(rest, "b"):
		offset--
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note %q", note)
	}

	// MIDI note number, relative to A4 = 69.
	midi := (octave+1)*12 + offset
	return 440 * math.Exp2(float64(midi-69)/12), nil
}

// ResolveNote coerces a trigger note argument into a frequency. Accepted
// forms: a numeric frequency in Hz, or a pitch name string.
func ResolveNote(note any) (float64, bool) {
	switch v := note.(type) {
	case nil:
		return 0, false
	case string:
		freq, err := NoteToFreq(v)
		if err != nil {
			return 0, false
		}
		return freq, true
	default:
		return AsFloat(v)
	}
}

// AsFloat coerces the numeric types that settings decoders produce
// (JSON, YAML, cty, plain Go literals) into a float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
