package tune

import "math"

// Pitch is one of the thirteen playable notes of the tune alphabet, or [Rest].
type Pitch int

const (
	Rest Pitch = iota
	G3
	A3
	B3
	C4
	D4
	E4
	F4
	G4
	A4
	B4
	C5
	D5
	E5
)

// RestLabel is the tone label handed to players for a rest.
const RestLabel = "pause"

var pitchLabels = [...]string{
	Rest: RestLabel,
	G3:   "G3",
	A3:   "A3",
	B3:   "B3",
	C4:   "C4",
	D4:   "D4",
	E4:   "E4",
	F4:   "F4",
	G4:   "G4",
	A4:   "A4",
	B4:   "B4",
	C5:   "C5",
	D5:   "D5",
	E5:   "E5",
}

// MIDI key numbers, middle C (C4) = 60.
var pitchKeys = [...]uint8{
	G3: 55,
	A3: 57,
	B3: 59,
	C4: 60,
	D4: 62,
	E4: 64,
	F4: 65,
	G4: 67,
	A4: 69,
	B4: 71,
	C5: 72,
	D5: 74,
	E5: 76,
}

// pitchMap is the fixed letter lookup. 'F' is not part of the alphabet but validates
// case-insensitively, so it shares F4 with 'f'.
var pitchMap = map[byte]Pitch{
	'g': G3, 'a': A3, 'b': B3, 'c': C4, 'd': D4, 'e': E4, 'f': F4,
	'G': G4, 'A': A4, 'B': B4, 'C': C5, 'D': D5, 'E': E5, 'F': F4,
}

// Lookup resolves a notation character to its pitch. Anything without a pitch, including
// '-' and 'x', is a [Rest].
func Lookup(c byte) Pitch {
	if p, ok := pitchMap[c]; ok {
		return p
	}
	return Rest
}

// IsRest reports whether p is silent.
func (p Pitch) IsRest() bool { return p == Rest }

// String returns the octave-qualified label, e.g. "C4", or [RestLabel].
func (p Pitch) String() string {
	if p < Rest || int(p) >= len(pitchLabels) {
		return RestLabel
	}
	return pitchLabels[p]
}

// Key returns the MIDI key number of p. Rests return 0.
func (p Pitch) Key() uint8 {
	if p <= Rest || int(p) >= len(pitchKeys) {
		return 0
	}
	return pitchKeys[p]
}

// Frequency returns the equal temperament frequency of p in Hz (A4 = 440). Rests return 0.
func (p Pitch) Frequency() float64 {
	k := p.Key()
	if k == 0 {
		return 0
	}
	return 440 * math.Pow(2, float64(int(k)-69)/12)
}
