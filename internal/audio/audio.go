// package audio renders tones as mono signed 16-bit little-endian PCM.
package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// DefaultSampleRate is the output rate used when none is configured.
const DefaultSampleRate = 44100

// BytesPerSample of the rendered PCM.
const BytesPerSample = 2

// fade is the ramp applied at both ends of a tone so that notes do not click.
const fade = 5 * time.Millisecond

// Samples converts d into a sample count at sampleRate.
func Samples(d time.Duration, sampleRate int) int {
	if d <= 0 || sampleRate <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * float64(sampleRate)))
}

// Silence renders d of zeros.
func Silence(d time.Duration, sampleRate int) []byte {
	return make([]byte, Samples(d, sampleRate)*BytesPerSample)
}

// Tone renders a full scale sine wave at freq Hz lasting d. Volume is left to the output device.
func Tone(freq float64, d time.Duration, sampleRate int) []byte {
	n := Samples(d, sampleRate)
	buf := make([]byte, n*BytesPerSample)
	if freq <= 0 {
		return buf
	}

	ramp := min(Samples(fade, sampleRate), n/2)
	step := 2 * math.Pi * freq / float64(sampleRate)
	for i := range n {
		v := math.Sin(step * float64(i))
		switch {
		case ramp > 0 && i < ramp:
			v *= float64(i) / float64(ramp)
		case ramp > 0 && i >= n-ramp:
			v *= float64(n-1-i) / float64(ramp)
		}
		binary.LittleEndian.PutUint16(buf[i*BytesPerSample:], uint16(int16(v*math.MaxInt16)))
	}
	return buf
}
