// Package tune compiles island tune notation into timed playback events.
//
// A tune is a short string over the alphabet "gabcdefGABCDE-x":
//   - lower case letters play the lower octave (g = G3 ... f = F4)
//   - upper case letters play the upper octave (G = G4 ... E = E5)
//   - '-' extends the previous event by one base duration
//   - 'x' is a rest of one base duration
//
// [Validate] checks a notation string, [Compiler.Compile] turns it into a slice of [Event],
// and [Catalog] holds the named example tunes shown in the interactive menu.
//
// A dash at the very start of a tune (or any dash the scanner lands on) is looked up like any
// other character: it becomes a rest of one base duration that only dashes after it can extend.
// So "-x" compiles to two rests, not one.
package tune
