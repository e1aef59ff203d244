// Package tasks renders tunes to Standard MIDI Files with real-time progress reporting.
//
// # Core Operations
//
//  1. [RenderTune] : Compile one tune and write it as MIDI to any writer
//  2. [WriteMIDIFile] : [RenderTune] into a file, creating parent directories
//  3. [RenderAll] : Render a whole catalog concurrently
//     - Bounded worker pool (default 4, at most 8)
//     - One <slug>.mid file per tune plus a manifest.yaml
//     - Per-tune results so one bad tune does not fail the batch
//
// # Progress Reporting
//
// [RenderAll] accepts an optional channel of [ProgressUpdate] values. Sends use select with
// default so a slow or absent reader never stalls rendering.
//
// Rendering goes through the same player.Player used for audible playback, with a
// recorder.MIDI as the sink, so exported timing always matches what the speaker plays.
package tasks
