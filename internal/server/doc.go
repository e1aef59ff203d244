// Package server exposes the tune catalog and compiler over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [MuxRouter] implements it on
// gorilla/mux. [Middleware] wraps the whole router in reverse order (last added executes first), so
// CORS preflight requests and unmatched paths pass through logging too.
//
// # Handlers
//
// Handlers implement [Handler] and register their own routes, keeping route definitions next to
// the code that serves them. [TuneHandler] serves:
//
//	GET  /health                 → liveness
//	GET  /api/tunes              → numbered catalog
//	GET  /api/tunes/{tune}       → one tune with its compiled events
//	GET  /api/tunes/{tune}/midi  → Standard MIDI File download
//	POST /api/compile            → compile {"notation", "duration"} without saving
//
// {tune} is a name or menu number, resolved the same way as on the command line. Nothing here
// plays audio: the server only compiles and renders.
package server
