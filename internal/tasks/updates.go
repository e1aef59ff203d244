package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, a [RenderResult] for finished tunes
}

// Operation phase enumeration
type Phase int

const (
	Prepare Phase = iota
	Render
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case Prepare:
		return "prepare"
	case Render:
		return "render"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func prepareUpdate(total int, dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Prepare,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Rendering %d tunes into %s...", total, dir),
	}
}

func renderCompletedUpdate(step, total int, res RenderResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Render,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d events)", step, total, res.Name, res.Events),
		Data:    res,
	}
}

func renderFailedUpdate(step, total int, res RenderResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Render,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Name, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest %s...", path),
	}
}
