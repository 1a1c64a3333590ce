package engine

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Report summarizes one run.
type Report struct {
	Frames         int
	Failed         int
	PeakInFlight   int
	Draws          int
	SegmentChanges int
	Emitted        int
	LastPosition   int

	LoadTime time.Duration
	PlayTime time.Duration
}

// FPS is the effective output rate over the whole run.
func (r *Report) FPS() float64 {
	total := (r.LoadTime + r.PlayTime).Seconds()
	if total <= 0 {
		return 0
	}
	return float64(r.Emitted) / total
}

func (r *Report) Print(w io.Writer, build string) {
	fmt.Fprintf(w,
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Loading: %.2fs (%d frames, %d failed, peak %d in flight)\n"+
			"Playback: %.2fs (%d draws, %d segment changes)\n"+
			"Frames Written: %d\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		build, (r.LoadTime + r.PlayTime).Seconds(),
		r.LoadTime.Seconds(), r.Frames, r.Failed, r.PeakInFlight,
		r.PlayTime.Seconds(), r.Draws, r.SegmentChanges,
		r.Emitted, r.FPS(),
	)
}

// AppendLog appends a one-line summary to path.
func (r *Report) AppendLog(path, build, input string) error {
	entry := fmt.Sprintf("[%s] Build: %s | Input: %s | Frames: %d | Total: %.2fs | Load: %.2fs | Play: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		build,
		input,
		r.Frames,
		(r.LoadTime + r.PlayTime).Seconds(),
		r.LoadTime.Seconds(),
		r.PlayTime.Seconds(),
		r.FPS(),
	)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	_, err = f.WriteString(entry)
	return err
}
