package session

import (
	"sync"
	"time"
)

// DefaultWordInterval is how long each word stays highlighted during a
// guided read-through.
const DefaultWordInterval = 800 * time.Millisecond

// Pacer walks a highlight index across the practice words at a fixed
// cadence. It is purely presentational: scoring never reads the pacer,
// only the transcription result.
type Pacer struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartPacer highlights word 0 immediately, advances every interval,
// and reports -1 (no current word) after the last word. advance is
// called from the pacer goroutine.
func StartPacer(n int, interval time.Duration, advance func(index int)) *Pacer {
	p := &Pacer{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		if n <= 0 {
			advance(-1)
			return
		}
		advance(0)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 1; i < n; i++ {
			select {
			case <-p.stop:
				advance(-1)
				return
			case <-ticker.C:
				advance(i)
			}
		}
		// Hold the last word for one more beat before clearing.
		select {
		case <-p.stop:
		case <-ticker.C:
		}
		advance(-1)
	}()

	return p
}

// Cancel stops the pacer and waits for its goroutine to exit, so no
// scheduled step fires after Cancel returns. Safe to call more than
// once, and after the pacer has finished on its own.
func (p *Pacer) Cancel() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}
