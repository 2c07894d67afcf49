package service

import (
	"log"
	"time"
)

// ScanWatcher waits for the scan confirmation of one pending
// cancellation. It polls the scan signal at a fixed interval until the
// signal arrives or the wait budget runs out, then drives exactly one
// terminal transition. The watcher runs detached from the requesting
// client: scanning the code at the spot works whether or not anyone is
// still looking at the panel.
type ScanWatcher struct {
	pending   *PendingCancellation
	interval  time.Duration
	timeout   time.Duration
	onScanned func(*PendingCancellation)
	onExpired func(*PendingCancellation)
}

func NewScanWatcher(p *PendingCancellation, interval, timeout time.Duration, onScanned, onExpired func(*PendingCancellation)) *ScanWatcher {
	return &ScanWatcher{
		pending:   p,
		interval:  interval,
		timeout:   timeout,
		onScanned: onScanned,
		onExpired: onExpired,
	}
}

// Run blocks until the pending cancellation is terminal. Callers start
// it in its own goroutine.
func (w *ScanWatcher) Run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(w.timeout)
	defer deadline.Stop()

	for {
		select {
		case <-ticker.C:
			if !w.pending.ScannedFlag() {
				continue
			}
			if w.pending.transition(PendingStateScanned) {
				w.onScanned(w.pending)
			}
			return
		case <-deadline.C:
			if w.pending.transition(PendingStateExpired) {
				log.Printf("Pending cancellation for spot %d expired without a scan", w.pending.SpotID)
				w.onExpired(w.pending)
			}
			return
		}
	}
}
