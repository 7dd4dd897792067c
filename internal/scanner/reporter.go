package scanner

import (
	"sync"
	"time"
)

// reporter refreshes a Progress from live counters on a fixed interval
// until the scan it belongs to ends.
type reporter struct {
	progress *Progress
	counters *counters
	done     chan struct{}
	wg       sync.WaitGroup
}

func startReporter(p *Progress, c *counters, interval time.Duration) *reporter {
	r := &reporter{progress: p, counters: c, done: make(chan struct{})}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.progress.publish(r.counters)
			case <-r.done:
				return
			}
		}
	}()
	return r
}

// stop ends the reporter and publishes the exact final counts.
func (r *reporter) stop() {
	close(r.done)
	r.wg.Wait()
	r.progress.publish(r.counters)
}
