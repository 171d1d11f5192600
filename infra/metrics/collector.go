package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/sectionsched/core/logger"
	coremetrics "github.com/kilianp07/sectionsched/core/metrics"
	"github.com/kilianp07/sectionsched/core/solver"
	"github.com/kilianp07/sectionsched/internal/eventbus"
)

// StartProgressCollector subscribes to the progress bus and records every
// improvement on sinks implementing ImprovementRecorder. The returned channel
// is closed once the collector has drained the bus, which happens when the
// bus is closed or ctx is canceled. Sink errors are logged on log.
func StartProgressCollector(ctx context.Context, runID string, bus *eventbus.TypedBus[solver.Improvement], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if log == nil {
		log = logger.NopLogger{}
	}
	rec, ok := sink.(coremetrics.ImprovementRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case imp, ok := <-sub:
				if !ok {
					return
				}
				if err := rec.RecordImprovement(coremetrics.ImprovementEvent{
					RunID:     runID,
					Objective: imp.Objective,
					Strategy:  imp.Strategy,
					Elapsed:   imp.Elapsed,
					Time:      time.Now(),
				}); err != nil {
					log.Warnf("record improvement for run %s (objective %d): %v", runID, imp.Objective, err)
				}
			}
		}
	}()
	return done
}
