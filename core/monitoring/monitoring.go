// Package monitoring abstracts the error monitor failed runs are reported to.
package monitoring

import "time"

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor reports nothing.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

// RunTags returns the tags attached to every report about a solve run.
// extra is read as key/value pairs; a trailing odd key is ignored.
func RunTags(module, runID string, extra ...string) map[string]string {
	tags := map[string]string{"module": module}
	if runID != "" {
		tags["run_id"] = runID
	}
	for i := 0; i+1 < len(extra); i += 2 {
		tags[extra[i]] = extra[i+1]
	}
	return tags
}
