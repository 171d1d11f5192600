// Package scheduler turns a set of trains and section tracks into a
// conflict-free crossing schedule.
//
// A Scheduler captures its inputs once. Run derives per-track durations,
// sizes the search horizon, builds the constraint model and its weighted
// completion-time objective, hands the numeric problem to the solver under a
// wall-clock budget and projects the answer back into clock times and
// 1-based track numbers.
package scheduler
