// Package solver searches for a minimum weighted-completion-time assignment of
// trains to section tracks.
//
// The problem is parallel-machine scheduling with release dates where the
// processing time depends on the machine only. The search is a depth-first
// branch and bound over semi-active schedules generated in non-decreasing
// start order, seeded by greedy list schedules. Several branching strategies
// run concurrently against one shared incumbent; the first strategy to
// exhaust its tree proves the incumbent optimal and stops the others.
//
// The wall-clock budget is enforced through the context deadline. When it
// expires the best schedule found so far is returned with StatusFeasible, or
// StatusTimeout when none was found.
package solver
