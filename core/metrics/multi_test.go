package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordSink struct {
	solves       int
	improvements int
	closed       bool
	err          error
}

func (r *recordSink) RecordSolve(SolveEvent) error {
	r.solves++
	return r.err
}

func (r *recordSink) RecordImprovement(ImprovementEvent) error {
	r.improvements++
	return nil
}

func (r *recordSink) Close() error {
	r.closed = true
	return nil
}

type solveOnly struct{ n int }

func (s *solveOnly) RecordSolve(SolveEvent) error { s.n++; return nil }

func TestMultiSinkForwards(t *testing.T) {
	s1 := &recordSink{}
	s2 := &solveOnly{}
	m := NewMultiSink(s1, s2)
	require.NoError(t, m.RecordSolve(SolveEvent{Status: "OPTIMAL"}))
	require.NoError(t, m.RecordImprovement(ImprovementEvent{Objective: 10}))
	require.NoError(t, m.Close())

	assert.Equal(t, 1, s1.solves)
	assert.Equal(t, 1, s1.improvements)
	assert.True(t, s1.closed)
	assert.Equal(t, 1, s2.n)
}

func TestMultiSinkJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordSink{err: boom}
	ok := &recordSink{}
	err := NewMultiSink(failing, ok).RecordSolve(SolveEvent{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, ok.solves)
}
