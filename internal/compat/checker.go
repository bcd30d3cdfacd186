// Package compat answers the one question the board cannot answer from
// its own data: may this mold run on that machine. The answer is advisory
// while a drag is in flight and authoritative at commit, and the two
// paths fail in opposite directions.
package compat

import "context"

// Checker is the equipment-compatibility collaborator.
//
// Peek is the advisory path: non-blocking, best-effort, possibly stale. It
// reports the latest known answer and whether one is known at all; callers
// treat unknown as compatible (fail-open) because the result only drives a
// highlight.
//
// Resolve is the authoritative path consulted when finalizing a commit. It
// blocks until an answer arrives or the context ends; an error means the
// commit must be rejected (fail-closed).
type Checker interface {
	Peek(moldCode, machineID string) (compatible, known bool)
	Resolve(ctx context.Context, moldCode, machineID string) (bool, error)
}

// Matrix is a Checker backed by a fully materialized mold-to-machine
// table, typically loaded from the local store. Every answer is known
// immediately, so Peek and Resolve coincide.
type Matrix struct {
	allowed map[string]map[string]bool
}

// NewMatrix builds a checker from mold code to allowed machine sets.
func NewMatrix(allowed map[string]map[string]bool) *Matrix {
	if allowed == nil {
		allowed = make(map[string]map[string]bool)
	}
	return &Matrix{allowed: allowed}
}

// Peek reports the table entry. Molds absent from the table are unknown
// equipment and compatible with nothing.
func (m *Matrix) Peek(moldCode, machineID string) (bool, bool) {
	machines, ok := m.allowed[moldCode]
	if !ok {
		return false, true
	}
	return machines[machineID], true
}

// Resolve returns the same answer as Peek; the matrix has no remote side.
func (m *Matrix) Resolve(_ context.Context, moldCode, machineID string) (bool, error) {
	compatible, _ := m.Peek(moldCode, machineID)
	return compatible, nil
}
