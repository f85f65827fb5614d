// Package mmerrors defines the sentinel error values shared across the
// matching engine. Components wrap one of these with fmt.Errorf("%w: ...")
// and callers dispatch on kind with errors.Is, rather than defining a
// custom error type per failure site.
package mmerrors

import "errors"

var (
	// ErrConfig marks an invalid matcher parameter (k, radius, gps_error,
	// vmax, factor, reverse_tolerance out of range). Aborts before
	// matching starts.
	ErrConfig = errors.New("mmerrors: invalid configuration")

	// ErrIO marks a missing/unreadable file or a malformed/truncated
	// record. Aborts before matching starts.
	ErrIO = errors.New("mmerrors: io failure")

	// ErrNetwork marks a structural problem in the road network itself:
	// a duplicate edge id, or a geometry endpoint inconsistent with its
	// declared source/target. Aborts before matching starts.
	ErrNetwork = errors.New("mmerrors: invalid network")

	// ErrEmptyCandidates marks a trajectory observation with no
	// qualifying candidate edge within radius. Per-trajectory; rejects
	// that trajectory only.
	ErrEmptyCandidates = errors.New("mmerrors: no candidates for observation")

	// ErrDisconnected marks a Viterbi layer transition where no node
	// received a finite update. Per-trajectory; yields a partial result.
	ErrDisconnected = errors.New("mmerrors: disconnected transition")

	// ErrPathGap marks a cpath reconstruction that could not bridge two
	// consecutive candidates. Per-trajectory; yields an empty cpath.
	ErrPathGap = errors.New("mmerrors: path gap")
)
