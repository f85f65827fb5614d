// Package ubodt implements the Upper-Bounded Origin-Destination Table:
// a compact hashtable of precomputed shortest-path first-hops for all
// node pairs whose cost is at most delta, plus the CSV and binary wire
// formats FMM and the UBODT generator exchange it in.
package ubodt

import (
	"github.com/azybler/mapmatch/pkg/network"
)

// bucketMultiplier seeds the bucket hash; it's a hash-mixing constant,
// not a semantic value.
const bucketMultiplier = 2654435761

// candidatePrimes are the bucket counts eligible for selection, smallest
// first.
var candidatePrimes = []int64{
	5003, 10039, 20029, 50047, 100669, 200003, 500000,
	1000039, 2000083, 5000101, 10000103, 20000033,
}

// Record is one UBODT entry: the first hop and total cost of the
// shortest path from Source to Target. FirstN is the first node after
// Source on that path; PrevN is the last node before Target; NextE is
// the edge (Source -> FirstN) used.
type Record struct {
	Source network.NodeIndex
	Target network.NodeIndex
	FirstN network.NodeIndex
	PrevN  network.NodeIndex
	NextE  network.EdgeIndex
	Cost   float64

	next *Record // intrusive singly-linked bucket chain
}

// Table is a chained intrusive hash of Records keyed by
// (source, target). Bucket = (source*multiplier + target) mod
// nbuckets. It also tracks the observed maximum cost as the inferred
// delta, since a table read back from disk may not know the delta it
// was generated with.
type Table struct {
	buckets     []*Record
	nbuckets    int64
	numRecords  int
	deltaObserved float64
}

// NewTable allocates an empty Table with nbuckets buckets.
func NewTable(nbuckets int64) *Table {
	if nbuckets <= 0 {
		nbuckets = 1
	}
	return &Table{buckets: make([]*Record, nbuckets), nbuckets: nbuckets}
}

func (t *Table) bucketIndex(source, target network.NodeIndex) int64 {
	key := uint64(source)*bucketMultiplier + uint64(target)
	return int64(key % uint64(t.nbuckets))
}

// Insert prepends a record to its bucket chain and updates the
// observed delta.
func (t *Table) Insert(r *Record) {
	idx := t.bucketIndex(r.Source, r.Target)
	r.next = t.buckets[idx]
	t.buckets[idx] = r
	t.numRecords++
	if r.Cost > t.deltaObserved {
		t.deltaObserved = r.Cost
	}
}

// Lookup scans the (source, target) bucket chain for a matching
// record.
func (t *Table) Lookup(source, target network.NodeIndex) (*Record, bool) {
	idx := t.bucketIndex(source, target)
	for r := t.buckets[idx]; r != nil; r = r.next {
		if r.Source == source && r.Target == target {
			return r, true
		}
	}
	return nil, false
}

// NumRecords returns the number of records stored.
func (t *Table) NumRecords() int { return t.numRecords }

// Delta returns the observed maximum cost across all inserted records,
// the inferred precomputation bound.
func (t *Table) Delta() float64 { return t.deltaObserved }

// NumBuckets returns the bucket count the table was allocated with.
func (t *Table) NumBuckets() int64 { return t.nbuckets }

// All calls visit once per stored record, in unspecified order.
func (t *Table) All(visit func(*Record)) {
	for _, head := range t.buckets {
		for r := head; r != nil; r = r.next {
			visit(r)
		}
	}
}

// EstimateRows estimates a row count from a UBODT file's size, using
// the fixed per-row byte cost of each wire format.
func EstimateRows(fileSizeBytes int64, binaryFormat bool) int64 {
	const csvBytesPerRow = 36
	const binBytesPerRow = 28
	if binaryFormat {
		return fileSizeBytes / binBytesPerRow
	}
	return fileSizeBytes / csvBytesPerRow
}

// SelectBucketCount picks the smallest candidate prime at least
// ceil(rows/2.0), falling back to the largest candidate if rows
// overflows the table.
func SelectBucketCount(rows int64) int64 {
	need := (rows + 1) / 2
	for _, p := range candidatePrimes {
		if p >= need {
			return p
		}
	}
	return candidatePrimes[len(candidatePrimes)-1]
}
