package ubodt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/azybler/mapmatch/pkg/mmerrors"
	"github.com/azybler/mapmatch/pkg/network"
)

const csvHeader = "source;target;next_n;prev_n;next_e;distance"

// WriteCSVHeader writes the UBODT CSV header line.
func WriteCSVHeader(w io.Writer) error {
	if _, err := io.WriteString(w, csvHeader+"\n"); err != nil {
		return fmt.Errorf("%w: %v", mmerrors.ErrIO, err)
	}
	return nil
}

// WriteCSVRecord writes a single record as one CSV row, translating
// internal node/edge indices back to external ids via net. Exposed
// separately from WriteCSV so the UBODT generator can stream rows as
// they're produced instead of materializing a whole Table first.
func WriteCSVRecord(w io.Writer, r *Record, net *network.Network) error {
	_, err := fmt.Fprintf(w, "%d;%d;%d;%d;%d;%s\n",
		net.NodeExternalID(r.Source),
		net.NodeExternalID(r.Target),
		net.NodeExternalID(r.FirstN),
		net.NodeExternalID(r.PrevN),
		net.Edges[r.NextE].ID,
		strconv.FormatFloat(r.Cost, 'g', -1, 64),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", mmerrors.ErrIO, err)
	}
	return nil
}

// WriteCSV writes every record in t to w in the header-plus-rows CSV
// format, translating internal node/edge indices back to external ids
// via net.
func WriteCSV(w io.Writer, t *Table, net *network.Network) error {
	bw := bufio.NewWriter(w)
	if err := WriteCSVHeader(bw); err != nil {
		return err
	}

	var writeErr error
	t.All(func(r *Record) {
		if writeErr != nil {
			return
		}
		if err := WriteCSVRecord(bw, r, net); err != nil {
			writeErr = err
		}
	})
	if writeErr != nil {
		return writeErr
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", mmerrors.ErrIO, err)
	}
	return nil
}

// ReadCSV reads a UBODT CSV stream into a fresh Table sized by
// SelectBucketCount for the given row count estimate.
func ReadCSV(r io.Reader, net *network.Network, estimatedRows int64) (*Table, error) {
	t := NewTable(SelectBucketCount(estimatedRows))

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", mmerrors.ErrIO, err)
		}
		return t, nil
	}
	if strings.TrimSpace(sc.Text()) != csvHeader {
		return nil, fmt.Errorf("%w: unexpected UBODT CSV header %q", mmerrors.ErrIO, sc.Text())
	}

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, ";")
		if len(fields) != 6 {
			return nil, fmt.Errorf("%w: malformed UBODT row %q", mmerrors.ErrIO, line)
		}

		rec, err := parseCSVRow(fields, net)
		if err != nil {
			return nil, err
		}
		t.Insert(rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", mmerrors.ErrIO, err)
	}

	return t, nil
}

func parseCSVRow(fields []string, net *network.Network) (*Record, error) {
	sourceID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad source id: %v", mmerrors.ErrIO, err)
	}
	targetID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad target id: %v", mmerrors.ErrIO, err)
	}
	firstID, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad next_n id: %v", mmerrors.ErrIO, err)
	}
	prevID, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad prev_n id: %v", mmerrors.ErrIO, err)
	}
	edgeID, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad next_e id: %v", mmerrors.ErrIO, err)
	}
	cost, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad distance: %v", mmerrors.ErrIO, err)
	}

	source, ok := net.NodeIndexByID(sourceID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown source node id %d", mmerrors.ErrIO, sourceID)
	}
	target, ok := net.NodeIndexByID(targetID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown target node id %d", mmerrors.ErrIO, targetID)
	}
	first, ok := net.NodeIndexByID(firstID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown next_n node id %d", mmerrors.ErrIO, firstID)
	}
	prev, ok := net.NodeIndexByID(prevID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown prev_n node id %d", mmerrors.ErrIO, prevID)
	}
	edgeIdx, ok := net.EdgeIndexByID(edgeID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown next_e edge id %d", mmerrors.ErrIO, edgeID)
	}

	return &Record{
		Source: source,
		Target: target,
		FirstN: first,
		PrevN:  prev,
		NextE:  edgeIdx,
		Cost:   cost,
	}, nil
}
