package ubodt

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/azybler/mapmatch/pkg/mmerrors"
	"github.com/azybler/mapmatch/pkg/network"
)

// binaryRecordSize is the fixed width of one UBODT binary record: five
// little-endian int32 ids followed by a little-endian float64 cost.
// There is no header, no CRC32 trailer, and no length framing — just
// this literal 28-byte layout repeated, so any reader that only knows
// the byte count can decode it.
const binaryRecordSize = 5*4 + 8

// EncodeBinaryRecord writes r's 28-byte wire representation into buf,
// which must be at least binaryRecordSize long. WriteBinary calls it
// once per record of the Table it writes.
func EncodeBinaryRecord(buf []byte, r *Record, net *network.Network) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(int32(net.NodeExternalID(r.Source))))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(int32(net.NodeExternalID(r.Target))))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(int32(net.NodeExternalID(r.FirstN))))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(int32(net.NodeExternalID(r.PrevN))))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(int32(net.Edges[r.NextE].ID)))
	binary.LittleEndian.PutUint64(buf[20:28], math.Float64bits(r.Cost))
}

// BinaryRecordSize is the fixed width of one UBODT binary record.
const BinaryRecordSize = binaryRecordSize

// WriteBinary atomically writes every record in t to path in the
// fixed-width binary format, using a temp-file-plus-rename pattern so a
// reader never observes a partially written file.
func WriteBinary(path string, t *Table, net *network.Network) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", mmerrors.ErrIO, err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	bw := bufio.NewWriter(f)
	buf := make([]byte, binaryRecordSize)

	var writeErr error
	t.All(func(r *Record) {
		if writeErr != nil {
			return
		}
		EncodeBinaryRecord(buf, r, net)
		if _, err := bw.Write(buf); err != nil {
			writeErr = err
		}
	})
	if writeErr != nil {
		return fmt.Errorf("%w: %v", mmerrors.ErrIO, writeErr)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %v", mmerrors.ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %v", mmerrors.ErrIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: rename: %v", mmerrors.ErrIO, err)
	}
	return nil
}

// ReadBinary reads a UBODT binary stream, detecting EOF by stream
// length — there is no record count header.
func ReadBinary(r io.Reader, net *network.Network, estimatedRows int64) (*Table, error) {
	t := NewTable(SelectBucketCount(estimatedRows))

	br := bufio.NewReader(r)
	buf := make([]byte, binaryRecordSize)
	for {
		_, err := io.ReadFull(br, buf)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: truncated UBODT binary record", mmerrors.ErrIO)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", mmerrors.ErrIO, err)
		}

		sourceID := int64(int32(binary.LittleEndian.Uint32(buf[0:4])))
		targetID := int64(int32(binary.LittleEndian.Uint32(buf[4:8])))
		firstID := int64(int32(binary.LittleEndian.Uint32(buf[8:12])))
		prevID := int64(int32(binary.LittleEndian.Uint32(buf[12:16])))
		edgeID := int64(int32(binary.LittleEndian.Uint32(buf[16:20])))
		cost := math.Float64frombits(binary.LittleEndian.Uint64(buf[20:28]))

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

		t.Insert(&Record{
			Source: source,
			Target: target,
			FirstN: first,
			PrevN:  prev,
			NextE:  edgeIdx,
			Cost:   cost,
		})
	}

	return t, nil
}
