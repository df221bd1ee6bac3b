package pointcloud

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// LAS public header fields the reader cares about. Offsets follow the
// ASPRS LAS 1.2 specification; later 1.x minor versions keep the same
// layout for these fields.
const (
	lasSignature       = "LASF"
	lasHeaderMinSize   = 227
	offPointDataOffset = 96
	offPointFormat     = 104
	offPointRecordLen  = 105
	offPointCount      = 107
	offScaleX          = 131
	offOffsetX         = 155
)

// classification byte position inside point record formats 0 through 5.
const recClassificationOffset = 15

// LASHeader summarises the parts of a LAS public header needed to
// decode point records into world coordinates.
type LASHeader struct {
	VersionMajor uint8
	VersionMinor uint8
	PointFormat  uint8
	RecordLen    uint16
	PointCount   uint32
	ScaleX       float64
	ScaleY       float64
	ScaleZ       float64
	OffsetX      float64
	OffsetY      float64
	OffsetZ      float64
	dataOffset   uint32
}

// ReadLASFile opens and decodes a .las file. LAZ-compressed archives
// must be decompressed by the ingestion tooling before this point.
func ReadLASFile(path string) ([]Point, *LASHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open las file: %w", err)
	}
	defer f.Close()
	return ReadLAS(f)
}

// ReadLAS decodes classified points from a LAS 1.x stream with point
// record formats 0 through 5. X/Y/Z are descaled into metres using the
// header scale and offset; only the classification attribute is kept
// alongside the coordinates.
func ReadLAS(r io.Reader) ([]Point, *LASHeader, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read las stream: %w", err)
	}
	if len(raw) < lasHeaderMinSize {
		return nil, nil, fmt.Errorf("las header truncated: %d bytes", len(raw))
	}
	if string(raw[0:4]) != lasSignature {
		return nil, nil, fmt.Errorf("not a LAS file: signature %q", raw[0:4])
	}

	h := &LASHeader{
		VersionMajor: raw[24],
		VersionMinor: raw[25],
		PointFormat:  raw[offPointFormat],
		RecordLen:    binary.LittleEndian.Uint16(raw[offPointRecordLen:]),
		PointCount:   binary.LittleEndian.Uint32(raw[offPointCount:]),
		dataOffset:   binary.LittleEndian.Uint32(raw[offPointDataOffset:]),
	}
	h.ScaleX = float64frombytes(raw[offScaleX:])
	h.ScaleY = float64frombytes(raw[offScaleX+8:])
	h.ScaleZ = float64frombytes(raw[offScaleX+16:])
	h.OffsetX = float64frombytes(raw[offOffsetX:])
	h.OffsetY = float64frombytes(raw[offOffsetX+8:])
	h.OffsetZ = float64frombytes(raw[offOffsetX+16:])

	if h.PointFormat > 5 {
		return nil, nil, fmt.Errorf("unsupported las point format %d (formats 0-5 supported)", h.PointFormat)
	}
	if int(h.RecordLen) < recClassificationOffset+1 {
		return nil, nil, fmt.Errorf("las point record too short: %d bytes", h.RecordLen)
	}
	if int(h.dataOffset) > len(raw) {
		return nil, nil, fmt.Errorf("las point data offset %d beyond file size %d", h.dataOffset, len(raw))
	}

	records := raw[h.dataOffset:]
	n := int(h.PointCount)
	if avail := len(records) / int(h.RecordLen); avail < n {
		n = avail
	}

	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		rec := records[i*int(h.RecordLen):]
		ix := int32(binary.LittleEndian.Uint32(rec[0:]))
		iy := int32(binary.LittleEndian.Uint32(rec[4:]))
		iz := int32(binary.LittleEndian.Uint32(rec[8:]))

		// Low five bits carry the class; the top three are the
		// synthetic/key-point/withheld flags.
		class := rec[recClassificationOffset] & 0x1f

		points = append(points, Point{
			X:     float64(ix)*h.ScaleX + h.OffsetX,
			Y:     float64(iy)*h.ScaleY + h.OffsetY,
			Z:     float64(iz)*h.ScaleZ + h.OffsetZ,
			Class: class,
		})
	}

	return points, h, nil
}

func float64frombytes(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}
