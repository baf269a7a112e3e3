package compactmap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/quakesoft/qse"
)

// magic and version identify the compact map file format. Grounded on
// other_examples' q2file.Header{Magic [4]byte, Version uint32}.
var magic = [4]byte{'Q', 'B', 'S', 'P'}

const formatVersion = 1

// section indices name, in order, every typed array of spec.md §6's
// table-of-sections. Grounded on q2file's Lump directory, generalized from
// a fixed 19-entry array to however many sections this format defines.
const (
	secVertices = iota
	secPolygons
	secNodes
	secLeafs
	secLeafsPortals
	secPortals
	secSubmodels
	secSubmodelsBSPNodes
	secTextures
	secEntities
	secKeyValuePairs
	secStringsData
	secLightmapsData
	secDirectionalLightmapsData
	secLightGridHeader
	secLightGridColumns
	secLightGridSamples
	numSections
)

// section is one {offset, size} table-of-contents entry, byte-identical in
// shape to q2file.Lump.
type section struct {
	Offset uint32
	Size   uint32
}

// Header is the file's fixed leading structure: magic, version, and the
// section table. All POD sections that follow are written at a fixed
// binary.LittleEndian byte order, per SPEC_FULL.md §3.
type header struct {
	Magic    [4]byte
	Version  uint32
	Sections [numSections]section
}

// Write serializes m to w as a versioned header + section table followed
// by each section's POD payload, in the two-pass shape of spec.md §4.4:
// section offsets are only known once every section's byte length has
// been computed, so payloads are first rendered into buffers and the
// header is written once all sizes are final.
func Write(w io.Writer, m *CompactMap) error {
	buffers := make([][]byte, numSections)
	var err error

	if buffers[secVertices], err = encodeSlice(m.Vertices); err != nil {
		return err
	}
	if buffers[secPolygons], err = encodeSlice(m.Polygons); err != nil {
		return err
	}
	if buffers[secNodes], err = encodeSlice(m.Nodes); err != nil {
		return err
	}
	if buffers[secLeafs], err = encodeSlice(m.Leafs); err != nil {
		return err
	}
	if buffers[secLeafsPortals], err = encodeSlice(m.LeafsPortals); err != nil {
		return err
	}
	if buffers[secPortals], err = encodeSlice(m.Portals); err != nil {
		return err
	}
	if buffers[secSubmodels], err = encodeSlice(m.Submodels); err != nil {
		return err
	}
	if buffers[secSubmodelsBSPNodes], err = encodeSlice(m.SubmodelsBSPNodes); err != nil {
		return err
	}
	if buffers[secTextures], err = encodeSlice(m.Textures); err != nil {
		return err
	}
	if buffers[secEntities], err = encodeSlice(m.Entities); err != nil {
		return err
	}
	if buffers[secKeyValuePairs], err = encodeSlice(m.KeyValuePairs); err != nil {
		return err
	}
	buffers[secStringsData] = m.StringsData
	buffers[secLightmapsData] = m.LightmapsData
	buffers[secDirectionalLightmapsData] = m.DirectionalLightmapsData
	if buffers[secLightGridHeader], err = encodeSlice([]LightGridHeader{m.LightGrid}); err != nil {
		return err
	}
	if buffers[secLightGridColumns], err = encodeSlice(m.LightGridColumns); err != nil {
		return err
	}
	buffers[secLightGridSamples] = m.LightGridSamples

	hdr := header{Magic: magic, Version: formatVersion}
	offset := uint32(binary.Size(hdr))
	for i, b := range buffers {
		hdr.Sections[i] = section{Offset: offset, Size: uint32(len(b))}
		offset += uint32(len(b))
	}

	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("compactmap: write header: %w", err)
	}
	for i, b := range buffers {
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("compactmap: write section %d: %w", i, err)
		}
	}
	return nil
}

func encodeSlice[T any](s []T) ([]byte, error) {
	if len(s) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, s); err != nil {
		return nil, fmt.Errorf("compactmap: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Load reads a compact map file written by Write. Malformed headers
// (bad magic or version) are surfaced to the caller per spec.md §7's
// "Malformed input... surface to caller" policy; this is a build/load-time
// path, not a per-frame one.
func Load(r io.ReaderAt) (*CompactMap, error) {
	var hdr header
	hdrSize := int64(binary.Size(hdr))
	sr := io.NewSectionReader(r, 0, hdrSize)
	if err := binary.Read(sr, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("compactmap: read header: %w", err)
	}
	if hdr.Magic != magic {
		return nil, qse.NewBuildError(qse.MalformedInput, fmt.Errorf("compactmap: bad magic %v", hdr.Magic))
	}
	if hdr.Version != formatVersion {
		return nil, qse.NewBuildError(qse.MalformedInput, fmt.Errorf("compactmap: unsupported version %d", hdr.Version))
	}

	m := &CompactMap{}
	var err error

	if m.Vertices, err = decodeSection[Vertex](r, hdr.Sections[secVertices]); err != nil {
		return nil, err
	}
	if m.Polygons, err = decodeSection[Polygon](r, hdr.Sections[secPolygons]); err != nil {
		return nil, err
	}
	if m.Nodes, err = decodeSection[Node](r, hdr.Sections[secNodes]); err != nil {
		return nil, err
	}
	if m.Leafs, err = decodeSection[Leaf](r, hdr.Sections[secLeafs]); err != nil {
		return nil, err
	}
	if m.LeafsPortals, err = decodeSection[uint32](r, hdr.Sections[secLeafsPortals]); err != nil {
		return nil, err
	}
	if m.Portals, err = decodeSection[Portal](r, hdr.Sections[secPortals]); err != nil {
		return nil, err
	}
	if m.Submodels, err = decodeSection[Submodel](r, hdr.Sections[secSubmodels]); err != nil {
		return nil, err
	}
	if m.SubmodelsBSPNodes, err = decodeSection[Node](r, hdr.Sections[secSubmodelsBSPNodes]); err != nil {
		return nil, err
	}
	if m.Textures, err = decodeSection[Texture](r, hdr.Sections[secTextures]); err != nil {
		return nil, err
	}
	if m.Entities, err = decodeSection[Entity](r, hdr.Sections[secEntities]); err != nil {
		return nil, err
	}
	if m.KeyValuePairs, err = decodeSection[KeyValue](r, hdr.Sections[secKeyValuePairs]); err != nil {
		return nil, err
	}
	m.StringsData = readRaw(r, hdr.Sections[secStringsData])
	m.LightmapsData = readRaw(r, hdr.Sections[secLightmapsData])
	m.DirectionalLightmapsData = readRaw(r, hdr.Sections[secDirectionalLightmapsData])
	lgh, err := decodeSection[LightGridHeader](r, hdr.Sections[secLightGridHeader])
	if err != nil {
		return nil, err
	}
	if len(lgh) > 0 {
		m.LightGrid = lgh[0]
	}
	if m.LightGridColumns, err = decodeSection[uint32](r, hdr.Sections[secLightGridColumns]); err != nil {
		return nil, err
	}
	m.LightGridSamples = readRaw(r, hdr.Sections[secLightGridSamples])

	return m, nil
}

func decodeSection[T any](r io.ReaderAt, s section) ([]T, error) {
	if s.Size == 0 {
		return nil, nil
	}
	var zero T
	elemSize := binary.Size(zero)
	if elemSize <= 0 {
		return nil, fmt.Errorf("compactmap: type is not fixed-size POD")
	}
	n := int(s.Size) / elemSize
	out := make([]T, n)
	sr := io.NewSectionReader(r, int64(s.Offset), int64(s.Size))
	if err := binary.Read(sr, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("compactmap: decode section: %w", err)
	}
	return out, nil
}

func readRaw(r io.ReaderAt, s section) []byte {
	if s.Size == 0 {
		return nil
	}
	buf := make([]byte, s.Size)
	_, _ = r.ReadAt(buf, int64(s.Offset))
	return buf
}
