package dictionary

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"reflect"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// ModelMagic identifies a vibratogo dictionary file. The trailing "0.6"
// marks the on-disk *layout* version, deliberately decoupled from the
// module's own version — this constant is not expected to change once a
// layout ships, mirroring the teacher's DAW7 magic / vibrato's own
// MODEL_MAGIC policy.
const ModelMagic = "VibratoTokenizerRkyv 0.6\n"

const rkyvAlignment = 16

var paddingLen = (rkyvAlignment - (len(ModelMagic) % rkyvAlignment)) % rkyvAlignment
var dataStart = len(ModelMagic) + paddingLen

const (
	connectorKindMatrix uint8 = iota
	connectorKindRaw
	connectorKindDual
)

// fileHeader is the fixed-size "map of the file" written right after the
// magic+padding — the same role the teacher's Header struct plays for
// morph.dawg, generalized from one DAWG's worth of offsets to every
// dictionary table this format carries.
type fileHeader struct {
	ConnectorKind uint8
	_pad          [7]byte

	ComplexDataOffset int64
	ComplexDataLength int64

	SysTrieNodesOffset, SysTrieNodesCount int64
	SysTrieEdgesOffset, SysTrieEdgesCount int64
	SysPostingsOffset, SysPostingsCount   int64
	SysParamsOffset, SysParamsCount       int64
	SysFeatureIDOffset, SysFeatureIDCount int64

	HasUserLexicon                        uint8
	_pad2                                 [7]byte
	UsrTrieNodesOffset, UsrTrieNodesCount int64
	UsrTrieEdgesOffset, UsrTrieEdgesCount int64
	UsrPostingsOffset, UsrPostingsCount   int64
	UsrParamsOffset, UsrParamsCount       int64
	UsrFeatureIDOffset, UsrFeatureIDCount int64

	UnkOffsetsOffset, UnkOffsetsCount int64
	UnkEntriesOffset, UnkEntriesCount int64

	CharRangesOffset, CharRangesCount int64

	MatrixNumLeft, MatrixNumRight       uint16
	_pad3                               [4]byte
	MatrixCostsOffset, MatrixCostsCount int64

	RawNumLeft, RawNumRight                 uint16
	_pad4                                   [4]byte
	RawFeatureWidth                         int64
	RawRightFeatsOffset, RawRightFeatsCount int64
	RawLeftFeatsOffset, RawLeftFeatsCount   int64
	ScorerBasesOffset, ScorerBasesCount     int64
	ScorerChecksOffset, ScorerChecksCount   int64
	ScorerCostsOffset, ScorerCostsCount     int64

	DualInMatrixRightOffset, DualInMatrixRightCount   int64
	DualInMatrixLeftOffset, DualInMatrixLeftCount     int64
	DualMatrixRightIdxOffset, DualMatrixRightIdxCount int64
	DualMatrixLeftIdxOffset, DualMatrixLeftIdxCount   int64
}

// complexData holds every variable-length, non-cast-friendly table —
// exactly the teacher's ComplexData role for LemmaPool/TagsPool/
// Paradigms, generalized to this dictionary's string pool and category
// table.
type complexData struct {
	FeaturePool    []string
	CategoryShapes []CategoryShape
}

// rawBytes reinterprets a slice of fixed-size values as a byte slice
// without copying — the write-side counterpart of the teacher's
// bytesToSlice.
func rawBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	hdr := reflect.SliceHeader{Data: uintptr(unsafe.Pointer(&s[0])), Len: len(s) * size, Cap: len(s) * size}
	return *(*[]byte)(unsafe.Pointer(&hdr))
}

// bytesToSlice reinterprets a byte slice as a slice of T without
// copying — this is the teacher's own bytesToSlice, generalized to every
// fixed-size record this format stores, and is what lets a loaded
// Dictionary borrow directly from an mmap region.
func bytesToSlice[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	hdr := reflect.SliceHeader{Data: uintptr(unsafe.Pointer(&b[0])), Len: len(b) / size, Cap: len(b) / size}
	return *(*[]T)(unsafe.Pointer(&hdr))
}

// sectionBuf accumulates raw sections and 8-byte-aligns each one, so
// every cast-back-to-T slice is properly aligned for its element type.
// append returns each section's offset and its length in bytes, which is
// what the header's *Count fields record.
type sectionBuf struct {
	buf bytes.Buffer
}

func (s *sectionBuf) append(b []byte) (offset, count int64) {
	for s.buf.Len()%8 != 0 {
		s.buf.WriteByte(0)
	}
	offset = int64(s.buf.Len())
	s.buf.Write(b)
	return offset, int64(len(b))
}

// Write serializes the dictionary to w in the binary format spec.md §6
// describes: magic, 0xFF padding to 16-byte alignment, then the fixed
// header followed by every table.
func (d *Dictionary) Write(w io.Writer) error {
	var sb sectionBuf
	var hdr fileHeader

	hdr.SysTrieNodesOffset, hdr.SysTrieNodesCount = sb.append(rawBytes(d.systemLexicon.trie.Nodes))
	hdr.SysTrieEdgesOffset, hdr.SysTrieEdgesCount = sb.append(rawBytes(d.systemLexicon.trie.Edges))
	hdr.SysPostingsOffset, hdr.SysPostingsCount = sb.append(rawBytes(d.systemLexicon.postings.data))
	hdr.SysParamsOffset, hdr.SysParamsCount = sb.append(rawBytes(d.systemLexicon.params))
	hdr.SysFeatureIDOffset, hdr.SysFeatureIDCount = sb.append(rawBytes(d.systemLexicon.featureID))

	if d.userLexicon != nil {
		hdr.HasUserLexicon = 1
		hdr.UsrTrieNodesOffset, hdr.UsrTrieNodesCount = sb.append(rawBytes(d.userLexicon.trie.Nodes))
		hdr.UsrTrieEdgesOffset, hdr.UsrTrieEdgesCount = sb.append(rawBytes(d.userLexicon.trie.Edges))
		hdr.UsrPostingsOffset, hdr.UsrPostingsCount = sb.append(rawBytes(d.userLexicon.postings.data))
		hdr.UsrParamsOffset, hdr.UsrParamsCount = sb.append(rawBytes(d.userLexicon.params))
		hdr.UsrFeatureIDOffset, hdr.UsrFeatureIDCount = sb.append(rawBytes(d.userLexicon.featureID))
	}

	hdr.UnkOffsetsOffset, hdr.UnkOffsetsCount = sb.append(rawBytes(d.unkHandler.offsets))
	hdr.UnkEntriesOffset, hdr.UnkEntriesCount = sb.append(rawBytes(d.unkHandler.entries))

	hdr.CharRangesOffset, hdr.CharRangesCount = sb.append(rawBytes(d.charProp.ranges))

	switch c := d.connector.(type) {
	case *MatrixConnector:
		hdr.ConnectorKind = connectorKindMatrix
		hdr.MatrixNumLeft, hdr.MatrixNumRight = c.numLeft, c.numRight
		hdr.MatrixCostsOffset, hdr.MatrixCostsCount = sb.append(rawBytes(c.costs))
	case *RawConnector:
		hdr.ConnectorKind = connectorKindRaw
		writeRawConnectorSections(&sb, &hdr, c)
	case *DualConnector:
		hdr.ConnectorKind = connectorKindDual
		hdr.MatrixNumLeft, hdr.MatrixNumRight = c.matrix.numLeft, c.matrix.numRight
		hdr.MatrixCostsOffset, hdr.MatrixCostsCount = sb.append(rawBytes(c.matrix.costs))
		writeRawConnectorSections(&sb, &hdr, c.raw)
		hdr.DualInMatrixRightOffset, hdr.DualInMatrixRightCount = sb.append(boolsToBytes(c.inMatrixRight))
		hdr.DualInMatrixLeftOffset, hdr.DualInMatrixLeftCount = sb.append(boolsToBytes(c.inMatrixLeft))
		hdr.DualMatrixRightIdxOffset, hdr.DualMatrixRightIdxCount = sb.append(rawBytes(c.matrixRightIdx))
		hdr.DualMatrixLeftIdxOffset, hdr.DualMatrixLeftIdxCount = sb.append(rawBytes(c.matrixLeftIdx))
	default:
		return newErr(ErrInvalidState, fmt.Sprintf("unknown connector type %T", d.connector))
	}

	cdBytes, err := encodeComplexData(complexData{
		FeaturePool:    d.featurePool.strings,
		CategoryShapes: categoryShapesOf(d.charProp),
	})
	if err != nil {
		return err
	}
	hdr.ComplexDataOffset, hdr.ComplexDataLength = sb.append(cdBytes)

	if _, err := w.Write([]byte(ModelMagic)); err != nil {
		return wrapErr(ErrIO, "writing magic", err)
	}
	if _, err := w.Write(bytes.Repeat([]byte{0xFF}, paddingLen)); err != nil {
		return wrapErr(ErrIO, "writing padding", err)
	}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return wrapErr(ErrIO, "writing header", err)
	}
	if _, err := w.Write(sb.buf.Bytes()); err != nil {
		return wrapErr(ErrIO, "writing sections", err)
	}
	return nil
}

func writeRawConnectorSections(sb *sectionBuf, hdr *fileHeader, c *RawConnector) {
	hdr.RawNumLeft, hdr.RawNumRight = c.numLeft, c.numRight
	hdr.RawFeatureWidth = int64(c.featureWidth)
	hdr.RawRightFeatsOffset, hdr.RawRightFeatsCount = sb.append(rawBytes(flatten2D(c.rightFeats)))
	hdr.RawLeftFeatsOffset, hdr.RawLeftFeatsCount = sb.append(rawBytes(flatten2D(c.leftFeats)))
	hdr.ScorerBasesOffset, hdr.ScorerBasesCount = sb.append(rawBytes(c.scorer.bases))
	hdr.ScorerChecksOffset, hdr.ScorerChecksCount = sb.append(rawBytes(c.scorer.checks))
	hdr.ScorerCostsOffset, hdr.ScorerCostsCount = sb.append(rawBytes(c.scorer.costs))
}

func flatten2D(rows [][]uint32) []uint32 {
	if len(rows) == 0 {
		return nil
	}
	width := len(rows[0])
	out := make([]uint32, 0, len(rows)*width)
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func unflatten2D(flat []uint32, width int) [][]uint32 {
	if width == 0 {
		return nil
	}
	n := len(flat) / width
	out := make([][]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = flat[i*width : (i+1)*width]
	}
	return out
}

func boolsToBytes(bs []bool) []byte {
	out := make([]byte, len(bs))
	for i, b := range bs {
		if b {
			out[i] = 1
		}
	}
	return out
}

func bytesToBools(b []byte) []bool {
	out := make([]bool, len(b))
	for i, v := range b {
		out[i] = v != 0
	}
	return out
}

func categoryShapesOf(cp *CharProperty) []CategoryShape {
	shapes := make([]CategoryShape, len(cp.categoryName))
	for i, name := range cp.categoryName {
		info := cp.categoryShape[uint8(i)]
		shapes[i] = CategoryShape{Name: name, Invoke: info.Invoke(), Group: info.Group(), Length: info.Length()}
	}
	return shapes
}

func encodeComplexData(cd complexData) ([]byte, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(cd); err != nil {
		return nil, wrapErr(ErrIO, "gob-encoding complex data", err)
	}
	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(raw.Bytes()); err != nil {
		return nil, wrapErr(ErrIO, "gzip-compressing complex data", err)
	}
	if err := gz.Close(); err != nil {
		return nil, wrapErr(ErrIO, "closing gzip writer", err)
	}
	return compressed.Bytes(), nil
}

func decodeComplexData(b []byte) (complexData, error) {
	var cd complexData
	gz, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return cd, wrapErr(ErrInvalidState, "opening gzip reader", err)
	}
	defer gz.Close()
	raw, err := io.ReadAll(gz)
	if err != nil {
		return cd, wrapErr(ErrInvalidState, "decompressing complex data", err)
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&cd); err != nil {
		return cd, wrapErr(ErrInvalidState, "gob-decoding complex data", err)
	}
	return cd, nil
}

// section reads back one fixed-size table from the sections region, given
// its offset and byte length as sectionBuf.append recorded them,
// bounds-checking before any cast. This is the "checker that walks the
// bytes" spec.md's on-disk format calls for: a header lying about an offset
// or length yields ErrInvalidState instead of a slice-bounds panic.
func section[T any](sections []byte, offset, count int64) ([]T, error) {
	if count == 0 {
		return nil, nil
	}
	var zero T
	size := int64(unsafe.Sizeof(zero))
	if offset < 0 || count < 0 || count%size != 0 || offset+count > int64(len(sections)) {
		return nil, newErr(ErrInvalidState, "section offset/count out of range")
	}
	return bytesToSlice[T](sections[offset : offset+count]), nil
}

// Read reconstructs a Dictionary from a complete in-memory image of the
// format Write produces — data must start at the magic byte. When data is
// backed by an mmap region, the returned Dictionary borrows directly from
// it for every fixed-size table (trie nodes/edges, postings, params, unk
// entries, char ranges, connector tables); only the complex-data block
// (feature strings, category shapes) is copied onto the heap.
func Read(data []byte) (*Dictionary, error) {
	if len(data) < dataStart || string(data[:len(ModelMagic)]) != ModelMagic {
		return nil, newErr(ErrInvalidState, "bad magic")
	}

	r := bytes.NewReader(data[dataStart:])
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, wrapErr(ErrInvalidState, "reading header", err)
	}
	headerLen := int64(r.Size()) - int64(r.Len())
	sections := data[int64(dataStart)+headerLen:]

	trieNodes, err := section[FlatTrieNode](sections, hdr.SysTrieNodesOffset, hdr.SysTrieNodesCount)
	if err != nil {
		return nil, err
	}
	trieEdges, err := section[FlatTrieEdge](sections, hdr.SysTrieEdgesOffset, hdr.SysTrieEdgesCount)
	if err != nil {
		return nil, err
	}
	sysPostings, err := section[uint32](sections, hdr.SysPostingsOffset, hdr.SysPostingsCount)
	if err != nil {
		return nil, err
	}
	sysParams, err := section[WordParam](sections, hdr.SysParamsOffset, hdr.SysParamsCount)
	if err != nil {
		return nil, err
	}

	cdBytes, err := section[byte](sections, hdr.ComplexDataOffset, hdr.ComplexDataLength)
	if err != nil {
		return nil, err
	}
	cd, err := decodeComplexData(cdBytes)
	if err != nil {
		return nil, err
	}
	pool := newStringPool()
	for _, s := range cd.FeaturePool {
		pool.intern(s)
	}

	sysFeatureIDs, err := section[uint32](sections, hdr.SysFeatureIDOffset, hdr.SysFeatureIDCount)
	if err != nil {
		return nil, err
	}
	system := &Lexicon{
		lexType:     LexSystem,
		trie:        &Trie{Nodes: trieNodes, Edges: trieEdges},
		postings:    &Postings{data: sysPostings},
		params:      sysParams,
		featureID:   sysFeatureIDs,
		featurePool: pool,
	}

	var user *Lexicon
	if hdr.HasUserLexicon == 1 {
		uNodes, err := section[FlatTrieNode](sections, hdr.UsrTrieNodesOffset, hdr.UsrTrieNodesCount)
		if err != nil {
			return nil, err
		}
		uEdges, err := section[FlatTrieEdge](sections, hdr.UsrTrieEdgesOffset, hdr.UsrTrieEdgesCount)
		if err != nil {
			return nil, err
		}
		uPostings, err := section[uint32](sections, hdr.UsrPostingsOffset, hdr.UsrPostingsCount)
		if err != nil {
			return nil, err
		}
		uParams, err := section[WordParam](sections, hdr.UsrParamsOffset, hdr.UsrParamsCount)
		if err != nil {
			return nil, err
		}
		uFeatureIDs, err := section[uint32](sections, hdr.UsrFeatureIDOffset, hdr.UsrFeatureIDCount)
		if err != nil {
			return nil, err
		}
		user = &Lexicon{
			lexType:     LexUser,
			trie:        &Trie{Nodes: uNodes, Edges: uEdges},
			postings:    &Postings{data: uPostings},
			params:      uParams,
			featureID:   uFeatureIDs,
			featurePool: pool,
		}
	}

	unkOffsets, err := section[uint32](sections, hdr.UnkOffsetsOffset, hdr.UnkOffsetsCount)
	if err != nil {
		return nil, err
	}
	unkEntries, err := section[UnkEntry](sections, hdr.UnkEntriesOffset, hdr.UnkEntriesCount)
	if err != nil {
		return nil, err
	}
	unk := &UnkHandler{offsets: unkOffsets, entries: unkEntries, featurePool: pool}

	charRanges, err := section[CharRangeEntry](sections, hdr.CharRangesOffset, hdr.CharRangesCount)
	if err != nil {
		return nil, err
	}
	charProp, err := rebuildCharProperty(cd.CategoryShapes, charRanges)
	if err != nil {
		return nil, err
	}

	var conn Connector
	switch hdr.ConnectorKind {
	case connectorKindMatrix:
		costs, err := section[int16](sections, hdr.MatrixCostsOffset, hdr.MatrixCostsCount)
		if err != nil {
			return nil, err
		}
		conn = &MatrixConnector{numLeft: hdr.MatrixNumLeft, numRight: hdr.MatrixNumRight, costs: costs}
	case connectorKindRaw:
		raw, err := readRawConnector(sections, &hdr)
		if err != nil {
			return nil, err
		}
		conn = raw
	case connectorKindDual:
		costs, err := section[int16](sections, hdr.MatrixCostsOffset, hdr.MatrixCostsCount)
		if err != nil {
			return nil, err
		}
		matrix := &MatrixConnector{numLeft: hdr.MatrixNumLeft, numRight: hdr.MatrixNumRight, costs: costs}
		raw, err := readRawConnector(sections, &hdr)
		if err != nil {
			return nil, err
		}
		inRightB, err := section[byte](sections, hdr.DualInMatrixRightOffset, hdr.DualInMatrixRightCount)
		if err != nil {
			return nil, err
		}
		inLeftB, err := section[byte](sections, hdr.DualInMatrixLeftOffset, hdr.DualInMatrixLeftCount)
		if err != nil {
			return nil, err
		}
		rightIdx, err := section[uint16](sections, hdr.DualMatrixRightIdxOffset, hdr.DualMatrixRightIdxCount)
		if err != nil {
			return nil, err
		}
		leftIdx, err := section[uint16](sections, hdr.DualMatrixLeftIdxOffset, hdr.DualMatrixLeftIdxCount)
		if err != nil {
			return nil, err
		}
		conn = &DualConnector{
			matrix:         matrix,
			raw:            raw,
			inMatrixRight:  bytesToBools(inRightB),
			inMatrixLeft:   bytesToBools(inLeftB),
			matrixRightIdx: rightIdx,
			matrixLeftIdx:  leftIdx,
		}
	default:
		return nil, newErr(ErrInvalidState, fmt.Sprintf("unknown connector kind %d", hdr.ConnectorKind))
	}

	dict := &Dictionary{
		systemLexicon: system,
		userLexicon:   user,
		connector:     conn,
		charProp:      charProp,
		unkHandler:    unk,
		featurePool:   pool,
	}
	if err := dict.validateConsistency(); err != nil {
		return nil, err
	}
	return dict, nil
}

func readRawConnector(sections []byte, hdr *fileHeader) (*RawConnector, error) {
	rightFlat, err := section[uint32](sections, hdr.RawRightFeatsOffset, hdr.RawRightFeatsCount)
	if err != nil {
		return nil, err
	}
	leftFlat, err := section[uint32](sections, hdr.RawLeftFeatsOffset, hdr.RawLeftFeatsCount)
	if err != nil {
		return nil, err
	}
	bases, err := section[uint32](sections, hdr.ScorerBasesOffset, hdr.ScorerBasesCount)
	if err != nil {
		return nil, err
	}
	checks, err := section[uint32](sections, hdr.ScorerChecksOffset, hdr.ScorerChecksCount)
	if err != nil {
		return nil, err
	}
	costs, err := section[int32](sections, hdr.ScorerCostsOffset, hdr.ScorerCostsCount)
	if err != nil {
		return nil, err
	}
	width := int(hdr.RawFeatureWidth)
	return &RawConnector{
		numLeft:      hdr.RawNumLeft,
		numRight:     hdr.RawNumRight,
		rightFeats:   unflatten2D(rightFlat, width),
		leftFeats:    unflatten2D(leftFlat, width),
		featureWidth: width,
		scorer:       &Scorer{bases: bases, checks: checks, costs: costs, useSIMDPath: cpu.X86.HasAVX2},
	}, nil
}

func rebuildCharProperty(shapes []CategoryShape, ranges []CharRangeEntry) (*CharProperty, error) {
	nameToID := make(map[string]uint8, len(shapes))
	categoryName := make([]string, len(shapes))
	categoryShape := make(map[uint8]CharInfo, len(shapes))
	for i, s := range shapes {
		id := uint8(i)
		nameToID[s.Name] = id
		categoryName[i] = s.Name
		categoryShape[id] = NewCharInfo(uint32(1)<<id, id, s.Invoke, s.Group, s.Length)
	}
	defaultID, ok := nameToID[DefaultCategoryName]
	if !ok {
		return nil, newErr(ErrInvalidState, "dictionary is missing DEFAULT category")
	}
	return &CharProperty{
		ranges:        ranges,
		defaultInfo:   categoryShape[defaultID],
		categoryName:  categoryName,
		nameToID:      nameToID,
		categoryShape: categoryShape,
	}, nil
}
