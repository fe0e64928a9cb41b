package dictionary

import "fmt"

// RawConnector is the sparse, feature-based connection-cost
// representation: every right/left connection id owns a fixed-width,
// padded vector of feature ids, and cost is the Scorer's sum over
// matching feature pairs.
type RawConnector struct {
	numLeft, numRight uint16
	// rightFeats[r] and leftFeats[l] are padded with InvalidFeatureID to
	// one common width (featureWidth), a multiple of simdLanes.
	rightFeats   [][]uint32
	leftFeats    [][]uint32
	featureWidth int
	scorer       *Scorer
}

// RawConnectorBuilder accumulates feature-pair costs and per-id feature
// vectors before producing an immutable RawConnector.
type RawConnectorBuilder struct {
	scorer *scorerBuilder
}

// NewRawConnectorBuilder starts a new builder.
func NewRawConnectorBuilder() *RawConnectorBuilder {
	return &RawConnectorBuilder{scorer: newScorerBuilder()}
}

// InsertCost registers the cost contributed by one (rightFeatureID,
// leftFeatureID) pair.
func (b *RawConnectorBuilder) InsertCost(rightFeatureID, leftFeatureID uint32, cost int32) {
	b.scorer.insert(rightFeatureID, leftFeatureID, cost)
}

// Build finalizes the connector given each right/left connection id's raw
// (unpadded) feature-id vector. Every vector is padded to a common width
// (the longest vector rounded up to a multiple of simdLanes).
func (b *RawConnectorBuilder) Build(rightFeatsRaw, leftFeatsRaw [][]uint32) (*RawConnector, error) {
	if len(rightFeatsRaw) == 0 || len(leftFeatsRaw) == 0 {
		return nil, newErr(ErrInvalidArgument, "raw connector: empty left/right feature table")
	}
	width := 0
	for _, v := range rightFeatsRaw {
		if len(v) > width {
			width = len(v)
		}
	}
	for _, v := range leftFeatsRaw {
		if len(v) > width {
			width = len(v)
		}
	}
	if rem := width % simdLanes; rem != 0 {
		width += simdLanes - rem
	}

	pad := func(vs [][]uint32) [][]uint32 {
		out := make([][]uint32, len(vs))
		for i, v := range vs {
			p := make([]uint32, width)
			for j := range p {
				p[j] = InvalidFeatureID
			}
			copy(p, v)
			out[i] = p
		}
		return out
	}

	return &RawConnector{
		numLeft:      uint16(len(leftFeatsRaw)),
		numRight:     uint16(len(rightFeatsRaw)),
		rightFeats:   pad(rightFeatsRaw),
		leftFeats:    pad(leftFeatsRaw),
		featureWidth: width,
		scorer:       b.scorer.build(),
	}, nil
}

func (r *RawConnector) NumLeft() uint16  { return r.numLeft }
func (r *RawConnector) NumRight() uint16 { return r.numRight }

func (r *RawConnector) Cost(rightID, leftID uint16) int32 {
	return r.scorer.AccumulateCost(r.rightFeats[rightID], r.leftFeats[leftID])
}

// permuteFeatureVectors physically permutes the feature-id vectors by
// connection id, so that post-mapping Cost(mapper.Right(r), mapper.Left(l))
// equals the pre-mapping Cost(r, l).
func (r *RawConnector) permuteFeatureVectors(mapper *ConnIdMapper) {
	newRight := make([][]uint32, len(r.rightFeats))
	for old, v := range r.rightFeats {
		newRight[mapper.Right(uint16(old))] = v
	}
	newLeft := make([][]uint32, len(r.leftFeats))
	for old, v := range r.leftFeats {
		newLeft[mapper.Left(uint16(old))] = v
	}
	r.rightFeats = newRight
	r.leftFeats = newLeft
}

// DualConnector covers a frequent subset of connection ids with a dense
// Matrix and the rest with a Raw table, routing each id to whichever
// table it participates in via per-id lookup tables. Any right/left pair
// not jointly covered by the matrix subset falls back to the raw table,
// which is built over the full id space.
type DualConnector struct {
	matrix *MatrixConnector
	raw    *RawConnector

	// inMatrix{Right,Left}[id] reports whether id is a member of the
	// matrix's frequent subset; matrixIdx gives its row/column within the
	// (smaller) matrix.
	inMatrixRight, inMatrixLeft   []bool
	matrixRightIdx, matrixLeftIdx []uint16
}

// NewDualConnector builds a dual connector. matrixRightIDs/matrixLeftIDs
// list, in matrix row/column order, which original connection ids the
// frequent-subset matrix covers; raw must already cover the full id
// space (numRight/numLeft) so every pair has a fallback.
func NewDualConnector(matrix *MatrixConnector, raw *RawConnector, matrixRightIDs, matrixLeftIDs []uint16) (*DualConnector, error) {
	if int(raw.NumRight()) == 0 || int(raw.NumLeft()) == 0 {
		return nil, newErr(ErrInvalidArgument, "dual connector: raw table must cover the full id space")
	}
	inRight := make([]bool, raw.NumRight())
	rightIdx := make([]uint16, raw.NumRight())
	for i, id := range matrixRightIDs {
		if int(id) >= len(inRight) {
			return nil, newErr(ErrInvalidArgument, fmt.Sprintf("dual connector: matrix right id %d out of range", id))
		}
		inRight[id] = true
		rightIdx[id] = uint16(i)
	}
	inLeft := make([]bool, raw.NumLeft())
	leftIdx := make([]uint16, raw.NumLeft())
	for i, id := range matrixLeftIDs {
		if int(id) >= len(inLeft) {
			return nil, newErr(ErrInvalidArgument, fmt.Sprintf("dual connector: matrix left id %d out of range", id))
		}
		inLeft[id] = true
		leftIdx[id] = uint16(i)
	}
	return &DualConnector{
		matrix:         matrix,
		raw:            raw,
		inMatrixRight:  inRight,
		inMatrixLeft:   inLeft,
		matrixRightIdx: rightIdx,
		matrixLeftIdx:  leftIdx,
	}, nil
}

func (d *DualConnector) NumLeft() uint16  { return d.raw.NumLeft() }
func (d *DualConnector) NumRight() uint16 { return d.raw.NumRight() }

func (d *DualConnector) Cost(rightID, leftID uint16) int32 {
	if d.inMatrixRight[rightID] && d.inMatrixLeft[leftID] {
		return d.matrix.Cost(d.matrixRightIdx[rightID], d.matrixLeftIdx[leftID])
	}
	return d.raw.Cost(rightID, leftID)
}
