package dictionary

import "fmt"

// Connector is the shared contract of every bigram connection-cost
// representation: declare the left/right id space, and return the cost
// of transitioning from a right-id context into a left-id context.
type Connector interface {
	NumLeft() uint16
	NumRight() uint16
	Cost(rightID, leftID uint16) int32
}

// MatrixConnector is the dense representation: a flat num_right*num_left
// table of i16 costs, O(1) lookup, memory proportional to the product of
// the two dimensions.
type MatrixConnector struct {
	numLeft  uint16
	numRight uint16
	costs    []int16
}

// NewMatrixConnector builds a dense connector from a row-major cost
// table sized numRight*numLeft.
func NewMatrixConnector(numRight, numLeft uint16, costs []int16) (*MatrixConnector, error) {
	want := int(numRight) * int(numLeft)
	if len(costs) != want {
		return nil, newErr(ErrInvalidFormat, fmt.Sprintf("matrix connector: expected %d costs, got %d", want, len(costs)))
	}
	return &MatrixConnector{numLeft: numLeft, numRight: numRight, costs: costs}, nil
}

func (m *MatrixConnector) NumLeft() uint16  { return m.numLeft }
func (m *MatrixConnector) NumRight() uint16 { return m.numRight }

func (m *MatrixConnector) Cost(rightID, leftID uint16) int32 {
	return int32(m.costs[int(rightID)*int(m.numLeft)+int(leftID)])
}

// permuteRowsCols rewrites the matrix in place so that, after mapping,
// Cost(mapper.Right(r), mapper.Left(l)) equals the pre-mapping Cost(r, l)
// — the matrix-specific half of ConnIdMapper.Apply.
func (m *MatrixConnector) permuteRowsCols(mapper *ConnIdMapper) {
	newCosts := make([]int16, len(m.costs))
	for r := uint16(0); r < m.numRight; r++ {
		for l := uint16(0); l < m.numLeft; l++ {
			nr, nl := mapper.Right(r), mapper.Left(l)
			newCosts[int(nr)*int(m.numLeft)+int(nl)] = m.costs[int(r)*int(m.numLeft)+int(l)]
		}
	}
	m.costs = newCosts
}
