package dictionary

import (
	"strings"
	"testing"
)

func TestNewConnIdMapperRejectsNonPermutation(t *testing.T) {
	cases := [][]uint16{
		{0, 0, 1}, // repeated value
		{0, 1, 3}, // out of range
	}
	for _, c := range cases {
		if _, err := NewConnIdMapper(c, []uint16{0}); err == nil {
			t.Errorf("NewConnIdMapper(%v, ...) should have rejected a non-permutation", c)
		}
	}
}

func TestNewConnIdMapperAcceptsIndependentLengths(t *testing.T) {
	mapper, err := NewConnIdMapper([]uint16{1, 0}, []uint16{2, 0, 1})
	if err != nil {
		t.Fatalf("NewConnIdMapper: %v", err)
	}
	if mapper.Left(0) != 1 || mapper.Left(1) != 0 {
		t.Errorf("left mapping wrong: Left(0)=%d Left(1)=%d", mapper.Left(0), mapper.Left(1))
	}
	if mapper.Right(0) != 2 || mapper.Right(1) != 0 || mapper.Right(2) != 1 {
		t.Errorf("right mapping wrong")
	}
}

func TestLoadConnIDMapParsesNewIDColumn(t *testing.T) {
	input := "2\t0.5\n0\t0.3\n1\t0.2\n"
	perm, err := LoadConnIDMap(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadConnIDMap: %v", err)
	}
	want := []uint16{2, 0, 1}
	if len(perm) != len(want) {
		t.Fatalf("got %v, want %v", perm, want)
	}
	for i := range want {
		if perm[i] != want[i] {
			t.Errorf("perm[%d] = %d, want %d", i, perm[i], want[i])
		}
	}
}

func TestLoadConnIDMapRejectsNonPermutationFile(t *testing.T) {
	input := "0\t0.5\n0\t0.3\n"
	if _, err := LoadConnIDMap(strings.NewReader(input)); err == nil {
		t.Fatal("expected an error for a file with a repeated new-id")
	}
}

func TestLoadConnIDMapRejectsMalformedLine(t *testing.T) {
	if _, err := LoadConnIDMap(strings.NewReader("not-a-number\t0.5\n")); err == nil {
		t.Fatal("expected an error for an unparseable new-id")
	}
	if _, err := LoadConnIDMap(strings.NewReader("0\n")); err == nil {
		t.Fatal("expected an error for a line missing the probability column")
	}
}

func TestMatrixConnectorPermuteRowsColsPreservesCost(t *testing.T) {
	costs := []int16{1, 2, 3, 4} // numRight=2, numLeft=2
	conn, err := NewMatrixConnector(2, 2, costs)
	if err != nil {
		t.Fatalf("NewMatrixConnector: %v", err)
	}
	before := make([][]int32, 2)
	for r := 0; r < 2; r++ {
		before[r] = make([]int32, 2)
		for l := 0; l < 2; l++ {
			before[r][l] = conn.Cost(uint16(r), uint16(l))
		}
	}

	mapper, err := NewConnIdMapper([]uint16{1, 0}, []uint16{1, 0})
	if err != nil {
		t.Fatalf("NewConnIdMapper: %v", err)
	}
	conn.permuteRowsCols(mapper)

	for r := 0; r < 2; r++ {
		for l := 0; l < 2; l++ {
			nr, nl := mapper.Right(uint16(r)), mapper.Left(uint16(l))
			if got := conn.Cost(nr, nl); got != before[r][l] {
				t.Errorf("Cost(%d,%d) after permute = %d, want %d", nr, nl, got, before[r][l])
			}
		}
	}
}
