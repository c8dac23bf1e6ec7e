package tree

import "testing"

func TestComputeStatsDepth(t *testing.T) {
	tr := Build(doc(
		Field{Key: "name", Value: "Root"},
		Field{Key: "children", Value: []any{
			doc(
				Field{Key: "name", Value: "A"},
				Field{Key: "children", Value: []any{
					doc(
						Field{Key: "name", Value: "A1"},
						Field{Key: "children", Value: []any{
							doc(Field{Key: "name", Value: "A1a"}),
						}},
					),
				}},
			),
			doc(Field{Key: "name", Value: "B"}),
		}},
	))

	s := ComputeStats(tr)
	if s.MaxDepth != 3 {
		t.Errorf("maxDepth = %d, want 3 (root-to-leaf edge count)", s.MaxDepth)
	}
	if s.TotalNodes != 5 {
		t.Errorf("totalNodes = %d, want 5", s.TotalNodes)
	}
	if s.TotalEdges != 4 {
		t.Errorf("totalEdges = %d, want 4", s.TotalEdges)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(Build(nil))
	if s.TotalNodes != 0 || s.MaxDepth != 0 || len(s.NodesPerLevel) != 0 {
		t.Errorf("empty tree stats = %+v, want zeros", s)
	}
}

func TestStatsOverflow(t *testing.T) {
	tests := []struct {
		name string
		s    Stats
		want bool
	}{
		{"Small", Stats{TotalNodes: 10, MaxDepth: 3}, false},
		{"AtLimit", Stats{TotalNodes: MaxPracticalNodes, MaxDepth: MaxPracticalDepth}, false},
		{"TooManyNodes", Stats{TotalNodes: MaxPracticalNodes + 1}, true},
		{"TooDeep", Stats{MaxDepth: MaxPracticalDepth + 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Overflow(); got != tt.want {
				t.Errorf("Overflow() = %v, want %v", got, tt.want)
			}
		})
	}
}
