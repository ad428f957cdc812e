package scoring

import "testing"

func TestGroupPoints(t *testing.T) {
	rules := DefaultRules()
	official := []string{"Netherlands", "Senegal", "Ecuador", "Qatar"}

	tests := []struct {
		name      string
		official  []string
		predicted []string
		want      GroupScore
	}{
		{
			name:      "all four correct earns bonus",
			official:  official,
			predicted: []string{"netherlands", "SENEGAL", " Ecuador ", "Qatar"},
			want:      GroupScore{Points: 4*3 + 10, CorrectPositions: 4, Bonus: true},
		},
		{
			name:      "three of four earns no bonus",
			official:  official,
			predicted: []string{"Netherlands", "Senegal", "Ecuador", "Wales"},
			want:      GroupScore{Points: 3 * 3, CorrectPositions: 3},
		},
		{
			name:      "swapped middle positions",
			official:  []string{"A", "B", "C", "D"},
			predicted: []string{"A", "C", "B", "D"},
			want:      GroupScore{Points: 2 * 3, CorrectPositions: 2},
		},
		{
			name:      "positions score independently",
			official:  []string{"A", "B", "C", "D"},
			predicted: []string{"X", "B", "Y", "D"},
			want:      GroupScore{Points: 2 * 3, CorrectPositions: 2},
		},
		{
			name:      "shorter prediction compared up to its length",
			official:  []string{"A", "B", "C", "D"},
			predicted: []string{"A", "B"},
			want:      GroupScore{Points: 2 * 3, CorrectPositions: 2},
		},
		{
			name:      "malformed three team group gets no bonus",
			official:  []string{"A", "B", "C"},
			predicted: []string{"A", "B", "C"},
			want:      GroupScore{Points: 3 * 3, CorrectPositions: 3},
		},
		{
			name:      "longer prediction cannot exceed official",
			official:  []string{"A", "B", "C", "D"},
			predicted: []string{"A", "B", "C", "D", "E"},
			want:      GroupScore{Points: 4*3 + 10, CorrectPositions: 4, Bonus: true},
		},
		{
			name:      "blank names never match",
			official:  []string{"", "B", "C", "D"},
			predicted: []string{"", "B", "C", "D"},
			want:      GroupScore{Points: 3 * 3, CorrectPositions: 3},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := GroupPoints(rules, tc.official, tc.predicted)
			if got != tc.want {
				t.Fatalf("unexpected group score: got=%+v want=%+v", got, tc.want)
			}
		})
	}
}
