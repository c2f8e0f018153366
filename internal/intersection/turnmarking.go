package intersection

// TurnArrows selects the arrow directions painted for one marking.
type TurnArrows struct {
	Left    bool `yaml:"left"`
	Forward bool `yaml:"forward"`
	Right   bool `yaml:"right"`
}

// Any reports whether at least one arrow is set.
func (a TurnArrows) Any() bool {
	return a.Left || a.Forward || a.Right
}

// TurnMarkings are the lane arrows painted on a connected road before it
// enters the junction. A repetition is one row of Amount markings across
// the road; repetitions repeat away from the junction.
type TurnMarkings struct {
	Repetitions int `yaml:"repetitions"`
	Amount      int `yaml:"amount"`
	// StartOffset is the distance from the junction to the first row.
	StartOffset float64 `yaml:"start_offset"`
	// ContinuousOffset is the distance between consecutive rows.
	ContinuousOffset float64 `yaml:"continuous_offset"`
	YOffset          float64 `yaml:"y_offset"`
	// Markings holds the arrows of each marking in a row, left to right.
	Markings []TurnArrows `yaml:"markings"`
	// XOffsets[row][marking] is the distance from the left road edge,
	// looking into the junction. With SameXOffsets only row 0 is read.
	SameXOffsets bool        `yaml:"same_x_offsets"`
	XOffsets     [][]float64 `yaml:"x_offsets"`

	LeftPrefab    string `yaml:"left_prefab"`
	ForwardPrefab string `yaml:"forward_prefab"`
	RightPrefab   string `yaml:"right_prefab"`
}

// Turn marking limits.
const (
	MaxTurnRepetitions = 5
	MaxTurnAmount      = 20
	defaultTurnXOffset = 1.5
)

// DefaultTurnMarkings returns three rows of one left-and-forward marking.
func DefaultTurnMarkings() TurnMarkings {
	return TurnMarkings{
		Repetitions:      3,
		Amount:           1,
		StartOffset:      1.3,
		ContinuousOffset: 10,
		Markings:         []TurnArrows{{Left: true, Forward: true}},
		SameXOffsets:     true,
		XOffsets:         [][]float64{{defaultTurnXOffset}, {defaultTurnXOffset}, {defaultTurnXOffset}},
	}
}

// Normalize clamps the settings into range and sizes Markings and XOffsets
// to Amount and Repetitions. New markings point forward.
func (t *TurnMarkings) Normalize() {
	t.Repetitions = min(max(t.Repetitions, 0), MaxTurnRepetitions)
	t.Amount = min(max(t.Amount, 1), MaxTurnAmount)
	t.StartOffset = max(t.StartOffset, 0)
	t.ContinuousOffset = max(t.ContinuousOffset, 1)
	t.YOffset = min(max(t.YOffset, 0), 1)

	for len(t.Markings) < t.Amount {
		t.Markings = append(t.Markings, TurnArrows{Forward: true})
	}
	t.Markings = t.Markings[:t.Amount]

	rows := max(t.Repetitions, 1)
	for len(t.XOffsets) < rows {
		t.XOffsets = append(t.XOffsets, nil)
	}
	for i, row := range t.XOffsets {
		for len(row) < t.Amount {
			row = append(row, defaultTurnXOffset)
		}
		t.XOffsets[i] = row[:t.Amount]
	}
}

// XOffset returns the lateral position of marking m in row r.
func (t *TurnMarkings) XOffset(r, m int) float64 {
	if t.SameXOffsets {
		r = 0
	}
	if r < 0 || r >= len(t.XOffsets) || m < 0 || m >= len(t.XOffsets[r]) {
		return defaultTurnXOffset
	}
	return t.XOffsets[r][m]
}
