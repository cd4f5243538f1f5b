package myfitnesspal

import (
	"bytes"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestExtractExercises(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(exercisePage))
	require.NoError(t, err)

	exercises := extractExercises(doc)
	require.Len(t, exercises, 2)

	cardio := exercises[0]
	require.Equal(t, "cardiovascular", cardio.Name)
	require.Len(t, cardio.Entries, 3)
	require.Equal(t, "Running (jogging), 8 kph", cardio.Entries[0].Name)
	require.Empty(t, cmp.Diff(map[string]float64{
		"minutes":         30,
		"calories burned": 320,
	}, cardio.Entries[0].Nutrition))

	strength := exercises[1]
	require.Equal(t, "strength training", strength.Name)
	require.Len(t, strength.Entries, 2)
	require.Equal(t, "Bench Press", strength.Entries[0].Name)
	require.Empty(t, cmp.Diff(map[string]float64{
		"sets":       3,
		"reps/set":   8,
		"weight/set": 135,
	}, strength.Entries[0].Nutrition))

	// rows rendered as N/A carry no value at all
	plank := strength.Entries[1]
	require.Equal(t, "Plank", plank.Name)
	require.Empty(t, plank.Nutrition)
	_, ok := plank.Value("sets")
	require.False(t, ok)
}

func TestExtractExercisesAbsentValues(t *testing.T) {
	page := `<table class="table0">
		<thead><tr><td>Strength Training</td><td>Sets</td><td>Reps/Set</td><td>Weight/Set</td></tr></thead>
		<tbody><tr>
			<td><a href="#">Plank</a></td>
			<td></td>
			<td> N/A *</td>
			<td>135</td>
		</tr></tbody>
	</table>`
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(page)))
	require.NoError(t, err)

	exercises := extractExercises(doc)
	require.Len(t, exercises, 1)
	require.Len(t, exercises[0].Entries, 1)

	// blank cells and decorated N/A markers both mean the value is
	// absent, not zero
	entry := exercises[0].Entries[0]
	require.Empty(t, cmp.Diff(map[string]float64{"weight/set": 135}, entry.Nutrition))
	_, ok := entry.Value("sets")
	require.False(t, ok)
	_, ok = entry.Value("reps/set")
	require.False(t, ok)
}
