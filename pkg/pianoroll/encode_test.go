package pianoroll

import (
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rollWith(t *testing.T, pitches, steps int, cells map[[2]int]uint8) *Matrix {
	t.Helper()
	m := NewMatrix(pitches, steps)
	for pos, v := range cells {
		m.Set(pos[0], pos[1], v)
	}
	return m
}

func assertNotesEqual(t *testing.T, want, got []Note) {
	t.Helper()
	require.Len(t, got, len(want), "notes: %v", got)
	for i := range want {
		assert.Equal(t, want[i].Pitch, got[i].Pitch, "note %d pitch", i)
		assert.Equal(t, want[i].Velocity, got[i].Velocity, "note %d velocity", i)
		assert.InDelta(t, want[i].Start, got[i].Start, 1e-9, "note %d start", i)
		assert.InDelta(t, want[i].End, got[i].End, 1e-9, "note %d end", i)
	}
}

func TestEncodeEmptyMatrix(t *testing.T) {
	for _, shape := range [][2]int{{128, 0}, {128, 10}, {0, 0}, {3, 7}} {
		notes, err := Encode(NewMatrix(shape[0], shape[1]), 5)
		require.NoError(t, err)
		assert.NotNil(t, notes)
		assert.Empty(t, notes, "shape %v", shape)
	}
}

func TestEncodeSingleSampleNote(t *testing.T) {
	m := rollWith(t, NumPitches, 10, map[[2]int]uint8{{60, 3}: 100})

	notes, err := Encode(m, 5)
	require.NoError(t, err)
	assertNotesEqual(t, []Note{{Pitch: 60, Velocity: 100, Start: 0.6, End: 0.8}}, notes)
}

func TestEncodeBoundaryNotes(t *testing.T) {
	const fs = 4.0
	for k := 0; k < 6; k++ {
		m := NewMatrix(NumPitches, 6)
		for step := 0; step <= k; step++ {
			m.Set(42, step, 90)
		}

		notes, err := Encode(m, fs)
		require.NoError(t, err)
		assertNotesEqual(t, []Note{{Pitch: 42, Velocity: 90, Start: 0, End: float64(k+1) / fs}}, notes)
	}
}

func TestEncodeNoteTouchingLastColumn(t *testing.T) {
	m := rollWith(t, NumPitches, 5, map[[2]int]uint8{{10, 3}: 20, {10, 4}: 20})

	notes, err := Encode(m, 10)
	require.NoError(t, err)
	assertNotesEqual(t, []Note{{Pitch: 10, Velocity: 20, Start: 0.3, End: 0.5}}, notes)
}

func TestEncodeMultiPitchIndependence(t *testing.T) {
	m := rollWith(t, NumPitches, 12, map[[2]int]uint8{
		{40, 0}: 50, {40, 1}: 50, {40, 5}: 70,
		{72, 1}: 30, {72, 2}: 30, {72, 3}: 30, {72, 10}: 127, {72, 11}: 127,
	})

	all, err := Encode(m, 8)
	require.NoError(t, err)

	var combined []Note
	for _, p := range []int{40, 72} {
		single := NewMatrix(NumPitches, m.Steps())
		for step := 0; step < m.Steps(); step++ {
			single.Set(p, step, m.At(p, step))
		}
		notes, err := Encode(single, 8)
		require.NoError(t, err)
		combined = append(combined, notes...)
	}
	SortNotes(combined)

	assertNotesEqual(t, combined, all)
}

func TestEncodeSortsByStartThenPitch(t *testing.T) {
	m := rollWith(t, NumPitches, 4, map[[2]int]uint8{
		{60, 0}: 1, {60, 1}: 1, {60, 2}: 1,
		{0, 0}: 2,
		{30, 1}: 3,
	})

	notes, err := Encode(m, 1)
	require.NoError(t, err)
	assertNotesEqual(t, []Note{
		{Pitch: 0, Velocity: 2, Start: 0, End: 1},
		{Pitch: 60, Velocity: 1, Start: 0, End: 3},
		{Pitch: 30, Velocity: 3, Start: 1, End: 2},
	}, notes)
}

func TestEncodeVelocityChangeSplitsByDefault(t *testing.T) {
	m, err := FromRows([][]int{{0, 80, 80, 40, 40, 0, 0}})
	require.NoError(t, err)

	notes, err := Encode(m, 2)
	require.NoError(t, err)
	assertNotesEqual(t, []Note{
		{Pitch: 0, Velocity: 80, Start: 0.5, End: 1.5},
		{Pitch: 0, Velocity: 40, Start: 1.5, End: 2.5},
	}, notes)
}

func TestEncodeVelocityChangeMerged(t *testing.T) {
	m, err := FromRows([][]int{{0, 80, 80, 40, 100, 0, 0}})
	require.NoError(t, err)

	notes, err := EncodeWithOptions(m, 2, EncodeOptions{MergeVelocityChanges: true})
	require.NoError(t, err)
	assertNotesEqual(t, []Note{{Pitch: 0, Velocity: 80, Start: 0.5, End: 2.5}}, notes)
}

func TestEncodeRejectsBadInput(t *testing.T) {
	_, err := Encode(nil, 5)
	assert.ErrorIs(t, err, ErrNilMatrix)

	for _, fs := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Encode(NewMatrix(NumPitches, 3), fs)
		assert.ErrorIs(t, err, ErrInvalidSampleRate, "fs=%v", fs)
	}

	_, err = Encode(NewMatrix(NumPitches+1, 3), 5)
	assert.ErrorIs(t, err, ErrTooManyPitches)
}

func TestRasterizeRoundTrip(t *testing.T) {
	const fs = 5.0
	m := rollWith(t, NumPitches, 9, map[[2]int]uint8{
		{0, 0}: 10, {0, 1}: 10,
		{60, 3}: 100,
		{61, 2}: 64, {61, 3}: 64, {61, 4}: 64, {61, 7}: 65, {61, 8}: 65,
		{127, 5}: 127,
	})

	notes, err := Encode(m, fs)
	require.NoError(t, err)

	back, err := Rasterize(notes, fs, NumPitches)
	require.NoError(t, err)
	assert.True(t, m.Equal(back), "rasterized matrix differs:\nwant %v\ngot  %v", m.Rows()[61], back.Rows()[61])

	again, err := Encode(back, fs)
	require.NoError(t, err)
	assertNotesEqual(t, notes, again)
}

// randomRoll fills about a quarter of the pitches with runs of random
// length and velocity, including runs that touch with a new velocity
func randomRoll(f *gofakeit.Faker) *Matrix {
	m := NewMatrix(NumPitches, f.IntRange(1, 64))
	for p := 0; p < m.Pitches(); p++ {
		if f.IntRange(0, 3) != 0 {
			continue
		}
		for t := 0; t < m.Steps(); {
			run := f.IntRange(1, 6)
			if f.Bool() {
				v := uint8(f.IntRange(1, MaxVelocity))
				for i := t; i < t+run && i < m.Steps(); i++ {
					m.Set(p, i, v)
				}
			}
			t += run
		}
	}
	return m
}

func TestRasterizeRoundTripRandomRolls(t *testing.T) {
	for seed := uint64(1); seed <= 200; seed++ {
		f := gofakeit.New(seed)
		m := randomRoll(f)
		fs := f.Float64Range(0.5, 2000)

		notes, err := Encode(m, fs)
		require.NoError(t, err)

		back, err := Rasterize(notes, fs, NumPitches)
		require.NoError(t, err)
		require.LessOrEqual(t, back.Steps(), m.Steps(), "seed %d", seed)
		assert.True(t, m.Equal(back.Resize(m.Steps())), "seed %d fs %v: rasterized matrix differs", seed, fs)

		again, err := Encode(back, fs)
		require.NoError(t, err)
		assertNotesEqual(t, notes, again)
	}
}

func TestRasterizeRejectsTooLongRolls(t *testing.T) {
	for _, end := range []float64{float64(MaxSteps)/5 + 1, 1e300} {
		m, err := Rasterize([]Note{{Pitch: 60, Velocity: 100, Start: 0, End: end}}, 5, NumPitches)
		assert.Nil(t, m)
		assert.ErrorIs(t, err, ErrTooLarge)
	}

	m, err := Rasterize([]Note{{Pitch: 60, Velocity: 100, Start: 0, End: float64(MaxSteps) / 5}}, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, MaxSteps, m.Steps())
}

func TestCheckSteps(t *testing.T) {
	assert.NoError(t, CheckSteps(10, 5, 50))
	assert.ErrorIs(t, CheckSteps(10.2, 5, 50), ErrTooLarge)
	assert.ErrorIs(t, CheckSteps(math.Inf(1), 5, 50), ErrTooLarge)
}

func TestRasterizeTrimsToLastNote(t *testing.T) {
	m := rollWith(t, NumPitches, 20, map[[2]int]uint8{{5, 2}: 9})

	notes, err := Encode(m, 10)
	require.NoError(t, err)

	back, err := Rasterize(notes, 10, NumPitches)
	require.NoError(t, err)
	assert.Equal(t, 3, back.Steps())
	assert.True(t, m.Resize(3).Equal(back))
}

func TestRasterizeLastWriteWins(t *testing.T) {
	notes := []Note{
		{Pitch: 60, Velocity: 100, Start: 0, End: 1},
		{Pitch: 60, Velocity: 20, Start: 0.5, End: 1.5},
	}

	m, err := Rasterize(notes, 2, NumPitches)
	require.NoError(t, err)
	assert.Equal(t, []uint8{100, 20, 20}, m.Row(60))
}

func TestRasterizeSkipsPitchesOutsideMatrix(t *testing.T) {
	m, err := Rasterize([]Note{{Pitch: 100, Velocity: 1, Start: 0, End: 1}}, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, m.Pitches())
	assert.True(t, m.IsSilent())
}

func TestRasterizeNoNotes(t *testing.T) {
	m, err := Rasterize(nil, 5, NumPitches)
	require.NoError(t, err)
	assert.Equal(t, NumPitches, m.Pitches())
	assert.Equal(t, 0, m.Steps())

	_, err = Rasterize(nil, 0, NumPitches)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)
}
