package service

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kattn/djgenetics/pkg/client"
	"github.com/kattn/djgenetics/pkg/config"
	"github.com/kattn/djgenetics/pkg/midifile"
	"github.com/kattn/djgenetics/pkg/output"
	"github.com/kattn/djgenetics/pkg/pianoroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (dir string, out *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, config.Init(filepath.Join(dir, "config.toml")))

	out = &bytes.Buffer{}
	old := output.Writer
	output.Writer = out
	t.Cleanup(func() { output.Writer = old })
	return dir, out
}

func writeRoll(t *testing.T, dir string) string {
	t.Helper()
	m := pianoroll.NewMatrix(pianoroll.NumPitches, 10)
	for step := 0; step < 5; step++ {
		m.Set(60, step, 100)
	}
	m.Set(64, 9, 80)

	path := filepath.Join(dir, "roll.json")
	require.NoError(t, pianoroll.NewDocument(m, 5).Save(path))
	return path
}

func TestServiceInitialization(t *testing.T) {
	assert.NotNil(t, NewRollService())
	assert.NotNil(t, NewEvolveService())
	assert.NotNil(t, NewPublishService())
}

func TestEncodeThenDecode(t *testing.T) {
	dir, out := setup(t)
	rs := NewRollService()

	midPath := filepath.Join(dir, "out.mid")
	abs, err := rs.Encode(Source{Path: writeRoll(t, dir)}, midPath, DefaultEncodeOptions())
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
	assert.Contains(t, out.String(), abs)

	f, err := midifile.ReadFile(abs)
	require.NoError(t, err)
	require.Len(t, f.Instruments, 1)
	assert.Equal(t, uint8(2), f.Instruments[0].Program)

	rollPath := filepath.Join(dir, "decoded.json")
	require.NoError(t, rs.Decode(Source{Path: abs}, rollPath))

	decoded, fs, err := rs.Load(Source{Path: rollPath})
	require.NoError(t, err)
	assert.Equal(t, 5.0, fs)
	original, _, err := rs.Load(Source{Path: filepath.Join(dir, "roll.json")})
	require.NoError(t, err)
	assert.True(t, original.Equal(decoded))
}

func TestDecodeSummary(t *testing.T) {
	dir, out := setup(t)
	rs := NewRollService()

	midPath := filepath.Join(dir, "out.mid")
	_, err := rs.Encode(Source{Path: writeRoll(t, dir)}, midPath, DefaultEncodeOptions())
	require.NoError(t, err)
	out.Reset()

	require.NoError(t, rs.Decode(Source{Path: midPath, FS: 10}, ""))
	assert.Contains(t, out.String(), "steps: 20")
	assert.Contains(t, out.String(), "range: C4-E4")
}

func TestDecodeInstrumentOutOfRange(t *testing.T) {
	dir, _ := setup(t)
	rs := NewRollService()

	midPath := filepath.Join(dir, "out.mid")
	_, err := rs.Encode(Source{Path: writeRoll(t, dir)}, midPath, DefaultEncodeOptions())
	require.NoError(t, err)

	err = rs.Decode(Source{Path: midPath, Instrument: 4}, "")
	assert.ErrorIs(t, err, midifile.ErrInstrumentIndex)
}

func TestEncodeRejectsBadProgram(t *testing.T) {
	dir, _ := setup(t)
	_, err := NewRollService().Encode(Source{Path: writeRoll(t, dir)}, filepath.Join(dir, "x.mid"), EncodeOptions{Program: 300})
	assert.ErrorIs(t, err, midifile.ErrInvalidProgram)
}

func TestNotes(t *testing.T) {
	dir, out := setup(t)
	config.Set("output.format", "table")
	t.Cleanup(func() { config.Set("output.format", "text") })

	notes, err := NewRollService().Notes(Source{Path: writeRoll(t, dir)}, false)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, uint8(60), notes[0].Pitch)
	assert.InDelta(t, 1.0, notes[0].End, 1e-9)
	assert.InDelta(t, 2.0, notes[1].End, 1e-9)
	assert.Contains(t, out.String(), "C4")
	assert.Contains(t, out.String(), "E4")
}

func TestInspect(t *testing.T) {
	dir, out := setup(t)
	rs := NewRollService()

	midPath := filepath.Join(dir, "out.mid")
	_, err := rs.Encode(Source{Path: writeRoll(t, dir)}, midPath, EncodeOptions{Program: 5, Name: "lead"})
	require.NoError(t, err)
	out.Reset()

	f, err := rs.Inspect(midPath)
	require.NoError(t, err)
	require.Len(t, f.Instruments, 1)
	assert.Contains(t, out.String(), "1 instrument")
	assert.Contains(t, out.String(), "lead")
}

func TestLoadRejectsBadSampleRate(t *testing.T) {
	dir, _ := setup(t)
	path := filepath.Join(dir, "roll.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fs": -1, "rows": [[0]]}`), 0644))

	_, _, err := NewRollService().Load(Source{Path: path})
	assert.ErrorIs(t, err, pianoroll.ErrInvalidSampleRate)
}

func TestRender(t *testing.T) {
	dir, out := setup(t)
	rs := NewRollService()
	roll := writeRoll(t, dir)

	require.NoError(t, rs.Render(Source{Path: roll}, "", 60))
	assert.Contains(t, out.String(), "C4")

	png := filepath.Join(dir, "roll.png")
	require.NoError(t, rs.Render(Source{Path: roll}, png, 0))
	info, err := os.Stat(png)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestIndividuals(t *testing.T) {
	_, out := setup(t)
	es := NewEvolveService()

	pop, err := es.Individuals(42, 0, 3)
	require.NoError(t, err)
	require.Len(t, pop, 3)
	assert.Equal(t, 144, pop[0].Len())
	assert.Contains(t, out.String(), "3 individuals")

	again, err := es.Individuals(42, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, pop[0].Genes, again[0].Genes)

	_, err = es.Individuals(0, 8, 0)
	assert.Error(t, err)
}

func TestPublish(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"pattern":{"id":"pat_1","name":"riff"}}`))
	}))
	defer server.Close()

	t.Setenv("DJGENETICS_API_BASE_URL", server.URL)
	dir, out := setup(t)
	client.Reset()
	t.Cleanup(client.Reset)

	ps := NewPublishService()
	_, err := ps.Publish(Source{Path: writeRoll(t, dir)}, PublishOptions{})
	assert.Error(t, err)
	assert.Zero(t, hits)

	pattern, err := ps.Publish(Source{Path: filepath.Join(dir, "roll.json")}, PublishOptions{Name: "riff"})
	require.NoError(t, err)
	assert.Equal(t, "pat_1", pattern.ID)
	assert.Equal(t, 1, hits)
	assert.Contains(t, out.String(), "pat_1")
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "s", pluralize(0))
	assert.Equal(t, "", pluralize(1))
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.True(t, IsMIDI("song.MID"))
	assert.False(t, IsMIDI("roll.json"))
}
