package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/kattn/djgenetics/pkg/midifile"
	"github.com/kattn/djgenetics/pkg/output"
	"github.com/kattn/djgenetics/pkg/pianoroll"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	old := output.Writer
	output.Writer = &buf
	defer func() { output.Writer = old }()

	resetFlags(rootCmd)
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dir, "config.toml")}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags undoes flag values left over from a previous Execute
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeRoll(t *testing.T, dir string) string {
	t.Helper()
	m := pianoroll.NewMatrix(pianoroll.NumPitches, 6)
	m.Set(62, 0, 90)
	m.Set(62, 1, 90)
	m.Set(62, 5, 30)
	path := filepath.Join(dir, "roll.json")
	require.NoError(t, pianoroll.NewDocument(m, 5).Save(path))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "djgenetics v"+Version)
}

func TestEncodeDecodeCommands(t *testing.T) {
	dir := t.TempDir()
	roll := writeRoll(t, dir)
	mid := filepath.Join(dir, "out.mid")

	out, err := run(t, dir, "encode", roll, "-o", mid, "--program", "10", "--name", "search")
	require.NoError(t, err)
	assert.Contains(t, out, "out.mid")

	f, err := midifile.ReadFile(mid)
	require.NoError(t, err)
	require.Len(t, f.Instruments, 1)
	assert.Equal(t, uint8(10), f.Instruments[0].Program)
	assert.Equal(t, "search", f.Instruments[0].Name)

	decoded := filepath.Join(dir, "decoded.yaml")
	_, err = run(t, dir, "decode", mid, "-o", decoded)
	require.NoError(t, err)

	doc, err := pianoroll.LoadDocument(decoded)
	require.NoError(t, err)
	m, err := doc.Matrix()
	require.NoError(t, err)
	assert.Equal(t, uint8(90), m.At(62, 1))
	assert.Equal(t, uint8(30), m.At(62, 5))
}

func TestEncodeRequiresOutput(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "encode", writeRoll(t, dir))
	assert.Error(t, err)
}

func TestNotesJSON(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "--output", "json", "notes", writeRoll(t, dir))
	require.NoError(t, err)
	assert.Contains(t, out, `"pitch": 62`)
	assert.Contains(t, out, `"velocity": 30`)
}

func TestInvalidOutputFormat(t *testing.T) {
	_, err := run(t, t.TempDir(), "--output", "xml", "version")
	assert.Error(t, err)
}

func TestDecodeBadInstrument(t *testing.T) {
	dir := t.TempDir()
	mid := filepath.Join(dir, "out.mid")
	_, err := run(t, dir, "encode", writeRoll(t, dir), "-o", mid)
	require.NoError(t, err)

	_, err = run(t, dir, "decode", mid, "-i", "3")
	assert.ErrorIs(t, err, midifile.ErrInstrumentIndex)
}
