package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paleolab/fossilscan/internal/fossil"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeGrayPNG(t *testing.T, path string, v uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestAnalyzeRequiresExactlyOneInput(t *testing.T) {
	_, err := runCommand(t, "analyze")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)

	dir := t.TempDir()
	_, err = runCommand(t, "analyze", "--image", "x.png", "--directory", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestAnalyzeRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	_, err := runCommand(t, "analyze", "-d", dir, "-f", "xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestAnalyzeSingleImage(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "bone.png")
	writeGrayPNG(t, imgPath, 50)
	outPath := filepath.Join(dir, "out.json")

	out, err := runCommand(t, "analyze", "-i", imgPath, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "analyzed 1 specimen(s), 0 failed")
	assert.Contains(t, out, outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var results []fossil.Result
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 1)
	assert.Equal(t, fossil.PermineralizedBone, results[0].Classification)
}

func TestAnalyzeDirectoryBatch(t *testing.T) {
	dir := t.TempDir()
	writeGrayPNG(t, filepath.Join(dir, "a.png"), 50)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("corrupt"), 0o644))
	writeGrayPNG(t, filepath.Join(dir, "c.png"), 200)
	outPath := filepath.Join(t.TempDir(), "out.json")

	out, err := runCommand(t, "analyze", "-d", dir, "-o", outPath)
	require.NoError(t, err, "one corrupt file must not abort the batch")
	assert.Contains(t, out, "analyzed 3 specimen(s), 1 failed")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var results []fossil.Result
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 3)
	assert.True(t, results[1].Failed())
}

func TestAnalyzeEmptyBatchCSVKeepsHeader(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.csv")

	_, err := runCommand(t, "analyze", "-d", t.TempDir(), "-f", "csv", "-o", outPath)
	require.NoError(t, err)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header row only")
	assert.Equal(t, "source_path", rows[0][0])
}

func TestAnalyzeSingleImageFailureIsFatal(t *testing.T) {
	_, err := runCommand(t, "analyze", "-i", filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
}

func TestAnalyzeUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	writeGrayPNG(t, filepath.Join(dir, "a.png"), 50)
	outPath := filepath.Join(t.TempDir(), "missing", "out.json")

	_, err := runCommand(t, "analyze", "-d", dir, "-o", outPath)
	require.Error(t, err)
	assert.NoFileExists(t, outPath)
}

func TestAnalyzeWritesQRLabels(t *testing.T) {
	dir := t.TempDir()
	writeGrayPNG(t, filepath.Join(dir, "a.png"), 50)
	labelDir := filepath.Join(t.TempDir(), "labels")
	outPath := filepath.Join(t.TempDir(), "out.json")

	out, err := runCommand(t, "analyze", "-d", dir, "-o", outPath, "--qr-labels", labelDir)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 1 QR label(s)")

	entries, err := os.ReadDir(labelDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDatabaseList(t *testing.T) {
	out, err := runCommand(t, "database", "list")
	require.NoError(t, err)

	var species []fossil.Species
	require.NoError(t, json.Unmarshal([]byte(out), &species))
	assert.NotEmpty(t, species)
}

func TestDatabaseSearch(t *testing.T) {
	out, err := runCommand(t, "database", "search", "trilobite")
	require.NoError(t, err)
	assert.Contains(t, out, "Trilobite")

	out, err = runCommand(t, "database", "search", "meteorite")
	require.NoError(t, err)
	assert.Contains(t, out, "no species matching")
}

func TestInfo(t *testing.T) {
	out, err := runCommand(t, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "fossilscan "+version)
	assert.Contains(t, out, "Supported formats")
	assert.Contains(t, out, "heuristic")
}
