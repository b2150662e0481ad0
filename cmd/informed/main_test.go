package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshitk-cp/informed/internal/knowledge"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRank(t *testing.T) {
	out, err := run(t, "rank", "--top", "3", "--kb", "", "--threshold", "0.9")
	require.NoError(t, err)
	assert.Contains(t, out, "S28")
	assert.Contains(t, out, "0.4066")
}

func TestTraceHallmarkCase(t *testing.T) {
	out, err := run(t, "trace", "trigeminal-neuralgia", "--kb", "", "--threshold", "0.9")
	require.NoError(t, err)
	assert.Contains(t, out, "Simulated session: Trigeminal Neuralgia")
	assert.Contains(t, out, "after 2 questions, confident")
}

func TestTraceUnknownDiagnosis(t *testing.T) {
	_, err := run(t, "trace", "flu", "--kb", "", "--threshold", "0.9")
	assert.ErrorIs(t, err, knowledge.ErrUnknownDiagnosis)
}

func TestTraceRejectsBadThreshold(t *testing.T) {
	_, err := run(t, "trace", "migraine", "--kb", "", "--threshold", "1.5")
	assert.Error(t, err)
}

func TestCompareMarkdown(t *testing.T) {
	out, err := run(t, "compare", "--trials", "10", "--seed", "1", "--markdown", "--kb", "", "--threshold", "0.9")
	require.NoError(t, err)
	assert.Contains(t, out, "| Diagnosis")
	assert.Contains(t, out, "Migraine")
	assert.Contains(t, out, "information-gain is")
}

func TestKBExportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	_, err := run(t, "kb", "export", "-o", path, "--kb", "", "--threshold", "0.9")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	kb, err := knowledge.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, knowledge.Reference().Table(), kb.Table())

	// The exported file can itself be used as --kb.
	out, err := run(t, "rank", "--top", "1", "--kb", path, "--markdown=false")
	require.NoError(t, err)
	assert.Contains(t, out, "S28")
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))

	got := truncate("Douleur pulsatile unilatérale aggravée", 20)
	assert.True(t, utf8.ValidString(got), "got %q", got)
	assert.Equal(t, 20, utf8.RuneCountInString(got))
	assert.Equal(t, "Douleur pulsatile...", got)

	got = truncate("éééééééééé", 5)
	assert.Equal(t, "éé...", got)
}
