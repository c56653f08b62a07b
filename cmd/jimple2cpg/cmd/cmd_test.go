package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLowerFixtureScenario1 exercises the same wiring runLower uses —
// fixture.Load, lower.Run with seeded stub indexes — against a fixture on
// disk, the way "jimple2cpg lower lower/testdata/scenario1.yaml" would.
func TestLowerFixtureScenario1(t *testing.T) {
	m, res, err := lowerFixture("../../../lower/testdata/scenario1.yaml")
	require.NoError(t, err)
	require.Equal(t, "Scenario1.run:void()", m.FullName)
	require.False(t, res.HasErrors())
	require.NotEmpty(t, res.Graph.Nodes())
}

func TestLowerFixtureScenario5Switch(t *testing.T) {
	m, res, err := lowerFixture("../../../lower/testdata/scenario5_switch.yaml")
	require.NoError(t, err)
	require.Equal(t, "Scenario5.run:void(int)", m.FullName)
	require.False(t, res.HasErrors())
}

func TestLowerFixtureMissingFile(t *testing.T) {
	_, _, err := lowerFixture("../../../lower/testdata/does_not_exist.yaml")
	require.Error(t, err)
}

func TestPrintGraphRejectsUnknownFormat(t *testing.T) {
	_, res, err := lowerFixture("../../../lower/testdata/scenario1.yaml")
	require.NoError(t, err)
	err = printGraph(res.Graph, "yaml")
	require.Error(t, err)
}

func TestPrintGraphTextAndDOT(t *testing.T) {
	_, res, err := lowerFixture("../../../lower/testdata/scenario1.yaml")
	require.NoError(t, err)
	require.NoError(t, printGraph(res.Graph, "text"))
	require.NoError(t, printGraph(res.Graph, "dot"))
}

func TestArchiveGraphWritesFile(t *testing.T) {
	_, res, err := lowerFixture("../../../lower/testdata/scenario1.yaml")
	require.NoError(t, err)

	path := t.TempDir() + "/out.cpg.gz"
	require.NoError(t, archiveGraph(res.Graph, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 0)
	require.True(t, bytes.HasPrefix(data, []byte{0x1f, 0x8b})) // gzip magic
}
