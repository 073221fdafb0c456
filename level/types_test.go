package level_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloodmagesoftware/bsplevel/level"
	"github.com/bloodmagesoftware/bsplevel/lineseg"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	lv := level.New()
	lv.Sectors = []level.SectorDef{{FloorHeight: 0, CeilHeight: 128, Light: 1}}
	lv.Lines = []level.LineDef{
		{From: level.Vec2{X: 0, Y: 0}, To: level.Vec2{X: 64, Y: 0}, FrontSector: 0, BackSector: level.NoSector},
	}

	path := filepath.Join(t.TempDir(), "level.yaml")
	require.NoError(t, lv.Save(path))

	loaded, err := level.Load(path)
	require.NoError(t, err)
	require.Equal(t, lv.Sectors, loaded.Sectors)
	require.Equal(t, lv.Lines, loaded.Lines)
}

func TestBuildLinesTranslatesNoSector(t *testing.T) {
	lv := level.New()
	lv.Lines = []level.LineDef{
		{From: level.Vec2{X: 0, Y: 0}, To: level.Vec2{X: 64, Y: 0}, FrontSector: 2, BackSector: level.NoSector},
	}

	lines := lv.BuildLines()

	require.Len(t, lines, 1)
	require.Equal(t, lineseg.SectorID(2), lines[0].FrontSector)
	require.Equal(t, lineseg.NoSector, lines[0].BackSector)
}

func TestBuildLinesPreservesBSPWindowSector(t *testing.T) {
	lv := level.New()
	lv.Lines = []level.LineDef{
		{
			From: level.Vec2{X: 0, Y: 0}, To: level.Vec2{X: 64, Y: 0},
			FrontSector: 0, BackSector: level.NoSector, BSPWindowSector: 3,
		},
	}

	lines := lv.BuildLines()

	require.Equal(t, lineseg.NoSector, lines[0].BackSector)
	require.Equal(t, lineseg.SectorID(3), lines[0].BSPWindowSector)
}
