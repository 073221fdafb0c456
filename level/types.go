// Package level declares the YAML-persisted map model the builder
// consumes: vertices, sectors and lines, modeled only to the depth the
// bsp builder needs to drive partitioning. Level loading from other
// formats (WAD readers) and everything consuming the built tree
// (renderer, collision, AI) are out of scope.
package level

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bloodmagesoftware/bsplevel/bsp"
	"github.com/bloodmagesoftware/bsplevel/lineseg"
	"github.com/bloodmagesoftware/bsplevel/mesh"
)

type (
	// Level is a playable map: its sectors and the lines bounding them.
	Level struct {
		// Sectors is indexed by position; a LineDef's FrontSector/
		// BackSector/BSPWindowSector reference a sector by that index.
		Sectors []SectorDef `yaml:"sectors"`
		Lines   []LineDef   `yaml:"lines"`
	}

	// SectorDef is an input sector. FloorHeight/CeilHeight/Light are
	// carried through for level-editing round-trips; the builder itself
	// only needs a sector's identity (its index into Sectors).
	SectorDef struct {
		FloorHeight float64 `yaml:"floor_height"`
		CeilHeight  float64 `yaml:"ceil_height"`
		Light       float64 `yaml:"light"`
	}

	// LineDef is an input line: two endpoints and front/back sector
	// indices (NoSector for "no sector" on either side).
	LineDef struct {
		From Vec2 `yaml:"from"`
		To   Vec2 `yaml:"to"`

		FrontSector int `yaml:"front_sector"`
		BackSector  int `yaml:"back_sector,omitempty"`

		// BSPWindowSector is the deprecated compatibility hint: when set
		// (>= 0) on a line whose BackSector is NoSector, the builder
		// treats the line as two-sided against this sector during
		// initial segmentation only.
		BSPWindowSector int `yaml:"bsp_window_sector,omitempty"`
	}

	Vec2 struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	}
)

// NoSector is the YAML sentinel for "no sector attributed" on a LineDef
// side — -1 rather than overloading 0, which is a valid sector index.
const NoSector = -1

// New returns an empty level.
func New() *Level {
	return &Level{}
}

// Save writes l as indented YAML to path, creating parent directories as
// needed.
func (l *Level) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	defer encoder.Close()
	encoder.SetIndent(4)

	if err := encoder.Encode(l); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

// Load reads a level from path.
func Load(path string) (*Level, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	l := New()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(l); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return l, nil
}

// BuildLines converts the level's LineDefs into the bsp package's
// builder-facing Line slice, translating NoSector indices to
// lineseg.NoSector.
func (l *Level) BuildLines() []bsp.Line {
	lines := make([]bsp.Line, len(l.Lines))
	for i, ld := range l.Lines {
		lines[i] = bsp.Line{
			Index:           i,
			From:            mesh.Point{X: ld.From.X, Y: ld.From.Y},
			To:              mesh.Point{X: ld.To.X, Y: ld.To.Y},
			FrontSector:     sectorID(ld.FrontSector),
			BackSector:      sectorID(ld.BackSector),
			BSPWindowSector: sectorID(ld.BSPWindowSector),
		}
	}
	return lines
}

func sectorID(i int) lineseg.SectorID {
	if i < 0 {
		return lineseg.NoSector
	}
	return lineseg.SectorID(i)
}
