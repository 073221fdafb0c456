package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/bloodmagesoftware/bsplevel/blocktree"
	"github.com/bloodmagesoftware/bsplevel/level"
	"github.com/bloodmagesoftware/bsplevel/project"
)

var inspectLevelPath string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print summary metadata for a level file",
	Long:  `Loads a level.yaml and reports its sector/line counts and blockmap bounds without running the builder.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		levelPath := inspectLevelPath
		if levelPath == "" {
			found, err := project.FindLevelFile()
			if err != nil {
				return fmt.Errorf("locating level file: %w", err)
			}
			levelPath = found
		}

		lv, err := level.Load(levelPath)
		if err != nil {
			return fmt.Errorf("loading %s: %w", levelPath, err)
		}

		fmt.Printf("%s\n", levelPath)
		fmt.Printf("  sectors: %d\n", len(lv.Sectors))
		fmt.Printf("  lines:   %d\n", len(lv.Lines))

		if len(lv.Lines) == 0 {
			return nil
		}

		raw := blocktree.Box{MinX: math.MaxInt, MinY: math.MaxInt, MaxX: math.MinInt, MaxY: math.MinInt}
		for _, ld := range lv.Lines {
			raw = growBox(raw, ld.From)
			raw = growBox(raw, ld.To)
		}
		bounds := blocktree.BlockmapBounds(raw)
		fmt.Printf("  bounds:  [%d, %d] - [%d, %d]\n", bounds.MinX, bounds.MinY, bounds.MaxX, bounds.MaxY)
		return nil
	},
}

func growBox(b blocktree.Box, p level.Vec2) blocktree.Box {
	x, y := int(math.Floor(p.X)), int(math.Floor(p.Y))
	if x < b.MinX {
		b.MinX = x
	}
	if y < b.MinY {
		b.MinY = y
	}
	if x > b.MaxX {
		b.MaxX = x
	}
	if y > b.MaxY {
		b.MaxY = y
	}
	return b
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectLevelPath, "level", "l", "", "path to the level.yaml file (defaults to the nearest level.yaml above the working directory)")
	rootCmd.AddCommand(inspectCmd)
}
