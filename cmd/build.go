package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bloodmagesoftware/bsplevel/bsp"
	"github.com/bloodmagesoftware/bsplevel/level"
	"github.com/bloodmagesoftware/bsplevel/mesh"
	"github.com/bloodmagesoftware/bsplevel/project"
)

var (
	buildLevelPath       string
	buildSplitCostFactor int
	buildOutPath         string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run the BSP builder over a level file",
	Long:  `Loads a level.yaml, partitions its lines into a BSP tree, and builds the DCEL mesh of each leaf's convex geometry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		levelPath := buildLevelPath
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

		var report []string
		report = append(report, fmt.Sprintf("Building %s: %d lines, %d sectors", levelPath, len(lv.Lines), len(lv.Sectors)))

		m := mesh.New()
		var warnings int
		opts := bsp.Options{
			SplitCostFactor: buildSplitCostFactor,
			OnUnclosedSector: func(ev bsp.UnclosedSectorEvent) {
				warnings++
				report = append(report, fmt.Sprintf("warning: unclosed sector %d near (%.3f, %.3f)", ev.Sector, ev.Point.X, ev.Point.Y))
			},
		}

		root, err := bsp.Build(lv.BuildLines(), m, opts)
		if err != nil {
			return fmt.Errorf("building bsp tree: %w", err)
		}

		leaves, faces := countLeaves(root)
		report = append(report, fmt.Sprintf("done: %d leaves, %d faces, %d warnings", leaves, faces, warnings))

		return writeReport(report, buildOutPath)
	},
}

func writeReport(lines []string, outPath string) error {
	w := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}

func init() {
	buildCmd.Flags().StringVarP(&buildLevelPath, "level", "l", "", "path to the level.yaml file (defaults to the nearest level.yaml above the working directory)")
	buildCmd.Flags().IntVar(&buildSplitCostFactor, "split-cost-factor", 0, "weight of the split-count term in the partition cost function (0 uses the builder default)")
	buildCmd.Flags().StringVarP(&buildOutPath, "out", "o", "", "write the build report to this path instead of stdout")
	rootCmd.AddCommand(buildCmd)
}

func countLeaves(el bsp.BspElement) (leaves, faces int) {
	switch n := el.(type) {
	case *bsp.BspNode:
		rl, rf := countLeaves(n.Right)
		ll, lf := countLeaves(n.Left)
		return rl + ll, rf + lf
	case *bsp.BspLeaf:
		faces = len(n.ExtraFaces)
		if n.HasFace {
			faces++
		}
		return 1, faces
	default:
		return 0, 0
	}
}
