package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bloodmagesoftware/bsplevel/bsp"
	"github.com/bloodmagesoftware/bsplevel/level"
	"github.com/bloodmagesoftware/bsplevel/mesh"
	"github.com/bloodmagesoftware/bsplevel/project"
)

var validateLevelPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the BSP builder over a level file without reporting geometry",
	Long:  `Loads a level.yaml and runs the builder purely to surface duplicate-line, zero-length-line, and unclosed-sector problems.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		levelPath := validateLevelPath
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

		var warnings int
		opts := bsp.Options{
			OnUnclosedSector: func(ev bsp.UnclosedSectorEvent) {
				warnings++
				fmt.Printf("warning: unclosed sector %d near (%.3f, %.3f)\n", ev.Sector, ev.Point.X, ev.Point.Y)
			},
		}

		if _, err := bsp.Build(lv.BuildLines(), mesh.New(), opts); err != nil {
			return fmt.Errorf("%s: %w", levelPath, err)
		}

		if warnings == 0 {
			fmt.Printf("%s: ok\n", levelPath)
		} else {
			fmt.Printf("%s: %d warning(s)\n", levelPath, warnings)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateLevelPath, "level", "l", "", "path to the level.yaml file (defaults to the nearest level.yaml above the working directory)")
	rootCmd.AddCommand(validateCmd)
}
