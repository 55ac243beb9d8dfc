package main

import (
	"path/filepath"
	"strings"

	"github.com/binzume/bf3dconv/bf3d"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	animationName string
	skeletonFile  string
	flipV         bool
)

var modelCmd = &cobra.Command{
	Use:   "model <input.glb> [output]",
	Short: "Export the meshes of a glTF scene",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  exportRunner(bf3d.ModeModel),
}

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy <input.glb> [output]",
	Short: "Export the skeleton of a glTF scene",
	Long:  "Export the skeleton of a glTF scene. The output file is named after the skeleton.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  exportRunner(bf3d.ModeHierarchy),
}

var animationCmd = &cobra.Command{
	Use:   "animation <input.glb|input.vmd> [output]",
	Short: "Export an animation of a glTF scene or a VMD motion",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  exportRunner(bf3d.ModeAnimation),
}

func init() {
	modelCmd.Flags().BoolVar(&flipV, "flip-v", false, "write 1-v texture coordinates")
	animationCmd.Flags().StringVar(&animationName, "animation", "", "glTF animation name (default first)")
	animationCmd.Flags().StringVar(&skeletonFile, "skeleton", "", "glTF file providing the hierarchy of a .vmd motion")
	rootCmd.AddCommand(modelCmd, hierarchyCmd, animationCmd)
}

func defaultOutputFile(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".bf3d"
}

func exportRunner(mode bf3d.Mode) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		input := args[0]
		output := defaultOutputFile(input)
		if len(args) > 1 {
			output = args[1]
		}
		tr, err := cfg.Transform()
		if err != nil {
			return err
		}

		ld := &loader{cfg: cfg, transform: tr, log: log}
		var sc *bf3d.Scene
		switch strings.ToLower(filepath.Ext(input)) {
		case ".glb", ".gltf":
			sc, err = ld.loadGLTF(input)
		case ".vmd":
			if mode != bf3d.ModeAnimation {
				return errors.Errorf("%s: a motion has no %v", input, mode)
			}
			sc, err = ld.loadVMD(input, skeletonFile)
		default:
			return errors.Errorf("unsupported input type: %s", input)
		}
		if err != nil {
			return err
		}

		enc := bf3d.NewEncoder(bf3d.WithTransform(tr), bf3d.WithLogger(log))
		path, err := enc.ExportFile(output, mode, sc)
		if err != nil {
			return err
		}
		log.Debug("done", zap.String("input", input), zap.String("output", path))
		return nil
	}
}
