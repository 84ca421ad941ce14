package commands

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/eleven-am/live-console/internal/liveconfig"
)

var presetsCmd = &cobra.Command{
	Use:   "presets [name]",
	Short: "Print session presets",
	Long: `Print the presets of the --config file, or the built-in preset when no
file is given. With a name, print that preset only.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := liveconfig.Load(configFile)
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		return printPresets(cmd.OutOrStdout(), file, name)
	},
}

func printPresets(w io.Writer, file *liveconfig.File, name string) error {
	if name != "" {
		cfg, err := file.Preset(name)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	fmt.Fprintf(w, "# presets: %v (default %s)\n", file.Names(), file.Default)
	return nil
}
