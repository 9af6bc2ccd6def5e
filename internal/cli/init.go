package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todograph/internal/paths"
	"github.com/mesh-intelligence/todograph/internal/seed"
)

const seedFileName = "seed.yaml"

func newInitCmd(flags *rootFlags) *cobra.Command {
	var withSeed bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml",
		Long: "Create the configuration directory and a config.yaml with default values.\n" +
			"With --seed, also write the demo dataset to seed.yaml for editing; point\n" +
			"seed_file at it to serve the edited records. Existing files are left untouched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := resolveConfigDir(flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			written, err := writeConfigIfMissing(configDir)
			if err != nil {
				return sysError("write config: %w", err)
			}
			path := paths.ConfigFile(configDir)
			if written {
				fmt.Fprintf(out, "Wrote %s\n", path)
			} else {
				fmt.Fprintf(out, "Config already exists at %s\n", path)
			}

			if !withSeed {
				return nil
			}
			seedPath := filepath.Join(configDir, seedFileName)
			if _, err := os.Stat(seedPath); err == nil {
				fmt.Fprintf(out, "Seed already exists at %s\n", seedPath)
				return nil
			}
			d, err := seed.Default()
			if err != nil {
				return sysError("load demo dataset: %w", err)
			}
			if err := seed.WriteFile(seedPath, d); err != nil {
				return sysError("write seed: %w", err)
			}
			fmt.Fprintf(out, "Wrote %s\n", seedPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withSeed, "seed", false, "also write the demo dataset to seed.yaml")
	return cmd
}
