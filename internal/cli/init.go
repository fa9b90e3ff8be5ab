package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imyousuf/schemascan/internal/config"
)

func newInitCmd() *cobra.Command {
	var (
		force       bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a .schemascan.yaml config file",
		Long: `Write a .schemascan.yaml file with the default configuration into the
current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFile + "." + config.DefaultConfigType
			if cfgFile != "" {
				path = cfgFile
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}

			cfg := config.Default()
			if interactive {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				if cfg, err = runInteractiveInit(cmd, cwd); err != nil {
					return err
				}
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := config.WriteConfig(cfg, path); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s\n", path)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  1. Edit paths and exclude to match your project layout")
			fmt.Fprintln(out, "  2. Run 'schemascan analyze' to list tables and views")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "choose settings with an interactive form")
	return cmd
}
