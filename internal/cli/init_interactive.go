package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/imyousuf/schemascan/internal/config"
	"github.com/imyousuf/schemascan/internal/extract"
	"github.com/imyousuf/schemascan/internal/loader"
)

// candidatePaths lists the top-level directories of rootDir worth offering as
// scan paths, sorted by name.
func candidatePaths(rootDir string) []string {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || loader.SkipDir(e.Name()) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dirs = append(dirs, e.Name())
	}
	sort.Strings(dirs)
	return dirs
}

// runInteractiveInit asks for the main settings and returns the resulting
// config.
func runInteractiveInit(cmd *cobra.Command, cwd string) (*config.Config, error) {
	cfg := config.Default()

	var (
		paths       []string
		resolver    = cfg.Analysis.ModelResolver
		placeholder = cfg.Analysis.ModelPlaceholder
		format      = cfg.Output.Format
		store       string
		confirm     bool
	)

	pathOptions := []huh.Option[string]{huh.NewOption(". (whole project)", ".")}
	for _, dir := range candidatePaths(cwd) {
		pathOptions = append(pathOptions, huh.NewOption(dir, dir))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Paths to scan").
				Options(pathOptions...).
				Value(&paths).
				Filterable(true).
				Validate(func(s []string) error {
					if len(s) == 0 {
						return fmt.Errorf("select at least one path")
					}
					return nil
				}),
		).Title("Scan"),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Table name for this/self receivers").
				Options(
					huh.NewOption("Placeholder name", extract.ResolverPlaceholder),
					huh.NewOption("Enclosing class name", extract.ResolverClass),
				).
				Value(&resolver),
			huh.NewInput().
				Title("Placeholder table name").
				Value(&placeholder).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("placeholder cannot be empty")
					}
					return nil
				}),
		).Title("Models"),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Report format").
				Options(huh.NewOption("Table", "table"), huh.NewOption("JSON", "json")).
				Value(&format),
			huh.NewInput().
				Title("Node store directory").
				Description("Leave empty to skip storing nodes").
				Placeholder(".schemascan/store").
				Value(&store),
		).Title("Output"),

		huh.NewGroup(
			huh.NewConfirm().
				Title("Write configuration?").
				Value(&confirm).
				Affirmative("Yes").
				Negative("No"),
		),
	).WithInput(cmd.InOrStdin()).WithOutput(cmd.OutOrStdout())

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("interactive init: %w", err)
	}
	if !confirm {
		return nil, fmt.Errorf("init cancelled")
	}

	cfg.Paths = paths
	cfg.Analysis.ModelResolver = resolver
	cfg.Analysis.ModelPlaceholder = strings.TrimSpace(placeholder)
	cfg.Output.Format = format
	cfg.Output.Store = strings.TrimSpace(store)
	return cfg, nil
}
