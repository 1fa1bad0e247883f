package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spboyer/stratafit/internal/catalog"
	"github.com/spboyer/stratafit/internal/models"
	"github.com/spf13/cobra"
)

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect, validate and export framework catalogs",
	}
	cmd.AddCommand(newCatalogListCommand())
	cmd.AddCommand(newCatalogShowCommand())
	cmd.AddCommand(newCatalogValidateCommand())
	cmd.AddCommand(newCatalogExportCommand())
	return cmd
}

func newCatalogListCommand() *cobra.Command {
	var (
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the frameworks in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadProject()
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(catalogPath(cmd, cfg))
			if err != nil {
				return err
			}

			defs := make([]*models.FrameworkDefinition, 0, snap.Len())
			for _, d := range snap.Frameworks() {
				if category == "" || strings.EqualFold(string(d.Category), category) {
					defs = append(defs, d)
				}
			}

			if asJSON {
				return printJSON(cmd, defs)
			}

			rows := make([][]string, len(defs))
			for i, d := range defs {
				_, tagged := snap.Profile(d.ID)
				rows[i] = []string{
					d.ID,
					truncate(d.Name, 36),
					string(d.Category),
					string(d.Complexity),
					yesNo(tagged),
				}
			}
			w := cmd.OutOrStdout()
			printTable(w, []string{"ID", "NAME", "CATEGORY", "COMPLEXITY", "PROFILE"}, rows)
			meta := snap.Meta()
			fmt.Fprintf(w, "\n%d frameworks from %s (version %s)\n", len(defs), meta.Source, orDash(meta.Version))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only list frameworks in this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newCatalogShowCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <framework-id>",
		Short: "Show one framework with its profile and effectiveness data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProject()
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(catalogPath(cmd, cfg))
			if err != nil {
				return err
			}
			def, err := snap.Framework(args[0])
			if err != nil {
				return err
			}
			profile, _ := snap.Profile(def.ID)
			record, _ := snap.Effectiveness(def.ID)

			if asJSON {
				return printJSON(cmd, struct {
					Framework     *models.FrameworkDefinition `json:"framework"`
					Profile       *models.TagProfile          `json:"profile,omitempty"`
					Effectiveness *models.EffectivenessRecord `json:"effectiveness,omitempty"`
				}{def, profile, record})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatFramework(def, profile, record))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newCatalogValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Check a catalog for schema and integrity problems",
		Long: `Check a catalog for schema and integrity problems.

The path may be a directory of YAML files, a single YAML file or a .json.gz
bundle. Without a path the configured catalog is checked. Every problem is
reported, not just the first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := loadProject()
				if err != nil {
					return err
				}
				path = catalogPath(cmd, cfg)
			}

			snap, err := catalog.Load(path)
			w := cmd.OutOrStdout()
			var ie *catalog.IntegrityError
			if errors.As(err, &ie) {
				fmt.Fprintf(w, "✗ %s: %d problem(s)\n", displayPath(path), len(ie.Problems))
				for _, p := range ie.Problems {
					fmt.Fprintf(w, "  - %s\n", p)
				}
				return fmt.Errorf("catalog %s is invalid", displayPath(path))
			}
			if err != nil {
				return err
			}
			st := snap.Stats()
			fmt.Fprintf(w, "✓ %s: %d frameworks, %d profiles, %d effectiveness records\n",
				displayPath(path), st.Frameworks, st.Profiles, st.Effectiveness)
			return nil
		},
	}
}

func newCatalogExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as a compressed bundle",
		Long: `Write the catalog as a gzip-compressed JSON bundle.

The bundle can be passed to --catalog or catalog.dir like a directory of YAML
files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !catalog.IsBundle(output) {
				return fmt.Errorf("output %q must end in %s", output, catalog.BundleExt)
			}
			cfg, err := loadProject()
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(catalogPath(cmd, cfg))
			if err != nil {
				return err
			}

			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating bundle: %w", err)
			}
			if err := catalog.WriteBundle(f, snap); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing bundle: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d frameworks to %s\n", snap.Len(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "catalog"+catalog.BundleExt, "Bundle path")
	return cmd
}

func formatFramework(def *models.FrameworkDefinition, profile *models.TagProfile, record *models.EffectivenessRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", def.Name, def.ID)
	fmt.Fprintf(&b, "Category:    %s", def.Category)
	if def.Subcategory != "" {
		fmt.Fprintf(&b, " / %s", def.Subcategory)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Complexity:  %s\n", orDash(string(def.Complexity)))
	fmt.Fprintf(&b, "Time:        %s\n", orDash(def.TimeToImplement))
	if def.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", def.Description)
	}

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s:\n", title)
		for _, it := range items {
			fmt.Fprintf(&b, "  - %s\n", it)
		}
	}
	section("Key components", def.KeyComponents)
	section("Steps", def.ApplicationSteps)
	section("Expected outcomes", def.ExpectedOutcomes)

	if len(def.Relationships) > 0 {
		rels := make([]string, len(def.Relationships))
		for i, r := range def.Relationships {
			rels[i] = fmt.Sprintf("%s %s", r.Kind, r.Target)
		}
		section("Relationships", rels)
	}

	if profile == nil {
		b.WriteString("\nNo tag profile: scored with neutral defaults.\n")
	}
	if record != nil {
		fmt.Fprintf(&b, "\nEffectiveness: %s success rate, impact in %d days, %d data points\n",
			strconv.FormatFloat(record.SuccessRate, 'f', 2, 64), record.TimeToImpactDays, record.DataPoints)
	}
	return b.String()
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func displayPath(path string) string {
	if path == "" {
		return catalog.BuiltinSource
	}
	return path
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
