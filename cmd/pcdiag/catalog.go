package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/engine"
)

func newCatalogCmd() *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the CPU/GPU hardware catalog",
	}

	lookupCmd := &cobra.Command{
		Use:   "lookup <cpu|gpu> <name>",
		Short: "Find a part by (partial) model name and list upgrade candidates",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalogFor(cmd, args[0])
			if err != nil {
				return err
			}
			return lookupPart(cmd.OutOrStdout(), c, strings.Join(args[1:], " "))
		},
	}

	listCmd := &cobra.Command{
		Use:   "list <cpu|gpu>",
		Short: "List every catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalogFor(cmd, args[0])
			if err != nil {
				return err
			}
			return writeEntries(cmd.OutOrStdout(), c.Entries())
		},
	}

	catalogCmd.AddCommand(lookupCmd, listCmd)
	return catalogCmd
}

// catalogFor returns the catalog of the given kind, honoring --catalog.
func catalogFor(cmd *cobra.Command, kind string) (*catalog.Catalog, error) {
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	cpus, gpus, err := loadCatalogs(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(kind) {
	case "cpu":
		return cpus, nil
	case "gpu":
		return gpus, nil
	}
	return nil, fmt.Errorf("kind must be cpu or gpu, got %q", kind)
}

func lookupPart(w io.Writer, c *catalog.Catalog, name string) error {
	e, ok := c.Lookup(name)
	if !ok {
		return fmt.Errorf("no catalog entry matches %q", name)
	}
	fmt.Fprintf(w, "%s — %s tier, gaming score %d, released %d, $%.0f (MSRP $%.0f)\n",
		e.Name, e.Tier, e.GamingScore, e.ReleaseYear, e.Price, e.MSRP)

	up := c.UpgradeCandidates(e, 0)
	if len(up) == 0 {
		fmt.Fprintln(w, "\nNo upgrade candidates: already top of the catalog.")
		return nil
	}
	fmt.Fprintf(w, "\nUpgrade candidates (%s):\n", engine.PriceRange(up))
	return writeEntries(w, up)
}

func writeEntries(w io.Writer, entries []catalog.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTIER\tSCORE\tYEAR\tPRICE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t$%.0f\n", e.Name, e.Tier, e.GamingScore, e.ReleaseYear, e.Price)
	}
	return tw.Flush()
}
