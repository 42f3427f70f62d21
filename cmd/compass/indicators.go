package main

import (
	"sort"

	"github.com/spf13/cobra"
)

func newIndicatorsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "indicators",
		Short: "List the available indicators and their effective parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := a.cfg.Registry()
			for _, name := range registry.ListAnalyzers() {
				analyzer, err := registry.Create(name)
				if err != nil {
					return err
				}
				a.printf("%s (min %d candles)\n  %s\n", analyzer.GetName(), analyzer.MinLength(), analyzer.GetDescription())

				config := analyzer.GetConfig()
				keys := make([]string, 0, len(config))
				for k := range config {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					a.printf("    %-22s %v\n", k, config[k])
				}
			}
			return nil
		},
	}
}
