package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mimac-sim/internal/config"
	"mimac-sim/internal/mac"
)

var (
	validateConfigPath string
	validateSchemaPath string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a configuration file against the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(validateConfigPath, validateSchemaPath)
		if err != nil {
			return err
		}
		params, err := cfg.Params()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: ok (nodes=%d horizon=%gms rate=%g/ms)\n", validateConfigPath, params.Nodes, params.Horizon, params.Rate)
		for _, id := range mac.Profiles() {
			p := params.Table.Lookup(id)
			fmt.Fprintf(out, "  %-13s wake-up %gms@%gA  ack %gms@%gA  data %gms@%gA\n", id,
				p.WakeUp.Duration, p.WakeUp.Current, p.Ack.Duration, p.Ack.Current, p.Data.Duration, p.Data.Current)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateConfigPath, "config", "config/mimac.yaml", "Path to simulation configuration YAML")
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "schemas/mimac.cue", "Path to CUE schema file")
}
