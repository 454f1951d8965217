package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/fuelplan/internal/adapters/catalog"
	"github.com/okian/fuelplan/internal/domain/model"
)

type buildFlags struct {
	input    model.ScenarioInput
	heat     string
	caffeine string
	sodium   string
	hydrate  string
	fixtures string
	catalog  string
	kits     bool
	csv      bool
}

// buildOutput is the JSON document printed by the build command.
type buildOutput struct {
	Scenario model.ScenarioOutput `json:"scenario"`
	Kits     []model.Kit          `json:"kits,omitempty"`
}

func newBuildCmd(st *cliState) *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build one scenario from fixtures and print it as JSON",
		Example: `  fuelplan build --athlete ath-1 --event evt-marathon --carbs 85
  fuelplan build --athlete ath-1 --event evt-trail --route rt-ridge --kits --catalog products.csv
  fuelplan build --athlete ath-1 --event evt-marathon --csv > timeline.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *st.cfg
			// Builds run once; nothing outlives the process.
			cfg.DBPath = ""
			if f.fixtures != "" {
				cfg.FixturesPath = f.fixtures
			}
			if f.catalog != "" {
				cfg.CatalogPath = f.catalog
			}
			if !f.kits {
				cfg.CatalogPath = ""
			}

			in := f.input
			in.HeatStrategy = model.HeatStrategy(f.heat)
			in.CaffeinePlan = model.CaffeinePlan(f.caffeine)
			in.SodiumConfidence = model.SodiumConfidence(f.sodium)
			in.HydrationPlan = model.HydrationPlan(f.hydrate)

			ctx := cmd.Context()
			svc, err := newService(ctx, &cfg)
			if err != nil {
				return err
			}
			defer svc.Stop()

			out, _, err := svc.BuildScenario(ctx, in)
			if err != nil {
				return err
			}

			if f.csv {
				return catalog.WriteTimeline(cmd.OutOrStdout(), out.FuelPlan)
			}

			doc := buildOutput{Scenario: out}
			if f.kits {
				kits, err := svc.AssembleKits(ctx, out.ID)
				if err != nil {
					return err
				}
				doc.Kits = kits
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("encode output: %w", err)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.input.AthleteID, "athlete", "", "athlete id")
	fl.StringVar(&f.input.EventID, "event", "", "event id")
	fl.StringVar(&f.input.RouteID, "route", "", "route id (defaults to the event's distance and gain)")
	fl.Float64Var(&f.input.CarbTargetGPerHour, "carbs", 80, "carbohydrate target in g/h [40,120]")
	fl.StringVar(&f.heat, "heat", string(model.HeatModerate), "heat strategy: aggressive, moderate, conservative")
	fl.StringVar(&f.caffeine, "caffeine", string(model.CaffeineBalanced), "caffeine plan: low, balanced, high")
	fl.StringVar(&f.sodium, "sodium", string(model.SodiumMedium), "sodium confidence: low, medium, high")
	fl.StringVar(&f.hydrate, "hydration", string(model.HydrationSteady), "hydration plan: minimal, steady, heavy")
	fl.StringVar(&f.fixtures, "fixtures", "", "fixtures YAML (overrides config)")
	fl.StringVar(&f.catalog, "catalog", "", "product catalog CSV (overrides config)")
	fl.BoolVar(&f.kits, "kits", false, "also assemble value and premium kits")
	fl.BoolVar(&f.csv, "csv", false, "print the fuel timeline as CSV instead of JSON")
	_ = cmd.MarkFlagRequired("athlete")
	_ = cmd.MarkFlagRequired("event")
	cmd.MarkFlagsMutuallyExclusive("kits", "csv")
	return cmd
}
