package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ainav/backend/internal/api"
	"ainav/backend/internal/config"
	"ainav/backend/internal/repository"
)

func newRecommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <query>",
		Short: "Run the recommendation pipeline once and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Server.WriteTimeout)
			defer cancel()

			resp, err := a.orchestrator.Recommend(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the curated workflow scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := repository.Load()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), api.ScenarioSummaries(store))
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and the embedded data tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadConfig(cfgFile); err != nil {
				return err
			}
			store, err := repository.Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d categories, %d model tiers, %d scenarios, %d cases\n",
				len(store.Categories()), len(store.Tiers()), len(store.Scenarios()), len(store.Cases()))
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
