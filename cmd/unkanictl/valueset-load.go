package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/server/store"
)

// valuesetLoadCmd represents the valueset load command
var valuesetLoadCmd = &cobra.Command{
	Use:   "load <file>...",
	Short: "Load FHIR ValueSet JSON documents",
	Long: `Load FHIR ValueSet JSON documents.

Each file holds one ValueSet resource. A ValueSet with the same id is
replaced, including its concepts. Files are loaded in order; the first
invalid file stops the command.

Example:
  unkanictl valueset load administrative-gender.json marital-status.json`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env, err := loadEnvironment()
		if err != nil {
			fail("%v", err)
		}

		for _, path := range args {
			vs, err := loadValueSet(cmd.Context(), env.Stores.ValueSets, path)
			if err != nil {
				fail("Failed to load %s: %v", path, err)
			}
			fmt.Fprintf(os.Stderr, "Loaded ValueSet %s (%d concepts)\n", vs.ResourceID, len(vs.Concepts))
		}
	},
}

func init() {
	valuesetCmd.AddCommand(valuesetLoadCmd)
}

func loadValueSet(ctx context.Context, valueSets store.ValueSetsStore, path string) (*model.ValueSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	vs, err := model.ParseFHIRValueSet(data)
	if err != nil {
		return nil, err
	}

	if err := valueSets.Upsert(ctx, vs); err != nil {
		return nil, err
	}
	return vs, nil
}
