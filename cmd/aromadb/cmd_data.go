package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aromadb/aroma-catalog/app/catalog"
	"github.com/aromadb/aroma-catalog/docstore"
	"github.com/aromadb/aroma-catalog/export"
	"github.com/aromadb/aroma-catalog/models"
	"github.com/aromadb/aroma-catalog/seed"
)

var (
	seedFile     string
	exportEmail  string
	exportName   string
	exportTarget string

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			closeDB()
			return nil
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog into an empty database",
		RunE:  runSeed,
	}

	repriceCmd = &cobra.Command{
		Use:   "reprice",
		Short: "Recompute stored bundle and recipe totals from current prices",
		RunE:  runReprice,
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Copy the catalog into the document store for one operator",
		RunE:  runExport,
	}
)

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML seed file (defaults to the built-in demo catalog)")

	exportCmd.Flags().StringVar(&exportEmail, "email", "", "operator email")
	exportCmd.Flags().StringVar(&exportName, "name", "", "operator display name")
	exportCmd.Flags().StringVar(&exportTarget, "target", "", "document store directory (defaults to EXPORT_STORE_PATH)")
	_ = exportCmd.MarkFlagRequired("email")
}

func runSeed(cmd *cobra.Command, args []string) error {
	data, err := loadSeed(seedFile)
	if err != nil {
		return err
	}

	db, closeDB, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	result, err := seed.Apply(cmd.Context(), models.NewStore(db), data)
	if err != nil {
		return err
	}
	if !result.Applied {
		fmt.Fprintln(cmd.OutOrStdout(), "Database already contains data, skipping seed.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d ingredients, %d packaging items, %d bundles, %d recipes\n",
		result.Ingredients, result.PackagingItems, result.Bundles, result.Recipes)
	return nil
}

func runReprice(cmd *cobra.Command, args []string) error {
	db, closeDB, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	report, err := catalog.NewService(models.NewStore(db)).RepriceAll(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Repriced %d bundles and %d recipes\n", report.Bundles, report.Recipes)
	for _, f := range report.Failures {
		fmt.Fprintf(out, "  %s %d: %v\n", f.Entity, f.ID, f.Err)
	}
	if len(report.Failures) > 0 {
		return fmt.Errorf("%d aggregates could not be repriced", len(report.Failures))
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	target := exportTarget
	if target == "" {
		target = cfg.Export.Path
	}

	db, closeDB, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	docs, err := docstore.Open(docstore.Config{Path: target, SyncWrites: true, Logger: logger})
	if err != nil {
		return err
	}
	defer docs.Close()

	exporter := export.New(export.NewSource(models.NewStore(db)), docs)
	report, err := exporter.Run(cmd.Context(), export.Operator{Email: exportEmail, DisplayName: exportName})
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Export for %s (user id %s)\n", report.Email, report.UID)
	for _, collection := range []string{export.CollectionIngredients, export.CollectionPackaging, export.CollectionBundles, export.CollectionRecipes} {
		fmt.Fprintf(out, "  %-18s %d\n", collection, report.Counts[collection])
	}
	if err != nil {
		logger.Error("Export stopped", zap.Error(err))
		return err
	}
	if report.NewIdentity {
		fmt.Fprintf(out, "Temporary credential: %s (shown once, change it after first login)\n", report.TemporaryCredential)
	}
	return nil
}

func loadSeed(path string) (*seed.Data, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.ParseFile(path)
}
