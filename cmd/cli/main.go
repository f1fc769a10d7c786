package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"bookingsdash/domain/bookings"
	"bookingsdash/internal/api"
	"bookingsdash/internal/config"
	"bookingsdash/internal/container"
	"bookingsdash/internal/sample"
	"bookingsdash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// previewRows is how many rows clean and show print per period
const previewRows = 20

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "bookings",
		Short: "Clean the bookings workbook and serve the dashboard",
	}

	rootCmd.AddCommand(
		newCleanCmd(),
		newShowCmd(),
		newSheetsCmd(),
		newServeCmd(),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadContainer reads configuration and builds the dependency container
func loadContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(ctx, cfg)
}

func newCleanCmd() *cobra.Command {
	var workbook string
	var period string
	var out string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Reshape the workbook into the three cleaned period tables",
		Long: `Read the three period sheets, reshape them to one row per brand and
category, and save them to the configured store (STORE=csv|postgres|sqlite).

With --period only that period is cleaned and written to --out (or stdout);
nothing is saved to the store. A .csv input is read as that period's sheet.

Example: bookings clean --workbook "TBH Case Study - Analyst.xlsx"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			if workbook == "" {
				workbook = c.Config.Data.WorkbookFile
			}

			if period != "" {
				return runCleanPeriod(ctx, c, workbook, period, out, cmd.OutOrStdout())
			}

			snapshot, err := c.Pipeline.Run(ctx, workbook)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s\n\n", snapshot.RunID)
			return printSnapshot(cmd.OutOrStdout(), snapshot, previewRows)
		},
	}

	cmd.Flags().StringVar(&workbook, "workbook", "", "Workbook path (default WORKBOOK_FILE)")
	cmd.Flags().StringVar(&period, "period", "", "Clean a single period (Jan, Feb, YTD)")
	cmd.Flags().StringVar(&out, "out", "", "Output CSV for --period (default stdout)")

	return cmd
}

func runCleanPeriod(ctx context.Context, c *container.Container, path, rawPeriod, out string, stdout io.Writer) error {
	period, err := bookings.ParsePeriod(rawPeriod)
	if err != nil {
		return err
	}
	rows, err := c.Pipeline.CleanPeriod(ctx, path, period)
	if err != nil {
		return err
	}

	if out == "" {
		return bookings.EncodeCSV(stdout, rows)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := bookings.EncodeCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %d rows to %s\n", len(rows), out)
	return nil
}

func newShowCmd() *cobra.Command {
	var period string
	var rows int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the cleaned tables from the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			snapshot, err := c.Repo.Load(ctx)
			if err != nil {
				return err
			}

			if period == "" {
				return printSnapshot(cmd.OutOrStdout(), snapshot, rows)
			}
			p, err := bookings.ParsePeriod(period)
			if err != nil {
				return err
			}
			layout, _ := bookings.LayoutFor(p)
			table, _ := snapshot.Table(p)
			return printTable(cmd.OutOrStdout(), layout.DisplayName+" Cleaned Data", table, rows)
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "Only show this period (Jan, Feb, YTD)")
	cmd.Flags().IntVar(&rows, "rows", previewRows, "Rows to print per period (0 for all)")

	return cmd
}

func newSheetsCmd() *cobra.Command {
	var workbook string

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "List the sheets of the workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			if workbook == "" {
				workbook = c.Config.Data.WorkbookFile
			}
			reader, err := c.Opener.Open(ctx, workbook)
			if err != nil {
				return err
			}
			defer reader.Close()

			sheets, err := reader.ListSheets(ctx)
			if err != nil {
				return err
			}
			expected := make(map[string]bool)
			for _, layout := range bookings.Layouts() {
				expected[layout.Sheet] = true
			}
			for _, name := range sheets {
				marker := " "
				if expected[name] {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&workbook, "workbook", "", "Workbook path (default WORKBOOK_FILE)")

	return cmd
}

func newServeCmd() *cobra.Command {
	var withAPI bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard, and optionally the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := loadContainer(ctx)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			gin.SetMode(c.Config.Server.GinMode)
			dashboard, err := ui.NewServer(ui.Assets(), c.Loader, c.Logger)
			if err != nil {
				return err
			}

			g, _ := errgroup.WithContext(ctx)
			g.Go(func() error {
				return dashboard.Start(":" + c.Config.Server.Port)
			})
			if withAPI {
				g.Go(func() error {
					return api.NewAPI(c.Loader).Start(":" + c.Config.Server.APIPort)
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().BoolVar(&withAPI, "api", false, "Also serve the JSON API on API_PORT")

	return cmd
}

func newGenerateCmd() *cobra.Command {
	var out string
	var brands int
	var seed int64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic workbook in the expected three-sheet layout",
		Long: `Write a deterministic synthetic workbook for demos and local testing.

Example: bookings generate --out demo.xlsx --brands 20 --seed 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := sample.DefaultWorkbookConfig()
			cfg.BrandCount = brands
			cfg.Seed = seed

			sheets := sample.NewWorkbookGenerator(cfg).Generate()
			if err := sample.WriteWorkbook(out, sheets...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sheets to %s\n", len(sheets), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "bookings_demo.xlsx", "Output workbook path")
	cmd.Flags().IntVar(&brands, "brands", 12, "Number of brands")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")

	return cmd
}

func printSnapshot(w io.Writer, snapshot *bookings.Snapshot, limit int) error {
	for i, layout := range bookings.Layouts() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		rows, _ := snapshot.Table(layout.Period)
		title := fmt.Sprintf("%s Cleaned Data (fingerprint %s)", layout.DisplayName, snapshot.Fingerprints[layout.Period].Short())
		if err := printTable(w, title, rows, limit); err != nil {
			return err
		}
	}
	return nil
}

// printTable writes an aligned preview of rows; limit <= 0 prints all
func printTable(w io.Writer, title string, rows []bookings.NormalizedRow, limit int) error {
	fmt.Fprintln(w, title)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tBrand\tCategory\tBookings Budget\tBookings Forecast\tFinal Bookings Actual\t")
	for i, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%g\t%g\t%g\t\n", i, row.Brand, row.Category, row.Budget, row.Forecast, row.Actual)
	}
	return tw.Flush()
}
