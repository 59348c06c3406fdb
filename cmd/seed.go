package cmd

import (
	"context"
	"os"

	"memory-map-backend/internal/repository"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <seed.yaml>",
	Short: "import seed memories into PostgreSQL",
	Long: `
seed creates the schema if needed and inserts the memories of a seed file with
their own ids. Memories already present are left alone, so the command can be
re-run safely.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		memories, err := repository.LoadSeed(args[0])
		if err != nil {
			return err
		}

		ctx := context.Background()
		db, err := connectDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repository.CreateSchema(ctx, db); err != nil {
			return err
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(memories),
				progressbar.OptionSetDescription("Importing "+args[0]),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		progress := func() {
			if bar != nil {
				bar.Add(1)
			}
		}
		if err := repository.NewPgMemoryRepository(db).Import(ctx, memories, progress); err != nil {
			return err
		}
		if bar != nil {
			bar.Finish()
		}

		log.Info().
			Str("file", args[0]).
			Int("memories", len(memories)).
			Msg("Seed imported")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
