package cli

import (
	"github.com/spf13/cobra"

	"speakersite/internal/seed"
	"speakersite/internal/storage"
)

var (
	seedFile         string
	seedPortfolioDir string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace portfolio, talk, event and testimonial records",
	Long: `Replace all reference records with the contents of a JSON seed file.

Markdown or text documents under --portfolio-dir are added as portfolio
entries: the sub directory names the section and the first "# " heading
names the entry.

Examples:
  speakersite seed --file data/seed.json
  speakersite seed --file data/seed.json --portfolio-dir data/portfolio`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "data/seed.json", "JSON seed file")
	seedCmd.Flags().StringVar(&seedPortfolioDir, "portfolio-dir", "", "directory of markdown/text portfolio documents")
}

func runSeed(cmd *cobra.Command, args []string) error {
	_, err := seed.Run(cmd.Context(), storage.NewStore(db), seed.Options{
		File:         seedFile,
		PortfolioDir: seedPortfolioDir,
	}, log)
	return err
}
