package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"edgesearch/internal/queries"
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Show the queries a run would search for",
	Long: `Reads the queries file the way a run would: whitespace trimmed, stray
quotes and commas stripped, blank lines dropped and duplicates removed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("queries.file")
		list, err := queries.Load(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if len(list) == 0 {
			color.Yellow("%s holds no usable queries.", path)
			return nil
		}
		for i, q := range list {
			fmt.Printf("%3d  %s\n", i+1, q)
		}
		color.Cyan("%d unique queries in %s", len(list), path)
		return nil
	},
}
