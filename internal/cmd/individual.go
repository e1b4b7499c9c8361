package cmd

import (
	"github.com/kattn/djgenetics/pkg/service"
	"github.com/spf13/cobra"
)

var (
	individualSeed  uint64
	individualSize  int
	individualCount int
)

var individualCmd = &cobra.Command{
	Use:   "individual",
	Short: "Create random individuals for the evolutionary search",
	Long: `Create individuals whose genes are drawn uniformly from [0, 80).
The same non-zero --seed always yields the same genes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service.NewEvolveService().Individuals(individualSeed, individualSize, individualCount)
		return err
	},
}

func init() {
	individualCmd.Flags().Uint64Var(&individualSeed, "seed", 0, "Random seed (0 draws a fresh one)")
	individualCmd.Flags().IntVar(&individualSize, "size", 0, "Genes per individual (default: evolve.individual_size)")
	individualCmd.Flags().IntVar(&individualCount, "count", 1, "Number of individuals")

	rootCmd.AddCommand(individualCmd)
}
