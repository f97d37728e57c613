package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/enn-tee/agentic-job-search/internal/observe"
	"github.com/enn-tee/agentic-job-search/internal/pool"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Inspect the resume pool",
}

var poolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidate resumes and their parse state",
	Run: func(cmd *cobra.Command, args []string) {
		obs := observe.New(os.Stdout, false)
		p := pool.New(poolDir, nil, obs)

		candidates, err := p.Load(context.Background())
		if err != nil {
			fmt.Printf("Failed to load pool: %v\n", err)
			os.Exit(1)
		}
		if len(candidates) == 0 {
			fmt.Println("(pool empty)")
			return
		}
		for _, c := range candidates {
			fmt.Printf("%-24s %s  %s\n", c.ID, c.Fingerprint.Short(), c.Resume.Name)
		}

		states, err := p.ParseStates()
		if err != nil {
			fmt.Printf("Failed to read parse cache: %v\n", err)
			os.Exit(1)
		}
		if len(states) > 0 {
			fmt.Println("\nCached PDF extractions:")
			for _, s := range states {
				fmt.Printf("%-24s %s  parsed %s\n", s.ID, s.FileHash.Short(), s.ParsedAt.Format("2006-01-02 15:04"))
			}
		}
	},
}

var poolClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached PDF extractions",
	Run: func(cmd *cobra.Command, args []string) {
		obs := observe.New(os.Stdout, false)
		p := pool.New(poolDir, nil, obs)

		n, err := p.ClearParsed()
		if err != nil {
			fmt.Printf("Failed to clear parse cache: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %d cached extraction(s)\n", n)
	},
}

func init() {
	RootCmd.AddCommand(poolCmd)
	poolCmd.AddCommand(poolListCmd)
	poolCmd.AddCommand(poolClearCmd)
	poolCmd.PersistentFlags().StringVar(&poolDir, "pool", "resumes", "Directory of candidate resumes")
}
