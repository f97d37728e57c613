package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/enn-tee/agentic-job-search/internal/artifact"
	"github.com/enn-tee/agentic-job-search/internal/model"
	"github.com/enn-tee/agentic-job-search/internal/observe"
)

var cacheStage string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the artifact cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached artifacts",
	Run: func(cmd *cobra.Command, args []string) {
		store := getArtifactStore()
		stage, err := parseStageFlag()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		entries, err := store.List(stage)
		if err != nil {
			fmt.Printf("Failed to list cache: %v\n", err)
			os.Exit(1)
		}
		if len(entries) == 0 {
			fmt.Println("(cache empty)")
			return
		}
		for _, e := range entries {
			fmt.Printf("%-18s %s  %s", e.Stage, e.Key.Short(), e.CreatedAt.Format("2006-01-02 15:04"))
			if e.Sources != "" {
				fmt.Printf("  [%s]", e.Sources)
			}
			fmt.Println()
		}
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached artifacts",
	Run: func(cmd *cobra.Command, args []string) {
		store := getArtifactStore()
		stage, err := parseStageFlag()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		n, err := store.Clear(stage)
		if err != nil {
			fmt.Printf("Failed to clear cache: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %d artifact(s)\n", n)
	},
}

func parseStageFlag() (model.StageKind, error) {
	if cacheStage == "" {
		return "", nil
	}
	return model.ParseStage(cacheStage)
}

func getArtifactStore() *artifact.Store {
	obs := observe.New(os.Stdout, false)
	store, err := artifact.NewStore(filepath.Join(tailorDir(), "cache"), obs)
	if err != nil {
		fmt.Printf("Failed to open artifact store: %v\n", err)
		os.Exit(1)
	}
	return store
}

func init() {
	RootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.PersistentFlags().StringVar(&cacheStage, "stage", "", "Limit to one stage (job_analysis, resume_selection, tailored_resume, quality_review)")
}
