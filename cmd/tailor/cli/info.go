package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/enn-tee/agentic-job-search/internal/industry"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show an industry configuration and recent runs",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := industry.Load(industryName, configDir)
		if err != nil {
			fmt.Printf("Failed to load industry config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s (%s)\n", cfg.DisplayName, cfg.Industry)
		if cfg.Description != "" {
			fmt.Println(cfg.Description)
		}
		if skills := cfg.HighPrioritySkills(); len(skills) > 0 {
			fmt.Printf("\nHigh-priority skills: %s\n", strings.Join(skills, ", "))
		}
		if len(cfg.PriorityKeywords) > 0 {
			fmt.Printf("Priority keywords:    %s\n", strings.Join(cfg.PriorityKeywords, ", "))
		}
		if len(cfg.Acronyms) > 0 {
			fmt.Println("\nAcronyms:")
			for acronym, expansion := range cfg.Acronyms {
				fmt.Printf("  %-8s %s\n", acronym, expansion)
			}
		}

		s := getSettings()
		defer s.Close()

		if last, ok, err := s.LastJob(); err == nil && ok {
			fmt.Printf("\nLast run: %s at %s (%s)\n", last.Title, last.Company, last.SavedAt.Format("2006-01-02 15:04"))
		}
		runs, err := s.RecentRuns(5)
		if err == nil && len(runs) > 0 {
			fmt.Println("\nRecent runs:")
			for _, run := range runs {
				fmt.Printf("  %s  %-20s %-20s %s (%.1f)\n",
					run.CreatedAt.Format("2006-01-02"), run.Company, run.Title, run.ResumeID, run.Score)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringVar(&industryName, "industry", "tech", "Industry configuration to show")
	infoCmd.Flags().StringVar(&configDir, "config-dir", "config/industries", "Industry config directory")
}
