package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/enn-tee/agentic-job-search/internal/credential"
	"github.com/enn-tee/agentic-job-search/internal/settings"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value (API keys are encrypted at rest)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key, value := args[0], args[1]

		s := getSettings()
		defer s.Close()

		var err error
		if settings.IsSecretKey(key) {
			err = s.SetSecret(key, value)
		} else {
			err = s.SetConfig(key, value)
		}
		if err != nil {
			fmt.Printf("Failed to set config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration saved: %s\n", key)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value (secrets are masked)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]

		s := getSettings()
		defer s.Close()

		if settings.IsSecretKey(key) {
			val, err := s.GetSecret(key)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			if val == "" {
				fmt.Println("(not set)")
			} else {
				fmt.Println(credential.MaskSecret(val))
			}
			return
		}

		val, err := s.GetConfig(key)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if val == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(val)
		}
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
}
