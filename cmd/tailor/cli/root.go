package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/enn-tee/agentic-job-search/internal/artifact"
	"github.com/enn-tee/agentic-job-search/internal/observe"
	"github.com/enn-tee/agentic-job-search/internal/provider"
	"github.com/enn-tee/agentic-job-search/internal/ui"
	"github.com/enn-tee/agentic-job-search/internal/ui/tui"
)

var (
	jobFile      string
	company      string
	jobTitle     string
	industryName string
	baseResume   string
	poolDir      string
	outputDir    string
	configDir    string
	discover     bool
	interactive  bool
	verbose      bool
	ciMode       bool
	providerType string
	modelName    string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Agentic resume tailoring pipeline",
	Long: `Tailor runs a cached, multi-stage pipeline that analyzes a job posting,
selects the best base resume from your pool, optionally interviews you for
transferable skills, and produces a tailored resume with a quality review.
Every stage is cached by a fingerprint of its inputs, so re-runs only pay
for what changed.`,
}

var runCmd = &cobra.Command{
	Use:   "run [job-file]",
	Short: "Tailor a resume for a job posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		jobFile = args[0]
		runTailoring()
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&company, "company", "", "Company name for the posting")
	runCmd.Flags().StringVar(&jobTitle, "title", "", "Job title for the posting")
	runCmd.Flags().StringVar(&industryName, "industry", "tech", "Industry configuration to use")
	runCmd.Flags().StringVar(&baseResume, "base-resume", "", "Pin a base resume by ID, skipping selection")
	runCmd.Flags().StringVar(&poolDir, "pool", "resumes", "Directory of candidate resumes")
	runCmd.Flags().StringVarP(&outputDir, "output", "o", "tailored_resumes", "Output directory")
	runCmd.Flags().StringVar(&configDir, "config-dir", "config/industries", "Industry config directory")
	runCmd.Flags().BoolVarP(&discover, "discover", "d", false, "Run the skill-discovery dialogue for missing skills")
	runCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Show pipeline progress in a TUI")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	runCmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: JSON output, non-interactive")
	runCmd.Flags().StringVarP(&providerType, "provider", "p", "ollama", "AI Provider (ollama, openai, gemini, anthropic)")
	runCmd.Flags().StringVarP(&modelName, "model", "m", "", "Model name (default depends on provider)")
}

func runTailoring() {
	var obs *observe.Observer
	if ciMode {
		obs = observe.NewJSON(os.Stdout, verbose)
	} else {
		obs = observe.New(os.Stdout, verbose)
	}
	defer obs.Close()

	settingsStore := getSettings()
	defer settingsStore.Close()

	store, err := artifact.NewStore(filepath.Join(tailorDir(), "cache"), obs)
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to open artifact store")
	}

	p, err := buildProvider(settingsStore)
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to initialize provider")
	}

	if interactive && !ciMode {
		model := tui.NewModel("Resume Tailoring")
		program := tea.NewProgram(model)
		u := tui.NewTUI(program)

		go func() {
			runner := NewRunner(obs, store, settingsStore, p, u)
			_ = runner.Run(context.Background())
			program.Quit()
		}()

		if _, err := program.Run(); err != nil {
			fmt.Printf("TUI error: %v\n", err)
			os.Exit(1)
		}
	} else {
		runner := NewRunner(obs, store, settingsStore, p, nil)
		if err := runner.Run(context.Background()); err != nil {
			os.Exit(1)
		}
	}
}

func buildProvider(s settingsReader) (provider.Provider, error) {
	switch providerType {
	case "openai":
		apiKey, _ := s.GetSecret("api_key.openai")
		baseURL, _ := s.GetConfig("openai.base_url")
		return provider.NewOpenAIProvider(apiKey, baseURL, modelName)
	case "ollama":
		return provider.NewOllamaProvider(modelName)
	case "gemini":
		apiKey, _ := s.GetSecret("api_key.gemini")
		return provider.NewGeminiProvider(apiKey, modelName)
	case "anthropic":
		apiKey, _ := s.GetSecret("api_key.anthropic")
		return provider.NewAnthropicProvider(apiKey, modelName)
	}
	return nil, fmt.Errorf("unknown provider %q", providerType)
}

type settingsReader interface {
	GetConfig(key string) (string, error)
	GetSecret(key string) (string, error)
}

func getUI(u ui.UI) ui.UI {
	if u == nil {
		return ui.SilentUI{}
	}
	return u
}
