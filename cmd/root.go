package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devguard-io/devguard/cmd/fetch"
	"github.com/devguard-io/devguard/cmd/history"
	"github.com/devguard-io/devguard/cmd/report"
	"github.com/devguard-io/devguard/cmd/scan"
	"github.com/devguard-io/devguard/cmd/version"
	"github.com/devguard-io/devguard/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "devguard [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "DevGuard reviews source code for security issues with an LLM.",
		Long: `DevGuard splits source code into chunks, filters the fragments worth a
model's attention and sends them to an OpenAI-compatible API for review,
producing file and line attributed findings as JSON, CSV, SARIF or HTML reports.
`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(fetch.FetchCmd)
	rootCmd.AddCommand(report.ReportCmd)
	rootCmd.AddCommand(history.HistoryCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	explicit := cfgFile != ""
	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		if explicit || !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "failed to load config file %q: %v\n", cfgFile, err)
			os.Exit(1)
		}
		// a missing default config file is fine, environment variables and
		// built-in defaults cover every setting
		AppConfig = &config.Config{}
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	scan.Init(AppConfig)
	fetch.Init(AppConfig)
	report.Init(AppConfig)
	history.Init(AppConfig)
	version.Init(AppConfig)
}
