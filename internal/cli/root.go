package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "personagen <reddit-profile-url>",
	Short: "Personagen - citation-backed Reddit user personas",
	Long: `Personagen retrieves a Reddit user's public posts and comments, sends
them to an LLM, and writes a text file of inferred personality traits,
each backed by a permalink to the supporting post or comment.

The run is a single sequential pass: parse the profile URL, collect
evidence, synthesize the persona, write the file. Nothing is written
unless every stage succeeds.

Example:
  personagen https://www.reddit.com/user/spez/
  personagen spez --output ./personas
  personagen spez --public --llm-provider ollama`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Personagen.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("personagen v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Assigned here rather than in the literal to avoid an
	// initialization cycle (runGenerate -> buildConfig -> rootCmd).
	rootCmd.RunE = runGenerate

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.personagen/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.personagen")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match PERSONAGEN_*
	viper.SetEnvPrefix("PERSONAGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
