package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gofstring/internal/config"
	"gofstring/internal/document"
	"gofstring/internal/fstring"
	"gofstring/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fstr",
	Short: "fstr - f-string comments for Go",
	Long: `fstr expands f-string comments into fmt.Sprintf statements.

Given

    name := "gopher"
    var age int = 5
    // fstring message := "Hello {name}, you are {age} years old"

the statement below the comment is generated and kept up to date:

    message := fmt.Sprintf("Hello %s, you are %d years old", name, age)

Format verbs come from an explicit hint ({age:d}), from a declaration of the
variable found in the same file, or from the variable's name. References
that none of these resolve get %v.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// genCmd expands a single comment
var genCmd = &cobra.Command{
	Use:   "gen [comment]",
	Short: "Print the statement generated for one f-string comment",
	Long: `Parses a single f-string comment and prints the generated statement.

Types are resolved against the file given with --doc; without it every
reference without a hint falls back to its name or the default verb.

Example:
  fstr gen '// fs msg := "{count:d} items in {dir}"'
  fstr gen --doc main.go '// fstring line := "{name}: {err}"'`,
	Args: cobra.ExactArgs(1),
	RunE: runGen,
}

// applyCmd processes files in place
var applyCmd = &cobra.Command{
	Use:   "apply [paths...]",
	Short: "Expand f-string comments in Go files",
	Long: `Processes every .go file under the given paths (default: the workspace).

Without --write nothing is modified and a summary of what would change is
printed. --diff shows a unified diff per changed file. --check exits with an
error when any file is out of date, for use in CI.`,
	RunE: runApply,
}

// watchCmd keeps files in sync while editing
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Rewrite Go files as their f-string comments change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

// initCmd writes the default configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to .fstring/config.yaml",
	RunE:  runInit,
}

// versionCmd prints the version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fstr version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fstr %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: nearest dir with .fstring or go.mod)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/.fstring/config.yaml)")

	genCmd.Flags().StringVar(&genDoc, "doc", "", "File whose text is used to resolve variable types")
	genCmd.Flags().BoolVar(&genVars, "vars", false, "Also print the referenced variable names")

	applyCmd.Flags().BoolVar(&applyWrite, "write", false, "Write changes back to the files")
	applyCmd.Flags().BoolVar(&applyDiff, "diff", false, "Print a unified diff for each changed file")
	applyCmd.Flags().BoolVar(&applyCheck, "check", false, "Fail if any file would change")

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config")

	rootCmd.AddCommand(genCmd, applyCmd, watchCmd, initCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveWorkspace returns the --workspace flag or the root found from the
// current directory.
func resolveWorkspace() (string, error) {
	if workspace != "" {
		return filepath.Abs(workspace)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return config.FindWorkspaceRoot(cwd), nil
}

// loadConfig loads the workspace config and initializes category logging.
func loadConfig(cmd *cobra.Command) (string, *config.Config, error) {
	ws, err := resolveWorkspace()
	if err != nil {
		return "", nil, err
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadWorkspace(ws)
	}
	if err != nil {
		return "", nil, err
	}

	if verbose {
		cfg.Logging.DebugMode = true
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(ws, cfg.Logging.Settings()); err != nil {
		logger.Warn("category logging disabled", zap.Error(err))
	}
	logging.Boot("workspace %s, call %s, default verb %s", ws, cfg.Generator.Call, cfg.Generator.DefaultVerb)
	logging.Get(logging.CategoryCLI).Info("%s %v", cmd.CommandPath(), cmd.Flags().Args())
	return ws, cfg, nil
}

func processorOptions(cfg *config.Config) document.Options {
	return document.Options{
		Generator: fstring.Options{
			Call:        cfg.Generator.Call,
			DefaultVerb: cfg.Generator.DefaultVerb,
		},
		ImportPath: cfg.Generator.ImportPath,
	}
}
