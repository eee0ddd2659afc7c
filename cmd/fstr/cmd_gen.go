package main

import (
	"fmt"
	"os"
	"strings"

	"gofstring/internal/fstring"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	genDoc  string
	genVars bool
)

func runGen(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	source := ""
	if genDoc != "" {
		data, err := os.ReadFile(genDoc)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", genDoc, err)
		}
		source = string(data)
	}

	line := args[0]
	if !fstring.IsComment(line) {
		line = fstring.Prefixes[0] + line
	}

	res, ok := fstring.Process(line, source, processorOptions(cfg).Generator)
	if !ok {
		return fmt.Errorf("not a valid f-string comment: %q", args[0])
	}
	logger.Debug("generated statement",
		zap.String("target", res.Template.Target),
		zap.Strings("variables", res.Variables))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.Statement)
	if genVars {
		fmt.Fprintf(out, "variables: %s\n", strings.Join(res.Variables, ", "))
	}
	return nil
}
