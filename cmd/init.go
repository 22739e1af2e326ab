package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/matchscan/internal/config"
)

var initCmd = &cobra.Command{
	Use:     "init <document>",
	Aliases: []string{"i"},
	Short:   "Create an empty scan document",
	Long: `Create a scan document with no roots. The format follows the extension:
.rgex and .xml write the legacy XML definition, anything else YAML.

Examples:
  matchscan init scan.yml
  matchscan init scan.yml --pattern 'FIND .* WHERE' --first-only=false
  matchscan init legacy.rgex --force`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

var (
	initPattern   string
	initFirstOnly bool
	initForce     bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initPattern, "pattern", "", "Regular expression stored in the document")
	initCmd.Flags().BoolVar(&initFirstOnly, "first-only", true, "Keep only the first match per file")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing document")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("'%s' already exists (use --force to overwrite)", path)
	}

	doc := config.NewDocument()
	doc.Pattern = initPattern
	doc.FirstMatchOnly = initFirstOnly

	if err := config.SaveDocument(path, doc); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "> Created %s\n", path)
	return nil
}
