package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/matchscan/internal/config"
	"github.com/conneroisu/matchscan/internal/registry"
	"github.com/conneroisu/matchscan/internal/types"
)

var rootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "Edit the roots of a scan document",
	Long: `List, add, remove and rename the roots of a scan document.

Root names are compared case-insensitively. A file root is named after the
file without its extension and must have a unique name; a directory root is
named after the folder and must have a unique path.

Examples:
  matchscan roots list scan.yml
  matchscan roots add scan.yml ./src ./tools/main.p
  matchscan roots add scan.yml ./lib --name library
  matchscan roots rename scan.yml src sources
  matchscan roots remove scan.yml library`,
}

var rootsListCmd = &cobra.Command{
	Use:     "list <document>",
	Aliases: []string{"ls"},
	Short:   "List the roots in scan order",
	Args:    cobra.ExactArgs(1),
	RunE:    runRootsList,
}

var rootsAddCmd = &cobra.Command{
	Use:   "add <document> <path>...",
	Short: "Add file or directory roots",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRootsAdd,
}

var rootsRemoveCmd = &cobra.Command{
	Use:     "remove <document> <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a root by name",
	Args:    cobra.ExactArgs(2),
	RunE:    runRootsRemove,
}

var rootsRenameCmd = &cobra.Command{
	Use:   "rename <document> <name> <new-name>",
	Short: "Rename a root",
	Args:  cobra.ExactArgs(3),
	RunE:  runRootsRename,
}

var rootsAddName string

func init() {
	rootCmd.AddCommand(rootsCmd)
	rootsCmd.AddCommand(rootsListCmd, rootsAddCmd, rootsRemoveCmd, rootsRenameCmd)

	rootsAddCmd.Flags().StringVar(&rootsAddName, "name", "", "Display name for a single added root")
}

func runRootsList(cmd *cobra.Command, args []string) error {
	doc, err := config.LoadDocument(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tPATH")
	for _, root := range doc.RootList() {
		kind := "file"
		if root.IsDirectory() {
			kind = "directory"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", root.Name(), kind, root.Path())
	}
	return w.Flush()
}

func runRootsAdd(cmd *cobra.Command, args []string) error {
	if rootsAddName != "" && len(args) != 2 {
		return fmt.Errorf("--name needs exactly one path")
	}

	return editRoots(args[0], func(reg *registry.RootRegistry) error {
		for _, arg := range args[1:] {
			path, err := filepath.Abs(arg)
			if err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("'%s' not found", arg)
			}

			var root types.Root
			switch {
			case rootsAddName != "":
				root = types.NewRoot(rootsAddName, path, info.IsDir())
				err = reg.Add(root)
			case info.IsDir():
				root, err = reg.AddDirectory(path)
			default:
				root, err = reg.AddFile(path)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "> Added %s - %s\n", root.Name(), root.Path())
		}
		return nil
	})
}

func runRootsRemove(cmd *cobra.Command, args []string) error {
	return editRoots(args[0], func(reg *registry.RootRegistry) error {
		if err := reg.Remove(args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "> Removed %s\n", args[1])
		return nil
	})
}

func runRootsRename(cmd *cobra.Command, args []string) error {
	return editRoots(args[0], func(reg *registry.RootRegistry) error {
		if err := reg.Rename(args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "> Renamed %s to %s\n", args[1], args[2])
		return nil
	})
}

// editRoots loads the document, applies edit to its root registry and
// saves the document when the registry changed.
func editRoots(path string, edit func(*registry.RootRegistry) error) error {
	doc, err := config.LoadDocument(path)
	if err != nil {
		return err
	}

	reg := doc.Registry()
	if err := edit(reg); err != nil {
		return err
	}
	if !reg.Dirty() {
		return nil
	}

	doc.SetRoots(reg)
	if err := config.SaveDocument(path, doc); err != nil {
		return err
	}
	reg.MarkClean()
	return nil
}
