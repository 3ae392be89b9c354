package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cabinetfs/cabinet/internal/bytesize"
	"github.com/cabinetfs/cabinet/internal/cli/output"
	"github.com/cabinetfs/cabinet/internal/cli/timeutil"
	"github.com/cabinetfs/cabinet/pkg/config"
	"github.com/cabinetfs/cabinet/pkg/registry"
	"github.com/cabinetfs/cabinet/pkg/vfs"
)

var (
	lsOwner  int64
	lsPath   string
	lsOutput string
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List folder contents",
	Long: `List the folders and files under a path, straight from the metadata store.

This command opens the store configured in the config file, so it works
without a running server. Entries are scoped to one owner.

Examples:
  # List the root for owner 1
  cabinet ls --owner 1

  # List a subfolder
  cabinet ls --owner 1 --path /docs/reports

  # Output as JSON
  cabinet ls --owner 1 --output json`,
	RunE: runLs,
}

func init() {
	lsCmd.Flags().Int64Var(&lsOwner, "owner", 0, "Owner ID (required)")
	lsCmd.Flags().StringVar(&lsPath, "path", "/", "Folder path to list")
	lsCmd.Flags().StringVarP(&lsOutput, "output", "o", "table", "Output format (table|json|yaml)")
	_ = lsCmd.MarkFlagRequired("owner")
}

// Listing is the combined folder and file listing of one path.
type Listing struct {
	Path    string              `json:"path" yaml:"path"`
	Folders []*vfs.FolderRecord `json:"folders" yaml:"folders"`
	Files   []*vfs.FileRecord   `json:"files" yaml:"files"`
}

func runLs(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(lsOutput)
	if err != nil {
		return err
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	store, err := cfg.CreateStore()
	if err != nil {
		return fmt.Errorf("failed to open metadata store: %w", err)
	}
	defer func() { _ = store.Close() }()

	reg := registry.New(store)
	ctx := context.Background()
	owner := vfs.OwnerID(lsOwner)

	path, err := vfs.NormalizePath(lsPath)
	if err != nil {
		return err
	}

	folders, err := reg.ListFolders(ctx, owner, path)
	if err != nil {
		return err
	}
	files, err := reg.ListFiles(ctx, owner, path)
	if err != nil {
		return err
	}

	listing := Listing{Path: path, Folders: folders, Files: files}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, listing)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, listing)
	default:
		return printListingTable(listing)
	}
}

func printListingTable(listing Listing) error {
	if len(listing.Folders) == 0 && len(listing.Files) == 0 {
		fmt.Printf("%s is empty\n", listing.Path)
		return nil
	}

	table := output.NewTableData("Type", "Name", "Size", "Created")
	for _, folder := range listing.Folders {
		table.AddRow("folder", folder.Name, "-", timeutil.FormatLocal(folder.CreatedAt))
	}
	for _, file := range listing.Files {
		size := bytesize.ByteSize(file.Size).String()
		table.AddRow("file", file.Name, size, timeutil.FormatLocal(file.UploadedAt))
	}

	if err := output.PrintTable(os.Stdout, table); err != nil {
		return err
	}
	fmt.Printf("\n%d folder(s), %d file(s)\n", len(listing.Folders), len(listing.Files))
	return nil
}
