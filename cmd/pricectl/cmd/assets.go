package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"trykkeri-admin/models"
)

var (
	syncStatus   string
	syncFolder   string
	downloadDir  string
	downloadKind string
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Design asset library maintenance",
}

var assetsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import new images of the Drive folder into the library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		folder := syncFolder
		if folder == "" {
			folder = svc.cfg.AssetFolderID
		}
		if folder == "" {
			return fmt.Errorf("no folder: pass --folder or set DRIVE_ASSET_FOLDER_ID")
		}

		result, err := svc.Sync.SyncLibrary(cmd.Context(), folder, syncStatus)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Total:    %d\n", result.Total)
		fmt.Fprintf(out, "Inserted: %d\n", result.Inserted)
		fmt.Fprintf(out, "Skipped:  %d\n", result.Skipped)
		fmt.Fprintf(out, "Invalid:  %d\n", result.Invalid)
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  ✗ %s\n", e)
		}
		return nil
	},
}

var assetsDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Save optimized copies of the active library images to a local directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		active := true
		filter := models.DesignAssetFilter{Active: &active}
		if downloadKind != "" {
			kind, err := models.ParseAssetKind(downloadKind)
			if err != nil {
				return err
			}
			filter.Kind = &kind
		}

		svc, err := openServices(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		result, err := svc.Download.DownloadLibrary(cmd.Context(), filter, downloadDir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ %d/%d images downloaded to %s (%d skipped)\n", result.Downloaded, result.Total, downloadDir, result.Skipped)
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  ✗ %s\n", e)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(assetsCmd)
	assetsCmd.AddCommand(assetsSyncCmd)
	assetsCmd.AddCommand(assetsDownloadCmd)

	assetsSyncCmd.Flags().StringVar(&syncStatus, "status", models.AssetStatusPending, "Status of new assets: pending or ready")
	assetsSyncCmd.Flags().StringVar(&syncFolder, "folder", "", "Drive folder id (default DRIVE_ASSET_FOLDER_ID)")

	assetsDownloadCmd.Flags().StringVarP(&downloadDir, "output-dir", "o", "./downloads", "Directory for the images")
	assetsDownloadCmd.Flags().StringVar(&downloadKind, "kind", "", "Only assets of this kind")
}
