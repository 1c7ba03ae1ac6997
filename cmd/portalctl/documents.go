package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirkaty/portal/internal/client"
	"github.com/shirkaty/portal/internal/guard"
	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage company documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/documents"); err != nil {
			return err
		}
		status, _ := cmd.Flags().GetString("status")

		documents, err := portalClient.ListDocuments(cmd.Context(), status)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(documents)
		} else {
			printDocumentTable(documents)
		}
		return nil
	},
}

var documentsRequestCmd = &cobra.Command{
	Use:   "request <name>",
	Short: "Ask the back office to produce a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/documents"); err != nil {
			return err
		}
		docType, _ := cmd.Flags().GetString("type")
		refDate, _ := cmd.Flags().GetString("date")

		doc, err := portalClient.RequestDocument(cmd.Context(), &client.RequestDocumentRequest{
			Name:          args[0],
			Type:          docType,
			ReferenceDate: refDate,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(doc)
		} else {
			fmt.Printf("Requested document %s (pending)\n", doc.ID)
		}
		return nil
	},
}

var documentsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/documents"); err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		docType, _ := cmd.Flags().GetString("type")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		filename := filepath.Base(args[0])
		if name == "" {
			name = filename
		}

		doc, err := portalClient.UploadDocument(cmd.Context(), name, docType, filename, data)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(doc)
		} else {
			fmt.Printf("Uploaded document %s\n", doc.ID)
		}
		return nil
	},
}

var documentsDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download a document's file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkAccess(guard.Protected, "/documents"); err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")

		doc, err := portalClient.GetDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := portalClient.DownloadDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if output == "" {
			output = filepath.Base(doc.FileKey)
			if output == "." || output == "/" {
				output = doc.ID
			}
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(data), output)
		return nil
	},
}

func init() {
	documentsListCmd.Flags().StringP("status", "s", "", "filter by status")
	documentsRequestCmd.Flags().StringP("type", "t", "", "document type")
	documentsRequestCmd.Flags().String("date", "", "reference date (YYYY-MM-DD)")
	documentsUploadCmd.Flags().String("name", "", "document name (defaults to the file name)")
	documentsUploadCmd.Flags().StringP("type", "t", "", "document type")
	documentsDownloadCmd.Flags().StringP("output", "o", "", "output file path")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsRequestCmd)
	documentsCmd.AddCommand(documentsUploadCmd)
	documentsCmd.AddCommand(documentsDownloadCmd)
}
