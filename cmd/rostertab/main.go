package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "rostertab",
	Short: "Paginated roster displays for remote player lists",
	Long: `Rostertab renders configured displays of columns into the player list of
connected clients. Each viewer gets its own paginated, animated grid; the
bridge pushes every change over a websocket.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the render loop and the websocket bridge",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a display in the terminal with a simulated population",
	Args:  cobra.NoArgs,
	RunE:  runPreview,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load every definition and report what would be skipped",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

var skinsCmd = &cobra.Command{
	Use:   "skins",
	Short: "Manage the avatar store",
}

var skinsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import skins from a TOML or YAML skins file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkinsImport,
}

var skinsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored skins",
	Args:  cobra.NoArgs,
	RunE:  runSkinsList,
}

func init() {
	previewCmd.Flags().String("display", "", "Display to preview instead of the selected one")
	previewCmd.Flags().IntP("members", "n", 5, "Simulated members present at start")
	previewCmd.Flags().Int("width", 24, "Cell width in columns")

	validateCmd.Flags().Bool("write-config", false, "Write the effective config file")

	skinsImportCmd.Flags().String("source", "import", "Source recorded for imported skins")

	skinsCmd.AddCommand(skinsImportCmd)
	skinsCmd.AddCommand(skinsListCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(skinsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
