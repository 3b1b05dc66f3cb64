// Package main is the entry point for the projectconverter CLI
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/git-moss/ProjectConverter-sub000/pkg/api"
	"github.com/git-moss/ProjectConverter-sub000/pkg/converter"
	"github.com/git-moss/ProjectConverter-sub000/pkg/tui"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile   string
	settingsFile string
	serverPort   int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "projectconverter",
	Short: "Convert between REAPER and DAWproject project files",
	Long: `projectconverter is a tool for converting REAPER .rpp projects to the
vendor-neutral DAWproject format and back, including tracks, folder
structure, plugin states, MIDI items, audio items, markers, tempo maps
and volume/pan automation.

Examples:
  projectconverter convert song.rpp -o song.dawproject
  projectconverter reaper2daw song.rpp
  projectconverter daw2reaper song.dawproject
  projectconverter import-midi riff.mid -o riff.rpp
  projectconverter export-midi song.rpp
  projectconverter tui
  projectconverter serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Auto-detect and convert between formats",
	Long:  `Automatically detects input format and converts to the output format based on file extension.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var reaper2dawCmd = &cobra.Command{
	Use:   "reaper2daw <input.rpp>",
	Short: "Convert a REAPER project to .dawproject",
	Args:  cobra.ExactArgs(1),
	RunE:  runReaperToDaw,
}

var daw2reaperCmd = &cobra.Command{
	Use:   "daw2reaper <input.dawproject>",
	Short: "Convert a .dawproject file to a REAPER project",
	Args:  cobra.ExactArgs(1),
	RunE:  runDawToReaper,
}

var importMidiCmd = &cobra.Command{
	Use:   "import-midi <input.mid>",
	Short: "Import a standard MIDI file as a REAPER project",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportMidi,
}

var exportMidiCmd = &cobra.Command{
	Use:   "export-midi <input.rpp>",
	Short: "Export the MIDI items of a REAPER project as a standard MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportMidi,
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported conversions",
	Run:   runFormats,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&settingsFile, "settings", "s", "", "Optional YAML settings file")

	// Convert command
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")

	// reaper2daw command
	reaper2dawCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .dawproject file path")

	// daw2reaper command
	daw2reaperCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .rpp file path")

	// import-midi command
	importMidiCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .rpp file path")

	// export-midi command
	exportMidiCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(reaper2dawCmd)
	rootCmd.AddCommand(daw2reaperCmd)
	rootCmd.AddCommand(importMidiCmd)
	rootCmd.AddCommand(exportMidiCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func newConverter() (*converter.Converter, error) {
	opts, err := converter.LoadOptions(settingsFile)
	if err != nil {
		return nil, err
	}
	return converter.New(opts), nil
}

// runContext cancels the conversion on Ctrl-C.
func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv, err := newConverter()
	if err != nil {
		return err
	}

	ctx, stop := runContext()
	defer stop()

	fmt.Printf("Converting %s -> %s\n", input, outputFile)
	if err := conv.ConvertFile(ctx, input, outputFile); err != nil {
		return err
	}
	fmt.Println("Conversion complete!")
	return nil
}

func runReaperToDaw(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".dawproject")

	conv, err := newConverter()
	if err != nil {
		return err
	}

	ctx, stop := runContext()
	defer stop()

	if err := conv.ReaperToDawProject(ctx, input, output); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runDawToReaper(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".rpp")

	conv, err := newConverter()
	if err != nil {
		return err
	}

	ctx, stop := runContext()
	defer stop()

	if err := conv.DawProjectToReaper(ctx, input, output); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runImportMidi(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".rpp")

	conv, err := newConverter()
	if err != nil {
		return err
	}

	ctx, stop := runContext()
	defer stop()

	if err := conv.MIDIToReaper(ctx, input, output); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runExportMidi(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := getOutputPath(input, ".mid")

	conv, err := newConverter()
	if err != nil {
		return err
	}

	ctx, stop := runContext()
	defer stop()

	if err := conv.ReaperToMIDI(ctx, input, output); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runFormats(cmd *cobra.Command, args []string) {
	fmt.Println("Supported conversions:")
	for _, c := range converter.GetSupportedConversions() {
		fmt.Printf("  %s\n", c)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
