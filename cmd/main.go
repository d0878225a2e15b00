// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mrz-scan/internal/config"
	"mrz-scan/internal/formatters"
	_ "mrz-scan/internal/formatters/json"
	_ "mrz-scan/internal/formatters/text"
	_ "mrz-scan/internal/formatters/yaml"
	"mrz-scan/internal/mrz"
	"mrz-scan/internal/observability"
	"mrz-scan/internal/preprocessors"
	"mrz-scan/internal/version"

	"golang.org/x/term"
)

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	// If config file is not specified, try to find one in standard locations
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	// Load configuration (will use defaults if file not found)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("") // Load default config
	}
	return cfg
}

// configFlags holds command line flag values
type configFlags struct {
	outputFormat string
	verbose      bool
	debug        bool
	noColor      bool
	showMRZ      bool
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format  string
	verbose bool
	debug   bool
	noColor bool
	showMRZ bool
}

// resolveConfiguration resolves final configuration values from config file, profile, and command line flags
func resolveConfiguration(cfg *config.Config, activeProfile *config.Profile, flags *configFlags) *finalConfiguration {
	final := &finalConfiguration{}

	// Format
	final.format = "text" // default fallback
	if cfg != nil && cfg.Defaults.Format != "" {
		final.format = cfg.Defaults.Format
	}
	if activeProfile != nil && activeProfile.Format != "" {
		final.format = activeProfile.Format
	}
	if isFlagSet("format") && flags.outputFormat != "" {
		final.format = flags.outputFormat
	}

	// Verbose
	final.verbose = false // default fallback
	if cfg != nil {
		final.verbose = cfg.Defaults.Verbose
	}
	if activeProfile != nil {
		final.verbose = activeProfile.Verbose
	}
	if isFlagSet("verbose") {
		final.verbose = flags.verbose
	}

	// Debug
	final.debug = false // default fallback
	if cfg != nil {
		final.debug = cfg.Defaults.Debug
	}
	if activeProfile != nil {
		final.debug = activeProfile.Debug
	}
	if isFlagSet("debug") {
		final.debug = flags.debug
	}

	// No color
	final.noColor = false // default fallback
	if cfg != nil {
		final.noColor = cfg.Defaults.NoColor
	}
	if activeProfile != nil {
		final.noColor = activeProfile.NoColor
	}
	if isFlagSet("no-color") {
		final.noColor = flags.noColor
	}

	// Show MRZ lines
	final.showMRZ = false // default fallback
	if cfg != nil {
		final.showMRZ = cfg.Defaults.ShowMRZ
	}
	if activeProfile != nil {
		final.showMRZ = activeProfile.ShowMRZ
	}
	if isFlagSet("show-mrz") {
		final.showMRZ = flags.showMRZ
	}

	return final
}

// handleProfiles handles profile listing and selection
func handleProfiles(cfg *config.Config, listProfiles bool, profileName string) *config.Profile {
	// List profiles if requested
	if listProfiles {
		profiles := cfg.ListProfiles()
		if len(profiles) == 0 {
			fmt.Println("No profiles defined in configuration file.")
		} else {
			fmt.Println("Available profiles:")
			for _, name := range profiles {
				profile := cfg.GetProfile(name)
				if profile != nil && profile.Description != "" {
					fmt.Printf("  - %s: %s\n", name, profile.Description)
				} else {
					fmt.Printf("  - %s\n", name)
				}
			}
		}
		os.Exit(0)
	}

	// Apply profile settings if specified
	var activeProfile *config.Profile
	if profileName != "" {
		activeProfile = cfg.GetProfile(profileName)
		if activeProfile == nil {
			fmt.Fprintf(os.Stderr, "Error: Profile '%s' not found in config file\n", profileName)
			os.Exit(1)
		}
	}
	return activeProfile
}

// collectInputFiles expands the -file argument into the list of files to
// process. The argument may be a single file, a directory, or a glob pattern.
func collectInputFiles(input string, recursive bool) ([]string, error) {
	info, err := os.Stat(input)
	if err == nil && info.IsDir() {
		return collectDirectoryFiles(input, recursive)
	}
	if err == nil {
		return []string{input}, nil
	}

	// Not a plain path; try it as a glob pattern
	matches, globErr := filepath.Glob(input)
	if globErr != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", input, globErr)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %q", input)
	}

	var files []string
	for _, match := range matches {
		matchInfo, statErr := os.Stat(match)
		if statErr != nil {
			continue
		}
		if matchInfo.IsDir() {
			dirFiles, dirErr := collectDirectoryFiles(match, recursive)
			if dirErr != nil {
				return nil, dirErr
			}
			files = append(files, dirFiles...)
		} else {
			files = append(files, match)
		}
	}
	return files, nil
}

// collectDirectoryFiles lists the files in a directory, descending into
// subdirectories when recursive is set
func collectDirectoryFiles(dir string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reading directory %q: %w", dir, err)
	}
	return files, nil
}

// decodeCandidates runs every candidate group from one source through the
// engine and appends a result per document. Capture-quality hints from the
// preprocessor ride along on each result.
func decodeCandidates(engine *mrz.Engine, source string, groups [][]mrz.CandidateLine, hints []string, results []formatters.Result) []formatters.Result {
	for _, group := range groups {
		lines := make([]string, len(group))
		for i, line := range group {
			lines[i] = line.Text
		}
		results = append(results, formatters.Result{
			Source:  source,
			Lines:   lines,
			Hints:   hints,
			Outcome: engine.Decode(group),
		})
	}
	return results
}

// readStdinCandidates reads MRZ candidate lines from piped standard input
func readStdinCandidates() ([][]mrz.CandidateLine, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("error reading stdin: %w", err)
	}
	return preprocessors.ExtractCandidates(string(data)), nil
}

// runSynthesize reads an identity record as JSON and prints the MRZ lines
// that encode it. The input comes from -file when given, stdin otherwise.
func runSynthesize(formatName, inputFile string) int {
	format, ok := mrz.ParseFormat(formatName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown MRZ format %q (expected TD1, TD2 or TD3)\n", formatName)
		return 1
	}

	var reader io.Reader = os.Stdin
	if inputFile != "" {
		f, err := os.Open(filepath.Clean(inputFile))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		reader = f
	} else if isTerminal(os.Stdin) {
		fmt.Fprintln(os.Stderr, "Error: -synthesize needs a record as JSON on stdin or via -file")
		return 1
	}

	var record mrz.IdentityRecord
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&record); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid identity record: %v\n", err)
		return 1
	}

	lines, err := mrz.Encode(format, record)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return 0
}

// listFormats prints the supported output formats
func listFormats() {
	fmt.Println("Supported output formats:")
	for _, info := range formatters.GetSupportedFormats() {
		fmt.Printf("  - %-6s %s\n", info.Name, info.Description)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "mrz-scan decodes and validates Machine-Readable Zone lines from travel documents.\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  mrz-scan -file <path> [options]\n")
	fmt.Fprintf(os.Stderr, "  <ocr output> | mrz-scan [options]\n")
	fmt.Fprintf(os.Stderr, "  mrz-scan -synthesize TD3 -file record.json\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	inputFile := flag.String("file", "", "Path to the input file, directory, or glob pattern (e.g., *.pdf)")
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	profileName := flag.String("profile", "", "Profile name to use from config file")
	listProfiles := flag.Bool("list-profiles", false, "List available profiles in config file")
	outputFormat := flag.String("format", "", "Output format: text, json, yaml (default: text)")
	outputFile := flag.String("output", "", "Path to output file (if not specified, output to stdout)")
	verbose := flag.Bool("verbose", false, "Display per-field audit information for each document")
	debug := flag.Bool("debug", false, "Enable debug logging to show preprocessing and decoding flow")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	showMRZ := flag.Bool("show-mrz", false, "Include the raw MRZ lines in the output")
	recursive := flag.Bool("recursive", false, "Recursively scan directories")
	synthesize := flag.String("synthesize", "", "Encode a JSON identity record into MRZ lines of the given format (TD1, TD2, TD3) and exit")
	showFormats := flag.Bool("list-formats", false, "List supported output formats and exit")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}
	if *showFormats {
		listFormats()
		os.Exit(0)
	}
	if *synthesize != "" {
		os.Exit(runSynthesize(*synthesize, *inputFile))
	}

	cfg := loadConfiguration(*configFile)
	activeProfile := handleProfiles(cfg, *listProfiles, *profileName)
	flags := &configFlags{
		outputFormat: *outputFormat,
		verbose:      *verbose,
		debug:        *debug,
		noColor:      *noColor,
		showMRZ:      *showMRZ,
	}
	finalConfig := resolveConfiguration(cfg, activeProfile, flags)

	// Color codes are noise in files and pipes
	if *outputFile != "" || !isTerminal(os.Stdout) {
		finalConfig.noColor = true
	}

	if _, ok := formatters.Get(finalConfig.format); !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown output format %q (supported: %s)\n",
			finalConfig.format, strings.Join(formatters.List(), ", "))
		os.Exit(1)
	}

	// Set up observability based on debug flag
	level := observability.ObservabilityOff
	if finalConfig.debug {
		level = observability.ObservabilityDebug
	}
	observer := observability.NewStandardObserver(level, os.Stderr)
	if finalConfig.debug {
		observer.DebugObserver = observability.NewDebugObserver(os.Stderr)
	}

	engineOpts := cfg.EngineOptions()
	if *profileName != "" {
		engineOpts = cfg.EngineOptionsForProfile(*profileName)
	}
	engine := mrz.NewEngine(engineOpts)

	var results []formatters.Result

	if *inputFile == "" {
		// No file argument: accept candidate lines on piped stdin
		if isTerminal(os.Stdin) {
			flag.Usage()
			os.Exit(1)
		}
		groups, err := readStdinCandidates()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		results = decodeCandidates(engine, "stdin", groups, nil, results)
	} else {
		files, err := collectInputFiles(*inputFile, *recursive)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		manager := preprocessors.DefaultManager(observer)
		processedCount := 0
		for _, file := range files {
			if manager.GetPreprocessor(file) == nil {
				continue
			}
			doc, err := manager.ProcessFile(file)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", file, err)
				continue
			}
			processedCount++
			results = decodeCandidates(engine, doc.OriginalPath, doc.Candidates, doc.Hints, results)

			// Image inputs carry no candidate lines, so their hints would
			// never reach a formatter; warn directly instead
			if len(doc.Candidates) == 0 {
				for _, hint := range doc.Hints {
					fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", file, hint)
				}
			}
		}

		if processedCount == 0 {
			fmt.Fprintf(os.Stderr, "Error: no processable files found for %q\n", *inputFile)
			os.Exit(2)
		}
	}

	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "No MRZ candidate lines found in input")
		os.Exit(2)
	}

	output, err := formatters.Export(finalConfig.format, results, formatters.FormatterOptions{
		Verbose: finalConfig.verbose,
		NoColor: finalConfig.noColor,
		ShowMRZ: finalConfig.showMRZ,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output), 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Print(output)
	}

	// Nonzero exit when any document was rejected, so scripts can gate on it
	for _, r := range results {
		if r.Outcome.Outcome == mrz.OutcomeRejected {
			os.Exit(1)
		}
	}
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
