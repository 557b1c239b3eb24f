package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fiche <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate   Generate a product sheet and export it as an A5 PDF")
	fmt.Fprintln(w, "  export     Export the stored sheet again")
	fmt.Fprintln(w, "  preview    Print the HTML preview of the stored sheet")
	fmt.Fprintln(w, "  parse      Parse raw AI output into sheet content")
	fmt.Fprintln(w, "  badges     List available badges")
	fmt.Fprintln(w, "  serve      Run the preview and editing API")
	fmt.Fprintln(w, "  doctor     Check browser, config and webhook")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'fiche help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

func printExportFlagsUsage(w io.Writer) {
	fmt.Fprintln(w, "Export:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "      --device <s>          Capture device: auto, mobile, desktop")
	fmt.Fprintln(w, "      --scale <n>           Capture scale 1-4 (overrides device)")
	fmt.Fprintln(w, "      --session-dir <dir>   Session directory")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fiche generate <product name> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ask the generation webhook for a sheet, store it as the current")
	fmt.Fprintln(w, "session and export it to Fiche_<name>_<timestamp>.pdf.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sheet:")
	fmt.Fprintln(w, "  -b, --badge <name>        Badge to apply (repeatable)")
	fmt.Fprintln(w, "  -s, --style <knob=value>  Style knob (repeatable), e.g. headerColor=#60191A")
	fmt.Fprintln(w, "  -t, --timeout <d>         Webhook timeout (e.g., 45s, 2m)")
	fmt.Fprintln(w, "      --no-export           Store the session without exporting")
	fmt.Fprintln(w)
	printExportFlagsUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fiche export [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export the stored session again, with its badges and styles.")
	fmt.Fprintln(w)
	printExportFlagsUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fiche preview [--session-dir <dir>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the HTML preview of the stored session to stdout.")
}

// printParseUsage prints usage for the parse command.
func printParseUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fiche parse [file|-] [--format json|yaml]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Parse raw AI output (XML or Markdown dialect) from a file or stdin")
	fmt.Fprintln(w, "and print the sheet content with parsing diagnostics.")
}

// printBadgesUsage prints usage for the badges command.
func printBadgesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fiche badges [--grouped] [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List the badges offered by the webhook.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fiche serve [--addr host:port] [--max-sessions n]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP API for generating, previewing, editing and")
	fmt.Fprintln(w, "downloading sheets.")
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fiche doctor [--json] [-c <config>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, configuration and webhook reachability.")
	fmt.Fprintln(w, "Exits 1 when an error is found; warnings exit 0.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "generate":
		printGenerateUsage(env.Stdout)
	case "export":
		printExportUsage(env.Stdout)
	case "preview":
		printPreviewUsage(env.Stdout)
	case "parse":
		printParseUsage(env.Stdout)
	case "badges":
		printBadgesUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: fiche version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: fiche help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
