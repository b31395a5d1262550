package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"imgscrub/core"
	"imgscrub/core/fallback"
	"imgscrub/core/native"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: imgscrub scrub <image>...")
		fmt.Println("       imgscrub inspect <image>")
		os.Exit(1)
	}

	cmd := os.Args[1]
	files := os.Args[2:]

	switch cmd {
	case "scrub":
		runScrub(files)
	case "inspect":
		runInspect(files[0])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		os.Exit(1)
	}
}

func runScrub(files []string) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	opts := core.DefaultOptions()
	d := core.NewDispatcher(native.Strippers(opts), fallback.Chain(opts), logger)

	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	failed := 0
	for _, f := range files {
		switch d.ProcessFile(f) {
		case core.OutcomeSuccess:
			ok.Printf("✓ %s\n", f)
		case core.OutcomeSkipped:
			fmt.Printf("- %s (skipped)\n", f)
		case core.OutcomeFailed:
			bad.Printf("✗ %s\n", f)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runInspect(path string) {
	rep, err := core.Inspect(path)
	if err != nil {
		color.Red("✗ %v", err)
		os.Exit(1)
	}

	fmt.Printf("File: %s\n", rep.Path)
	fmt.Printf("Type: %s\n", rep.Mime)
	if len(rep.Fields) == 0 {
		fmt.Println("(no metadata found)")
		return
	}
	fmt.Println()
	for _, f := range rep.Fields {
		fmt.Printf("  %-12s %-28s %s\n", f.Category, f.Key+":", f.Value)
	}
}
