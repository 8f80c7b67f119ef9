// Package main runs the tilefade settings pipeline from the command line.
//
// It loads a module manifest and an authored settings list, runs one
// registration pass against an in-memory platform backend, and prints the
// report. With -watch the settings file is monitored and the pass re-runs
// on change; with -script a Lua hook script observes the registration
// events.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ravenhollow/tilefade/internal/hook"
	"github.com/ravenhollow/tilefade/internal/host"
	"github.com/ravenhollow/tilefade/internal/manifest"
	"github.com/ravenhollow/tilefade/internal/script"
	"github.com/ravenhollow/tilefade/internal/settings"
	"github.com/ravenhollow/tilefade/internal/settings/descriptor"
	"github.com/ravenhollow/tilefade/internal/settings/loader"
	"github.com/ravenhollow/tilefade/internal/settings/watcher"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		manifestPath = flag.String("manifest", "module.toml", "module manifest file (.toml or .json)")
		settingsPath = flag.String("settings", "settings.toml", "settings list file (.toml, .yaml or .json)")
		langPath     = flag.String("lang", "", "translation table file (.json)")
		scriptPath   = flag.String("script", "", "Lua hook script")
		watch        = flag.Bool("watch", false, "re-run the pass when the settings file changes")
		debug        = flag.Bool("debug", false, "enable debug logging")
		showVersion  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("tilefade %s\n", version)
		return 0
	}

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	m, err := manifest.Load(*manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var translator host.Translator
	if *langPath != "" {
		translator, err = loadTranslations(*langPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	dispatcher := hook.New(log)
	backend := host.NewMemoryBackend()
	bus := host.NewMemoryBus()

	if *scriptPath != "" {
		engine := script.NewEngine(dispatcher, log)
		defer engine.Close()
		if err := engine.LoadFile(*scriptPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	runPass := func(path string) {
		list, err := loader.New().Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}

		pipeline, err := settings.New(settings.Options{
			Manifest:   m,
			Backend:    backend,
			Bus:        bus,
			Translator: translator,
			Dispatcher: dispatcher,
			Logger:     log,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}

		if err := pipeline.Define(list...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}

		report, err := pipeline.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		if report != nil {
			printReport(m.ID, report)
		}
	}

	runPass(*settingsPath)

	if !*watch {
		return 0
	}

	w, err := watcher.New(*settingsPath, runPass, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := w.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer w.Close()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
	return 0
}

// loadTranslations reads a flat key->text JSON table.
func loadTranslations(path string) (host.MapTranslator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading translations %s: %w", path, err)
	}
	var table map[string]string
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing translations %s: %w", path, err)
	}
	return host.MapTranslator(table), nil
}

// printReport writes one registration pass summary to stdout.
func printReport(namespace string, r *descriptor.Report) {
	fmt.Printf("namespace %s: %d processed, %d registered\n",
		namespace, r.Processed, r.Successful)
	for _, key := range r.Succeeded {
		fmt.Printf("  + %s\n", key)
	}
	for _, key := range r.PlannedExcluded {
		fmt.Printf("  - %s (hidden)\n", key)
	}
	for _, key := range r.UnplannedFailed {
		fmt.Printf("  ! %s: %s\n", key, r.Messages[key])
	}
}
