// cmd/tdlauncher/main.go - opens a document in the host application version it was saved with.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/tdlauncher/pkg/catalog"
	"github.com/windowsadmins/tdlauncher/pkg/config"
	"github.com/windowsadmins/tdlauncher/pkg/download"
	"github.com/windowsadmins/tdlauncher/pkg/inspect"
	"github.com/windowsadmins/tdlauncher/pkg/launcher"
	"github.com/windowsadmins/tdlauncher/pkg/logging"
	"github.com/windowsadmins/tdlauncher/pkg/platform"
	"github.com/windowsadmins/tdlauncher/pkg/session"
	"github.com/windowsadmins/tdlauncher/pkg/tui"
	"github.com/windowsadmins/tdlauncher/pkg/version"
)

var logger *logging.Logger

func main() {
	// Define command-line flags.
	debug := pflag.Bool("debug", false, "Enable debug logging to the console and a log file.")
	configPath := pflag.String("config", "", "Path to the configuration file (default: tdlauncher.yaml next to the executable).")
	showConfig := pflag.Bool("show-config", false, "Display the current configuration and exit.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")
	report := pflag.Bool("report", false, "Print the version resolution as YAML and exit without opening anything.")
	checkUpdates := pflag.Bool("check-update", false, "Check GitHub for a newer launcher release and exit.")
	noUI := pflag.Bool("no-ui", false, "Run without the terminal UI: open the document, or download and install the missing version.")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [document.toe]\n\n", version.AppName())
		fmt.Fprintf(os.Stderr, "Opens a document with the version it requires, offering to download it when missing.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	// Handle --version flag. --debug adds build details.
	if *versionFlag {
		if *debug {
			version.PrintFull()
		} else {
			version.Print()
		}
		os.Exit(0)
	}

	exeDir := platform.ExecutableDir()
	cfg, err := config.LoadConfig(*configPath, exeDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Debug = true
	}
	if cfg.Debug && cfg.LogFile == "" {
		home, _ := os.UserHomeDir()
		cwd, _ := os.Getwd()
		cfg.LogFile = config.DefaultLogFile(platform.IsAppBundle(), home, cwd)
	}

	// Initialize logger.
	logger = logging.New(cfg.Debug)
	if err := logging.Init(cfg); err != nil {
		logger.Fatal("Error initializing logger: %v", err)
	}
	defer logging.CloseLogger()
	logging.Debug("Launcher starting", "version", version.Version().Version, "session", logging.GetSessionID(), "log_file", logging.CurrentLogFile())

	// Show configuration if requested.
	if *showConfig {
		if cfgYaml, err := yaml.Marshal(cfg); err == nil {
			logger.Printf("Current configuration:\n%s", string(cfgYaml))
		}
		os.Exit(0)
	}

	if *checkUpdates {
		checkUpdate(version.Version().Version)
		os.Exit(0)
	}

	// Handle system signals for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		logger.Warning("Signal received, exiting gracefully: %s", sig.String())
		cancel()
		logging.CloseLogger()
		os.Exit(1)
	}()

	documentPath := resolveDocument(pflag.Args(), cfg)
	p := platform.Current()
	arch := platform.DetectArch(p)
	logging.Debug("Platform detected", "os", string(p), "arch", string(arch))

	// Scanning and inspection both finish before anything is shown.
	cat, err := catalog.NewPlatformScanner(cfg, p).Scan(ctx)
	if err != nil {
		logger.Fatal("Failed to scan installed versions: %v", err)
	}

	required, err := inspect.New(inspectorPath(cfg, p, exeDir, cat), cfg.ProductName).Inspect(ctx, documentPath)
	if err != nil {
		var ie *inspect.InspectionError
		if errors.As(err, &ie) {
			logger.Fatal("Could not determine the required version: %v", ie)
		}
		logger.Fatal("Inspection failed: %v", err)
	}

	deps := session.Dependencies{
		Fetcher:     download.NewHTTPFetcher(cfg.HTTPTimeout()),
		Launcher:    &launcher.ProcessLauncher{OS: p},
		Platform:    p,
		Arch:        arch,
		BaseURL:     cfg.DownloadBaseURL,
		DownloadDir: cfg.DownloadDir,
		Countdown:   cfg.Countdown(),
		IsRunning:   launcher.IsRunning,
	}

	if *report {
		if err := printReport(buildReport(documentPath, required, cat, deps)); err != nil {
			logger.Fatal("Failed to print report: %v", err)
		}
		os.Exit(0)
	}

	if *noUI {
		deps.Presenter = newConsolePresenter(logger, os.Stdout, cfg.Debug)
		s := session.New(deps, documentPath, required, cat)
		if err := runHeadless(ctx, s); err != nil {
			logger.Error("%v", err)
			logging.CloseLogger()
			os.Exit(1)
		}
		os.Exit(0)
	}

	s := session.New(deps, documentPath, required, cat)
	logging.SetConsoleEnabled(false)
	err = tui.Run(ctx, s)
	logging.SetConsoleEnabled(true)
	if err != nil {
		logger.Fatal("Terminal UI failed: %v", err)
	}
	logging.Info("Launcher exiting", "state", s.State().String())
}

// resolveDocument returns the absolute document path, falling back to the
// bundled sample document when no argument is given.
func resolveDocument(args []string, cfg *config.Configuration) string {
	var doc string
	if len(args) > 0 {
		doc = args[0]
		logging.Debug("Document argument", "path", doc)
	} else {
		doc = cfg.SampleDocument
		logging.Warn("No document given, using sample document", "path", doc)
	}
	if abs, err := filepath.Abs(doc); err == nil {
		doc = abs
	}
	if info, err := os.Stat(doc); err != nil {
		logging.Error("Document does not exist", "path", doc, "error", err)
	} else {
		logging.Debug("Document found", "path", doc, "size", info.Size())
	}
	return doc
}

// inspectorPath prefers the configured tool. On macOS the default tool
// comes from the newest installed bundle.
func inspectorPath(cfg *config.Configuration, p platform.OS, exeDir string, cat *catalog.Catalog) string {
	if cfg.InspectorPath != "" {
		return cfg.InspectorPath
	}
	var bundle string
	if newest, ok := cat.Newest(); ok {
		bundle = newest.BundlePath
	}
	tool := inspect.DefaultToolPath(p, exeDir, bundle)
	logging.Debug("Inspector location", "tool", tool)
	return tool
}

// runHeadless opens the document when the required version is installed,
// otherwise downloads and installs it.
func runHeadless(ctx context.Context, s *session.Session) error {
	if s.Snapshot().RequiredInstalled {
		return s.Launch()
	}
	if err := s.Download(ctx); err != nil {
		return err
	}
	return s.Install()
}
