// Command pcdiag is a PC bottleneck analyzer.
//
// Scans the local machine (or reads a scan document produced by the
// agent), detects what limits gaming and desktop performance, and returns
// tiered recommendations with a 0-100 performance score.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/config"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/demo"
	diffpkg "github.com/dmitriimaksimovdevelop/pcdiag/internal/diff"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/engine"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/installer"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/orchestrator"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/output"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/scan"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/server"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/store"
)

var (
	version = "0.1.0"
)

const (
	defaultUploadURL = "http://localhost:3000/api/scan"
	uploadTimeout    = 15 * time.Second
)

// flagKeys maps command-line flags to configuration keys. A flag that was
// set explicitly overrides the config file and PCDIAG_* variables.
var flagKeys = map[string]string{
	"addr":       "server.addr",
	"rate-limit": "server.rate_limit",
	"store":      "store.path",
	"catalog":    "catalog.path",
	"log-level":  "logging.level",
	"log-format": "logging.format",
	"sample":     "collect.sample_interval",
	"timeout":    "collect.timeout",
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pcdiag",
		Short: "PC bottleneck analyzer",
		Long: `pcdiag — find what limits a PC's gaming and desktop performance.

Reads a hardware scan (CPU, GPU, RAM, storage, OS and BIOS settings),
detects bottlenecks against a catalog of CPUs and GPUs, and produces
free, cheap and upgrade recommendations plus a 0-100 score.

Scans come from 'pcdiag collect' on the machine itself or from the
agent, which uploads them to 'pcdiag serve'.`,
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./pcdiag.yaml or /etc/pcdiag/pcdiag.yaml)")
	rootCmd.PersistentFlags().String("catalog", "", "YAML file extending the built-in CPU/GPU catalog")

	// --- analyze command ---
	var (
		analyzeFormat string
		analyzeOutput string
	)
	analyzeCmd := &cobra.Command{
		Use:   "analyze <scan.json|->",
		Short: "Analyze a scan document",
		Long:  "Validate a scan document and print its bottleneck report. Use - to read stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			cpus, gpus, err := loadCatalogs(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			s, err := readScan(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			r, err := analyze(s, cpus, gpus, time.Now())
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), r, analyzeFormat, analyzeOutput)
		},
	}
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "text", "Output format: text, json")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "-", "Output file path (- for stdout)")

	// --- collect command ---
	var (
		collectOutput    string
		collectAnalyze   bool
		collectFormat    string
		collectQuiet     bool
		collectVerbose   bool
		collectUpload    bool
		collectUploadURL string
	)
	collectCmd := &cobra.Command{
		Use:   "collect",
		Short: "Scan this machine",
		Long: `Run all collectors and produce a scan document. With --analyze the
report is printed instead; with --upload the scan is posted to a pcdiag
server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			ccfg := cfg.Collect.CollectorConfig()
			ccfg.Quiet = collectQuiet
			ccfg.Verbose = collectVerbose

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := orchestrator.BuildScan(ctx, ccfg)
			if err != nil {
				return err
			}
			scan.Normalize(s, time.Now())

			if collectUpload {
				client := &http.Client{Timeout: uploadTimeout}
				if err := uploadScan(ctx, client, collectUploadURL, s); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Uploaded scan %s to %s\n", s.ScanID, collectUploadURL)
			}

			if !collectAnalyze {
				return writeJSONTo(cmd.OutOrStdout(), s, collectOutput)
			}
			if err := scan.Validate(s); err != nil {
				return fmt.Errorf("collected scan is incomplete: %w", err)
			}
			cpus, gpus, err := loadCatalogs(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			r, err := analyze(s, cpus, gpus, time.Now())
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), r, collectFormat, collectOutput)
		},
	}
	collectCmd.Flags().StringVarP(&collectOutput, "output", "o", "-", "Output file path (- for stdout)")
	collectCmd.Flags().BoolVarP(&collectAnalyze, "analyze", "a", false, "Analyze the scan and print the report")
	collectCmd.Flags().StringVarP(&collectFormat, "format", "f", "text", "Report format with --analyze: text, json")
	collectCmd.Flags().BoolVarP(&collectQuiet, "quiet", "q", false, "Suppress progress output")
	collectCmd.Flags().BoolVarP(&collectVerbose, "verbose", "v", false, "Show per-collector debug lines")
	collectCmd.Flags().Duration("sample", 0, "CPU/GPU utilization sample window (default 1s)")
	collectCmd.Flags().Duration("timeout", 0, "Bound on the whole collection (default 30s)")
	collectCmd.Flags().BoolVar(&collectUpload, "upload", false, "Post the scan to a pcdiag server")
	collectCmd.Flags().StringVar(&collectUploadURL, "upload-url", defaultUploadURL, "Upload endpoint")

	// --- demo command ---
	var demoFormat string
	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Analyze the built-in demo scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			cpus, gpus, err := loadCatalogs(cfg.Catalog.Path)
			if err != nil {
				return err
			}
			r, err := analyze(demo.Scan(), cpus, gpus, time.Now())
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), r, demoFormat, "-")
		},
	}
	demoCmd.Flags().StringVarP(&demoFormat, "format", "f", "text", "Output format: text, json")

	// --- diff command ---
	var diffOutput string
	diffCmd := &cobra.Command{
		Use:   "diff <baseline.json> <current.json>",
		Short: "Compare two pcdiag reports",
		Long:  "Show score and subsystem deltas, resolved and new bottlenecks between two JSON reports.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.OutOrStdout(), args[0], args[1], diffOutput)
		},
	}
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "-", "Output diff file path (JSON); - prints text")

	// --- serve command ---
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Accept scan uploads from agents, store them and serve reports over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	serveCmd.Flags().String("addr", "", "Listen address (default :3000)")
	serveCmd.Flags().Float64("rate-limit", 0, "Per-client requests per second; 0 disables (default 10)")
	serveCmd.Flags().String("store", "", "SQLite database path; empty keeps scans in memory (default pcdiag.db)")
	serveCmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
	serveCmd.Flags().String("log-format", "", "Log format: json, console")

	// --- install command ---
	var installDryRun bool
	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install the helper tools collectors use",
		Long:  "Detect the Linux distribution and install pciutils, dmidecode, smartmontools and lm-sensors.",
		RunE: func(cmd *cobra.Command, args []string) error {
			inst := installer.New(installDryRun)
			inst.Out = cmd.OutOrStdout()
			return inst.Run(cmd.Context())
		},
	}
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "Show what would be installed")

	// --- capabilities command ---
	capabilitiesCmd := &cobra.Command{
		Use:   "capabilities",
		Short: "Show which helper tools are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), installer.FormatTools(installer.CheckTools(nil)))
			return nil
		},
	}

	rootCmd.AddCommand(analyzeCmd, collectCmd, demoCmd, diffCmd, serveCmd,
		newCatalogCmd(), installCmd, capabilitiesCmd, newMCPCmd())
	return rootCmd
}

// loadSettings reads config file, .env and environment, then applies the
// flags of cmd that were set explicitly.
func loadSettings(cmd *cobra.Command) (*config.Config, *viper.Viper, error) {
	path, _ := cmd.Flags().GetString("config")
	v, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// bindFlags binds every flag in fs that has a config key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// loadCatalogs returns the built-in catalogs, extended by path when set.
func loadCatalogs(path string) (cpus, gpus *catalog.Catalog, err error) {
	if path == "" {
		return catalog.DefaultCPUs(), catalog.DefaultGPUs(), nil
	}
	return catalog.LoadFile(path)
}

// readScan parses a scan document from a file, or from stdin for "-".
func readScan(path string, stdin io.Reader) (*model.Scan, error) {
	if path == "-" {
		return scan.Parse(stdin, time.Now())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scan: %w", err)
	}
	defer f.Close()

	s, err := scan.Parse(f, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func analyze(s *model.Scan, cpus, gpus *catalog.Catalog, now time.Time) (*model.Report, error) {
	r, err := engine.Analyze(s, engine.WithCatalogs(cpus, gpus))
	if err != nil {
		return nil, err
	}
	at := now.UTC()
	r.AnalyzedAt = &at
	return r, nil
}

// writeReport renders r as text or JSON to path, or to stdout for "-".
func writeReport(stdout io.Writer, r *model.Report, format, path string) error {
	switch format {
	case "json":
		return writeJSONTo(stdout, r, path)
	case "text", "":
		return writeTo(stdout, path, func(w io.Writer) error {
			_, err := io.WriteString(w, output.FormatReport(r))
			return err
		})
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}

func writeJSONTo(stdout io.Writer, v any, path string) error {
	return writeTo(stdout, path, func(w io.Writer) error { return output.EncodeJSON(w, v) })
}

func writeTo(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// uploadScan posts the scan to a pcdiag server's upload endpoint.
func uploadScan(ctx context.Context, client *http.Client, url string, s *model.Scan) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode scan: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload: server returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return nil
}

// runDiff handles the `diff` command.
func runDiff(stdout io.Writer, baselinePath, currentPath, outputPath string) error {
	baseline, err := diffpkg.LoadReport(baselinePath)
	if err != nil {
		return fmt.Errorf("load baseline: %w", err)
	}
	current, err := diffpkg.LoadReport(currentPath)
	if err != nil {
		return fmt.Errorf("load current: %w", err)
	}

	result := diffpkg.Compare(baseline, current)

	if outputPath == "-" || outputPath == "" {
		_, err := io.WriteString(stdout, diffpkg.FormatDiff(result))
		return err
	}
	return output.WriteJSON(result, outputPath)
}

// runServe handles the `serve` command and blocks until SIGINT/SIGTERM.
func runServe(cmd *cobra.Command) error {
	cfg, v, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(v)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cpus, gpus, err := loadCatalogs(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.Store.Path == "" {
		logger.Warn("no store path configured, scans are kept in memory only")
	} else {
		logger.Info("scan store opened", zap.String("path", cfg.Store.Path))
	}

	srv := server.New(cfg.Server.Addr, st, logger, server.Options{
		RateLimit:    cfg.Server.RateLimit,
		Burst:        cfg.Server.Burst,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		CPUs:         cpus,
		GPUs:         gpus,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}
	logger.Info("pcdiag server stopped")
	return nil
}
