// dcpverify is a thin command-line front end over the verify package: it
// runs every check against one or more DCP directories and prints or
// exports the resulting notes. It is a demonstration harness, not part of
// this module's versioned API - library callers should use verify.Run and
// verify.VerifyDCP directly.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rendiffdev/dcp/certs"
	"github.com/rendiffdev/dcp/internal/config"
	"github.com/rendiffdev/dcp/internal/mxfkit"
	"github.com/rendiffdev/dcp/notes"
	"github.com/rendiffdev/dcp/pkg/logger"
	"github.com/rendiffdev/dcp/verify"
)

var (
	trustRootsPath string
	strictBv21     bool
	pdfOut         string
	xlsxOut        string
	logLevel       string
)

func main() {
	root := &cobra.Command{
		Use:   "dcpverify <dcp-directory> [dcp-directory...]",
		Short: "Run conformance checks over one or more DCP directories",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runVerify,
	}

	root.Flags().StringVar(&trustRootsPath, "trust", "", "PEM file or directory of trusted root certificates for signature checks")
	root.Flags().BoolVar(&strictBv21, "strict-bv21", false, "treat bv21-error notes as failures")
	root.Flags().StringVar(&pdfOut, "pdf", "", "write a PDF report to this path (single-directory runs only)")
	root.Flags().StringVar(&xlsxOut, "xlsx", "", "write an XLSX report to this path (single-directory runs only)")
	root.Flags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dcpverify: %v\n", err)
		os.Exit(1)
	}
}

func runVerify(cmd *cobra.Command, dirs []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if strictBv21 {
		cfg.StrictBv21 = true
	}
	log := logger.New(cfg.LogLevel)

	var roots []*certs.Certificate
	if trustRootsPath != "" {
		roots, err = certs.ReadPEMFile(trustRootsPath)
		if err != nil {
			return fmt.Errorf("read trust roots: %w", err)
		}
	}

	// This toolkit ships no real MXF bitstream reader (see
	// internal/mxfkit's package doc): NewFakeProber is the best available
	// stand-in for a caller that doesn't supply its own mxfkit.Prober.
	opts := verify.Options{
		Prober:       mxfkit.NewFakeProber(),
		TrustedRoots: roots,
	}

	start := time.Now()
	foundNotes, loadErr := verify.RunWithLoadErrors(dirs, opts)
	duration := time.Since(start).Seconds()

	collector := notes.NewCollector()
	for _, n := range foundNotes {
		collector.Add(n)
	}

	outcome := "pass"
	minSeverity := notes.SeverityError
	if cfg.StrictBv21 {
		minSeverity = notes.SeverityBv21Error
	}
	failed := collector.HasSeverity(minSeverity) || loadErr != nil
	if failed {
		outcome = "fail"
	}
	collector.RecordMetrics(outcome, duration)

	for _, n := range foundNotes {
		log.Info().Str("code", n.Code).Str("severity", n.Severity.String()).Msg(n.Message)
		fmt.Println(n.String())
	}

	if pdfOut != "" {
		if err := collector.WritePDFReport(dirs[0], pdfOut); err != nil {
			return fmt.Errorf("write PDF report: %w", err)
		}
	}
	if xlsxOut != "" {
		if err := collector.WriteXLSXReport(dirs[0], xlsxOut); err != nil {
			return fmt.Errorf("write XLSX report: %w", err)
		}
	}

	if loadErr != nil {
		return loadErr
	}
	if failed {
		return fmt.Errorf("%d director(ies) failed verification", len(dirs))
	}
	return nil
}
