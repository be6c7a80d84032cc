package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paleolab/fossilscan/internal/analyzer"
	"github.com/paleolab/fossilscan/internal/classifier"
	"github.com/paleolab/fossilscan/internal/config"
	"github.com/paleolab/fossilscan/internal/export"
	"github.com/paleolab/fossilscan/internal/fossil"
	"github.com/paleolab/fossilscan/internal/source"
)

type analyzeOptions struct {
	image      string
	directory  string
	output     string
	format     string
	classifier string
	workers    int
	timeout    float64
	qrLabels   string
	configPath string
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a fossil image, a directory of images, or a scanned plate PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.image, "image", "i", "", "path to a fossil image (or a scanned plate PDF)")
	f.StringVarP(&opts.directory, "directory", "d", "", "directory containing fossil images")
	f.StringVarP(&opts.output, "output", "o", "results.json", "output file for results")
	f.StringVarP(&opts.format, "format", "f", "json", "output format: json or csv")
	f.StringVar(&opts.classifier, "classifier", "", "classifier variant: heuristic or vision")
	f.IntVar(&opts.workers, "workers", 0, "parallel batch workers (default: number of CPUs)")
	f.Float64Var(&opts.timeout, "timeout", 0, "per-image timeout in seconds (0 disables)")
	f.StringVar(&opts.qrLabels, "qr-labels", "", "directory to write specimen QR label PNGs into")
	f.StringVar(&opts.configPath, "config", "", "path to YAML config file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	if (opts.image == "") == (opts.directory == "") {
		return fmt.Errorf("%w: exactly one of --image or --directory must be given", ErrUsage)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)

	switch strings.ToLower(cfg.Format) {
	case "json", "csv":
	default:
		return fmt.Errorf("%w: unknown format %q (want json or csv)", ErrUsage, cfg.Format)
	}

	cls, err := classifier.New(cfg.Classifier, cfg)
	if err != nil {
		return err
	}
	a := analyzer.New(cls, cfg)

	var results []fossil.Result
	ctx := cmd.Context()

	switch {
	case opts.image != "" && strings.HasSuffix(strings.ToLower(opts.image), ".pdf"):
		// a plate scan yields one specimen per page, batch semantics apply
		src, err := source.Open(opts.image, cfg.PDFRenderDPI)
		if err != nil {
			return err
		}
		defer src.Close()
		results = a.AnalyzeSource(ctx, src)
	case opts.image != "":
		res, err := a.AnalyzeImage(ctx, opts.image)
		if err != nil {
			return err
		}
		results = []fossil.Result{res}
	default:
		src, err := source.Open(opts.directory, cfg.PDFRenderDPI)
		if err != nil {
			return err
		}
		defer src.Close()
		results = a.AnalyzeSource(ctx, src)
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[*] analyzed %d specimen(s), %d failed\n", len(results), failed)

	if err := export.Results(results, cfg.OutputPath, cfg.Format); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[*] results saved to %s\n", cfg.OutputPath)

	if cfg.QRLabelDir != "" {
		n, err := export.WriteLabels(results, cfg.QRLabelDir, a.RunID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[*] wrote %d QR label(s) to %s\n", n, cfg.QRLabelDir)
	}

	return nil
}

// applyFlags folds explicit analyze flags over the loaded config.
func applyFlags(cmd *cobra.Command, opts *analyzeOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") || cfg.OutputPath == "" {
		cfg.OutputPath = opts.output
	}
	if flags.Changed("format") || cfg.Format == "" {
		cfg.Format = opts.format
	}
	if flags.Changed("classifier") {
		cfg.Classifier = opts.classifier
	}
	if flags.Changed("workers") && opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = opts.timeout
	}
	if flags.Changed("qr-labels") {
		cfg.QRLabelDir = opts.qrLabels
	}
}
