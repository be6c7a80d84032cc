package analyzer

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/paleolab/fossilscan/internal/classifier"
	"github.com/paleolab/fossilscan/internal/config"
	"github.com/paleolab/fossilscan/internal/fossil"
	"github.com/paleolab/fossilscan/internal/source"
)

// Analyzer drives a classifier over specimen sources. One Analyzer is one
// run: it carries the run ID stamped into logs and labels.
type Analyzer struct {
	Classifier classifier.Classifier
	Workers    int
	Timeout    time.Duration
	MinWidth   int // advisory resolution floor, warn only
	MinHeight  int
	RunID      string
}

// New builds an analyzer for one run.
func New(c classifier.Classifier, cfg *config.Config) *Analyzer {
	return &Analyzer{
		Classifier: c,
		Workers:    cfg.Workers,
		Timeout:    time.Duration(cfg.TimeoutSeconds * float64(time.Second)),
		MinWidth:   cfg.MinWidth,
		MinHeight:  cfg.MinHeight,
		RunID:      uuid.NewString(),
	}
}

// AnalyzeImage analyzes exactly one image file. Load and classification
// failures are returned to the caller; there is no batch to fall back on.
func (a *Analyzer) AnalyzeImage(ctx context.Context, path string) (fossil.Result, error) {
	src, err := source.NewImageSource(path)
	if err != nil {
		return fossil.Result{}, err
	}
	defer src.Close()

	if src.Count() != 1 {
		return fossil.Result{}, fmt.Errorf("%w: %s: not a single image file", source.ErrImageLoad, path)
	}
	return a.analyzeOne(ctx, src, 0)
}

// AnalyzeSource analyzes every specimen of a source. Items run in parallel
// up to Workers, results land at their enumeration index so output order
// always matches input order. A failed item becomes an error-marked entry,
// never an aborted batch.
func (a *Analyzer) AnalyzeSource(ctx context.Context, src source.Source) []fossil.Result {
	n := src.Count()
	log.Printf("[*] run %s: analyzing %d specimen(s) with %d worker(s)", a.RunID, n, a.Workers)

	results := make([]fossil.Result, n)
	var g errgroup.Group
	g.SetLimit(a.Workers)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			res, err := a.analyzeOne(ctx, src, i)
			if err != nil {
				log.Printf("[!] %s: %v", src.Name(i), err)
				res = fossil.FailedResult(src.Name(i), err)
			}
			results[i] = res
			return nil
		})
	}
	g.Wait()

	return results
}

func (a *Analyzer) analyzeOne(ctx context.Context, src source.Source, index int) (fossil.Result, error) {
	img, err := src.Image(index)
	if err != nil {
		return fossil.Result{}, err
	}

	bounds := img.Bounds()
	if a.MinWidth > 0 && a.MinHeight > 0 &&
		(bounds.Dx() < a.MinWidth || bounds.Dy() < a.MinHeight) {
		log.Printf("[!] %s: resolution %dx%d is below the advised %dx%d, results may be unreliable",
			src.Name(index), bounds.Dx(), bounds.Dy(), a.MinWidth, a.MinHeight)
	}

	obs, err := a.classify(ctx, img)
	if err != nil {
		return fossil.Result{}, err
	}

	return fossil.Result{
		SourcePath:          src.Name(index),
		Classification:      obs.Type,
		GeologicalPeriod:    obs.GeologicalPeriod,
		AgeRange:            obs.AgeRange,
		PreservationQuality: obs.PreservationQuality,
		SpeciesCandidates:   obs.SpeciesCandidates,
		Confidence:          obs.Confidence,
		AnalyzedAt:          time.Now().UTC(),
		ImageWidth:          bounds.Dx(),
		ImageHeight:         bounds.Dy(),
	}, nil
}

// classify enforces the per-image timeout even against a classifier that
// ignores its context.
func (a *Analyzer) classify(ctx context.Context, img image.Image) (classifier.Observation, error) {
	if a.Timeout <= 0 {
		return a.Classifier.Classify(ctx, img)
	}

	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	type outcome struct {
		obs classifier.Observation
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		obs, err := a.Classifier.Classify(ctx, img)
		ch <- outcome{obs, err}
	}()

	select {
	case <-ctx.Done():
		return classifier.Observation{}, fmt.Errorf("%w: %v", classifier.ErrClassification, ctx.Err())
	case o := <-ch:
		return o.obs, o.err
	}
}
