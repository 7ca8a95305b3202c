package detect

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/docufield/invoice-extract/internal/common"
	"github.com/docufield/invoice-extract/internal/entity"
	"github.com/docufield/invoice-extract/internal/llm"
	"github.com/docufield/invoice-extract/internal/validate"
)

// Registry orchestrates detectors: scores them against an input set, selects
// the winner, runs its parse and optionally validates the output.
type Registry struct {
	detectors []Detector
	cfg       common.ParserConfig
	validator *validate.Validator
	log       *slog.Logger
}

// ParseOptions tunes a single Parse call.
type ParseOptions struct {
	// ForcedID bypasses scoring and selects a detector by id.
	ForcedID string
	// Validate pipes the parsed invoices through the validator.
	Validate bool
}

// ParseResult is the outcome of one detect-and-parse run.
type ParseResult struct {
	Invoices     []entity.Invoice          `json:"invoices"`
	DetectorUsed string                    `json:"detector_used"`
	Confidence   float64                   `json:"confidence"`
	Validation   []entity.ValidationResult `json:"validation,omitempty"`
}

func NewRegistry(cfg common.ParserConfig, validator *validate.Validator, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{cfg: cfg, validator: validator, log: logger}
}

// NewDefaultRegistry wires the built-in detectors in priority order. The LLM
// detector is registered only when an extractor is supplied.
func NewDefaultRegistry(cfg common.ParserConfig, validator *validate.Validator, extractor llm.FieldExtractor, logger *slog.Logger) *Registry {
	r := NewRegistry(cfg, validator, logger)
	r.Register(NewBlockJSONDetector(cfg, logger))
	r.Register(NewMarkdownDetector(logger))
	r.Register(NewTextOnlyDetector(logger))
	if extractor != nil {
		r.Register(NewLLMDetector(extractor, logger))
	}
	return r
}

func (r *Registry) Register(d Detector) {
	r.detectors = append(r.detectors, d)
}

// ListDetectors reports the registered detectors in registration order.
func (r *Registry) ListDetectors() []Descriptor {
	out := make([]Descriptor, 0, len(r.detectors))
	for _, d := range r.detectors {
		out = append(out, Descriptor{ID: d.ID(), Name: d.Name(), Extensions: d.Extensions()})
	}
	return out
}

// Detect scores every registered detector against the input and returns the
// best one along with the full score map. The returned detector is nil when
// nothing is registered.
func (r *Registry) Detect(files []entity.RawFile) (Detector, float64, map[string]float64) {
	scores := make(map[string]float64, len(r.detectors))
	var best Detector
	bestScore := -1.0
	for _, d := range r.detectors {
		s := d.CanParse(files)
		scores[d.ID()] = s
		if s > bestScore {
			best, bestScore = d, s
		}
	}
	if best == nil {
		return nil, 0, scores
	}
	return best, bestScore, scores
}

// Parse selects a detector (or honors opts.ForcedID), runs it, and optionally
// validates the output. It fails with NoSuitableParserError when no detector
// clears the configured threshold and none was forced.
func (r *Registry) Parse(ctx context.Context, files []entity.RawFile, opts ParseOptions) (*ParseResult, error) {
	var (
		chosen     Detector
		confidence float64
	)
	if opts.ForcedID != "" {
		for _, d := range r.detectors {
			if d.ID() == opts.ForcedID {
				chosen = d
				break
			}
		}
		if chosen == nil {
			return nil, common.NewAppError("UNKNOWN_DETECTOR",
				fmt.Sprintf("no detector with id %q", opts.ForcedID), common.ErrInvalidInput)
		}
		confidence = chosen.CanParse(files)
	} else {
		best, score, scores := r.Detect(files)
		if best == nil || score < r.cfg.MinConfidence {
			r.log.Warn("detect.registry.no_parser", "threshold", r.cfg.MinConfidence, "scores", scores)
			return nil, &common.NoSuitableParserError{Threshold: r.cfg.MinConfidence, Scores: scores}
		}
		chosen, confidence = best, score
	}

	r.log.Info("detect.registry.parse",
		"detector", chosen.ID(), "confidence", confidence, "files", len(files), "forced", opts.ForcedID != "")

	invoices, err := chosen.Parse(ctx, files)
	if err != nil {
		return nil, common.WrapError(err, fmt.Sprintf("detector %s", chosen.ID()))
	}

	res := &ParseResult{
		Invoices:     invoices,
		DetectorUsed: chosen.ID(),
		Confidence:   confidence,
	}
	if opts.Validate && r.validator != nil {
		res.Validation = r.validator.ValidateBatch(res.Invoices)
	}
	return res, nil
}

// ParseWithFallback tries detectors in descending confidence order, accepting
// the first that yields a non-empty invoice list. Detectors below the
// threshold are not tried. When every candidate fails, the aggregate error
// carries each detector's failure message.
func (r *Registry) ParseWithFallback(ctx context.Context, files []entity.RawFile, validateOut bool) (*ParseResult, error) {
	type candidate struct {
		d     Detector
		score float64
	}
	candidates := make([]candidate, 0, len(r.detectors))
	for _, d := range r.detectors {
		if s := d.CanParse(files); s >= r.cfg.MinConfidence {
			candidates = append(candidates, candidate{d, s})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	failures := make(map[string]string)
	for _, c := range candidates {
		invoices, err := c.d.Parse(ctx, files)
		if err != nil {
			r.log.Warn("detect.registry.fallback_detector_failed", "detector", c.d.ID(), "error", err)
			failures[c.d.ID()] = err.Error()
			continue
		}
		if len(invoices) == 0 {
			failures[c.d.ID()] = "no invoices extracted"
			continue
		}
		res := &ParseResult{Invoices: invoices, DetectorUsed: c.d.ID(), Confidence: c.score}
		if validateOut && r.validator != nil {
			res.Validation = r.validator.ValidateBatch(res.Invoices)
		}
		return res, nil
	}

	if len(failures) == 0 {
		scores := make(map[string]float64, len(r.detectors))
		for _, d := range r.detectors {
			scores[d.ID()] = d.CanParse(files)
		}
		return nil, &common.NoSuitableParserError{Threshold: r.cfg.MinConfidence, Scores: scores}
	}
	return nil, &common.BatchError{Failures: failures}
}
