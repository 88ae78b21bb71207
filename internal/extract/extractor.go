package extract

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/summary-analyzer/internal/config"
	"github.com/sells-group/summary-analyzer/internal/model"
	"github.com/sells-group/summary-analyzer/internal/resilience"
	"github.com/sells-group/summary-analyzer/internal/schema"
	"github.com/sells-group/summary-analyzer/pkg/anthropic"
)

const extractSystem = `You are an expert business analyst extracting structured facts from a company executive summary. Answer only from the document text you are given. Respond with a single JSON object and nothing else.`

const strictJSONSystem = `Respond with a single valid JSON object only. No prose, no explanations, no markdown code fences.`

// Extractor runs field extraction over a document: the text is chunked,
// each chunk goes through a generation request, and the per-chunk
// records are merged by confidence.
type Extractor struct {
	client anthropic.Client
	schema *schema.Schema
	ai     config.AnthropicConfig
	cfg    config.ExtractConfig
}

func NewExtractor(client anthropic.Client, s *schema.Schema, ai config.AnthropicConfig, cfg config.ExtractConfig) *Extractor {
	return &Extractor{client: client, schema: s, ai: ai, cfg: cfg}
}

// Extract produces one merged extraction record for the document. Empty
// input short-circuits to an all-sentinel record without any generation
// request. A chunk whose response cannot be parsed even after a strict
// retry degrades to sentinels; only when every chunk fails at the
// transport level is an error returned.
func (e *Extractor) Extract(ctx context.Context, text string) (model.ExtractionRecord, error) {
	chunks := Chunks(text, e.cfg.ChunkSize, e.cfg.ChunkOverlap, e.cfg.MaxChunks)
	if len(chunks) == 0 {
		zap.L().Debug("extract: empty document, skipping generation")
		return SentinelRecord(e.schema), nil
	}

	records := make([]model.ExtractionRecord, len(chunks))
	var mu sync.Mutex
	var transportErrs []error

	g, gctx := errgroup.WithContext(ctx)
	limit := e.cfg.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, chunk := range chunks {
		g.Go(func() error {
			rec, err := e.extractChunk(gctx, chunk, i)
			if err != nil {
				zap.L().Warn("extract: chunk failed",
					zap.Int("chunk", i),
					zap.Error(err))
				mu.Lock()
				transportErrs = append(transportErrs, err)
				mu.Unlock()
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "extract: run chunks")
	}

	if len(transportErrs) == len(chunks) {
		return nil, eris.Wrapf(transportErrs[0], "extract: all %d chunks failed", len(chunks))
	}

	ordered := make([]model.ExtractionRecord, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			ordered = append(ordered, rec)
		}
	}
	return Merge(ordered, e.schema), nil
}

// extractChunk issues the generation request for one chunk, retrying
// transient transport failures, then parses the response. A malformed
// response earns exactly one strict-JSON retry before the chunk degrades
// to an all-sentinel record.
func (e *Extractor) extractChunk(ctx context.Context, chunk string, index int) (model.ExtractionRecord, error) {
	start := time.Now()
	resp, err := e.generate(ctx, extractSystem, e.buildPrompt(chunk))
	if err != nil {
		return nil, err
	}

	rec, parseErr := parseRecord(anthropic.Text(resp), e.schema)
	if parseErr != nil {
		zap.L().Warn("extract: malformed response, retrying with strict instructions",
			zap.Int("chunk", index),
			zap.Error(parseErr))
		retryResp, retryErr := e.generate(ctx, strictJSONSystem, e.buildPrompt(chunk))
		if retryErr == nil {
			rec, parseErr = parseRecord(anthropic.Text(retryResp), e.schema)
		}
		if retryErr != nil || parseErr != nil {
			zap.L().Warn("extract: chunk unusable after retry, degrading to sentinels",
				zap.Int("chunk", index))
			return SentinelRecord(e.schema), nil
		}
	}

	zap.L().Debug("extract: chunk complete",
		zap.Int("chunk", index),
		zap.Int("fields", len(rec)),
		zap.Duration("elapsed", time.Since(start)))
	return rec, nil
}

func (e *Extractor) generate(ctx context.Context, system, prompt string) (*anthropic.MessageResponse, error) {
	timeout := time.Duration(e.ai.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	cfg := resilience.DefaultRetryConfig()
	cfg.ShouldRetry = func(err error) bool {
		return anthropic.IsRetryable(err) || resilience.IsTransient(err)
	}

	temperature := e.ai.Temperature
	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return e.client.CreateMessage(callCtx, anthropic.MessageRequest{
			Model:       e.ai.Model,
			MaxTokens:   int64(e.ai.MaxTokens),
			System:      system,
			Temperature: &temperature,
			Messages: []anthropic.Message{
				{Role: "user", Content: prompt},
			},
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: generation request")
	}
	resp.Usage.LogCost(e.ai.Model, "extract")
	return resp, nil
}

// buildPrompt assembles the extraction prompt from the schema's field
// hints, pinning the exact JSON shape expected back.
func (e *Extractor) buildPrompt(chunk string) string {
	var hints strings.Builder
	for _, f := range e.schema.Fields() {
		fmt.Fprintf(&hints, "- %s: %s\n", f.Name, f.PromptHint)
	}

	keys := make([]string, 0, e.schema.Len())
	for _, name := range e.schema.Names() {
		keys = append(keys, fmt.Sprintf("%q", name))
	}

	return fmt.Sprintf(`Extract the following fields from the executive summary below.

Fields:
%s
Return a JSON object with exactly these keys: %s

Each key maps to an object of the form {"value": "<answer as plain text>", "confidence_score": <number between 0.0 and 1.0>}.
If the document does not provide a field, use the value %q with confidence_score 0.0.

Executive summary:
%s`,
		hints.String(), strings.Join(keys, ", "), schema.Sentinel, chunk)
}
