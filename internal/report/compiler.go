package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/summary-analyzer/internal/config"
	"github.com/sells-group/summary-analyzer/internal/model"
	"github.com/sells-group/summary-analyzer/internal/resilience"
	"github.com/sells-group/summary-analyzer/internal/schema"
	"github.com/sells-group/summary-analyzer/pkg/anthropic"
)

const compileSystem = `You are an investment analyst writing a concise assessment of a company from extracted facts. Write only from the facts you are given; never invent information. Respond with a single JSON object and nothing else.`

const strictJSONSystem = `Respond with a single valid JSON object only. No prose, no explanations, no markdown code fences.`

// Compiler builds the four report sections from a normalized extraction
// record. In generate mode a single generation request produces prose
// for every section at once; template mode assembles sections
// deterministically without any generation request.
type Compiler struct {
	client anthropic.Client
	schema *schema.Schema
	ai     config.AnthropicConfig
	cfg    config.ReportConfig
}

func NewCompiler(client anthropic.Client, s *schema.Schema, ai config.AnthropicConfig, cfg config.ReportConfig) *Compiler {
	return &Compiler{client: client, schema: s, ai: ai, cfg: cfg}
}

// Compile produces a report from a normalized record. Sections whose
// underlying fields are all absent stay empty rather than carrying
// invented prose; a record with no data at all yields empty sections
// without any generation request. Generation failures degrade to
// template sections, so a report always comes back once extraction
// has produced a record.
func (c *Compiler) Compile(ctx context.Context, rec model.ExtractionRecord, sourceID string) (*model.Report, error) {
	report := &model.Report{
		Extraction:  rec.Clone(),
		GeneratedAt: time.Now().UTC(),
		SourceID:    sourceID,
	}

	if !hasAnyData(rec) {
		zap.L().Info("report: no extracted data, skipping section generation",
			zap.String("source_id", sourceID))
		return report, nil
	}

	var sections model.ReportSections
	switch c.cfg.Mode {
	case config.ReportModeTemplate:
		sections = c.templateSections(rec)
	default:
		sections = c.generateSections(ctx, rec)
	}

	report.Sections = c.clearEmptySections(rec, sections)
	return report, nil
}

// generateSections asks for all four sections in one request. A
// malformed response earns one strict retry; transport failures and
// double parse failures both degrade to the deterministic template, so
// a report is always produced once extraction has data.
func (c *Compiler) generateSections(ctx context.Context, rec model.ExtractionRecord) model.ReportSections {
	prompt := c.buildPrompt(rec)

	resp, err := c.generate(ctx, compileSystem, prompt)
	if err != nil {
		zap.L().Warn("report: generation request failed, falling back to template sections",
			zap.Error(err))
		return c.templateSections(rec)
	}

	sections, parseErr := parseSections(anthropic.Text(resp))
	if parseErr != nil {
		zap.L().Warn("report: malformed section response, retrying with strict instructions",
			zap.Error(parseErr))
		retryResp, retryErr := c.generate(ctx, strictJSONSystem, prompt)
		if retryErr == nil {
			sections, parseErr = parseSections(anthropic.Text(retryResp))
		}
		if retryErr != nil || parseErr != nil {
			zap.L().Warn("report: falling back to template sections")
			return c.templateSections(rec)
		}
	}
	return sections
}

func (c *Compiler) generate(ctx context.Context, system, prompt string) (*anthropic.MessageResponse, error) {
	timeout := time.Duration(c.ai.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	maxTokens := c.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.ai.MaxTokens
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.ShouldRetry = func(err error) bool {
		return anthropic.IsRetryable(err) || resilience.IsTransient(err)
	}

	temperature := c.ai.Temperature
	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return c.client.CreateMessage(callCtx, anthropic.MessageRequest{
			Model:       c.ai.Model,
			MaxTokens:   int64(maxTokens),
			System:      system,
			Temperature: &temperature,
			Messages: []anthropic.Message{
				{Role: "user", Content: prompt},
			},
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "report: generation request")
	}
	resp.Usage.LogCost(c.ai.Model, "report")
	return resp, nil
}

func (c *Compiler) buildPrompt(rec model.ExtractionRecord) string {
	var facts strings.Builder
	for _, f := range c.schema.Fields() {
		field := rec[f.Name]
		if field.Value == "" || field.Value == schema.Sentinel {
			continue
		}
		fmt.Fprintf(&facts, "- %s: %s (confidence %.2f)\n",
			c.schema.Label(f.Name), field.Value, field.Confidence)
	}

	var sectionDesc strings.Builder
	for _, sec := range c.schema.Sections() {
		labels := make([]string, 0, len(sec.Fields))
		for _, name := range sec.Fields {
			labels = append(labels, c.schema.Label(name))
		}
		fmt.Fprintf(&sectionDesc, "- %q (%s): cover %s\n",
			sec.Key, sec.Label, strings.Join(labels, ", "))
	}

	return fmt.Sprintf(`Write an investment assessment of the company from these extracted facts:

%s
Return a JSON object with exactly these keys, each mapping to one or two paragraphs of plain text:
%s
Base every statement on the facts above. If the facts for a section are missing, return an empty string for that section.`,
		facts.String(), sectionDesc.String())
}

// parseSections decodes the generation response into the four report
// sections. Unknown keys are ignored; missing keys come back empty.
func parseSections(text string) (model.ReportSections, error) {
	var raw map[string]string
	if err := json.Unmarshal([]byte(anthropic.CleanJSON(text)), &raw); err != nil {
		return model.ReportSections{}, eris.Wrap(err, "report: parse section response")
	}
	return model.ReportSections{
		NatureAndState:         strings.TrimSpace(raw["nature_and_state"]),
		MarketNeedAndSize:      strings.TrimSpace(raw["market_need_and_size"]),
		ROIElements:            strings.TrimSpace(raw["roi_elements"]),
		ManagementTeamStrength: strings.TrimSpace(raw["management_team_strength"]),
	}, nil
}

// clearEmptySections blanks any section whose underlying fields are all
// sentinels, regardless of what the generation produced for it.
func (c *Compiler) clearEmptySections(rec model.ExtractionRecord, sections model.ReportSections) model.ReportSections {
	for _, sec := range c.schema.Sections() {
		if sectionHasData(rec, sec) {
			continue
		}
		setSection(&sections, sec.Key, "")
	}
	return sections
}

func hasAnyData(rec model.ExtractionRecord) bool {
	for _, field := range rec {
		if field.Value != "" && field.Value != schema.Sentinel {
			return true
		}
	}
	return false
}

func sectionHasData(rec model.ExtractionRecord, sec schema.SectionSpec) bool {
	for _, name := range sec.Fields {
		field, ok := rec[name]
		if ok && field.Value != "" && field.Value != schema.Sentinel {
			return true
		}
	}
	return false
}

func setSection(sections *model.ReportSections, key, value string) {
	switch key {
	case "nature_and_state":
		sections.NatureAndState = value
	case "market_need_and_size":
		sections.MarketNeedAndSize = value
	case "roi_elements":
		sections.ROIElements = value
	case "management_team_strength":
		sections.ManagementTeamStrength = value
	}
}
