// Package classify assigns a profile status via the LLM and resolves the
// human-verification loop around it.
package classify

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stealthscout/scout-cli/internal/model"
	"github.com/stealthscout/scout-cli/pkg/anthropic"
)

const (
	defaultModel       = "claude-haiku-4-5-20251001"
	defaultMaxTokens   = 64
	examplesPerStatus  = 4
	classifyTempFactor = 0.6
)

// statusRubric is the classification rubric. The current date is prepended
// at call time so relative criteria ("within past 3 months") stay anchored.
const statusRubric = `You are an expert AI assistant classifying LinkedIn profile statuses of startup founders.
The goal is to categorize each profile into one of four statuses AND provide a confidence rating.

OUTPUT FORMAT:
Respond ONLY with: STATUS|CONFIDENCE
Where:
- STATUS must be exactly one of: "stealth", "building_in_public", "recently_quit", "currently_employed"
- CONFIDENCE must be exactly "HIGH" or "LOW"

Mark confidence as LOW if ANY of these are true:
- Missing or ambiguous date information
- Vague or non-standard job titles
- Profile doesn't clearly fit any status criteria
- Limited or incomplete information
- Recent profile changes or transitions
- Contradictory signals between headline and experience

Mark confidence as HIGH only if ALL of these are true:
- Clear, unambiguous status indicators present
- Complete date and duration information
- Standard, recognizable job titles
- Clear company information
- Profile firmly fits one status category
- No contradictory or mixed signals
- Sufficient information available
- Pattern matches known examples

You will be provided with profile data containing:
####HEADLINE: The founder's LinkedIn headline
####EXPERIENCE: Their most recent professional experience including company name, title, duration and date range

Status Classification Criteria:
STEALTH status indicators:
- Company name contains "Stealth", "Stealth Mode" or "Stealth Startup"
- Intentionally vague/minimal information in headline or experience
- Has been unemployed for more than 3 months, or the last experience held was quit about 2-3 months ago.
- Using terms like "building", "exploring" or "stealth" without naming specific company
- Member of known startup communities (e.g. South Park Commons) while building

BUILDING_IN_PUBLIC status indicators:
- Clear company name which is that of a startup and not a large existing company
- Openly stating what they're building in headline
- Detailed founder title at named company
- The role is Founder in a company you are not familiar with.
- The role of Founder is their current role.
- Actively describing product/mission
- Using terms like "building" or "founder at [Named Company]" or "CEO at [Named Company]"

RECENTLY_QUIT status indicators:
- Most recent role has an end date within past 3 months
- "Ex-" or "Former" in headline
- Gap since last full-time role relative to today
- Short duration in most recent role
- Interim/transitional roles or self-employed
- The last experience has ended within past 90-120 days.

CURRENTLY_EMPLOYED status indicators:
- Active full-time role at established company (not startup)
- Standard corporate title (Director, VP, etc.)
- No founder/entrepreneurial signals
- Clear ongoing employment (no end date)
- Regular corporate role patterns`

// MalformedResponseError reports a model reply that does not match the
// STATUS|CONFIDENCE contract.
type MalformedResponseError struct {
	Response string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("classify: malformed model response %q", e.Response)
}

// ExampleStore provides the labelled exemplars that seed the few-shot
// prompt and accepts new ones confirmed during verification.
type ExampleStore interface {
	ListStatusExamples(ctx context.Context) ([]model.StatusExample, error)
	AppendStatusExample(ctx context.Context, ex model.StatusExample) error
}

// Result is a raw model classification before verification.
type Result struct {
	Status     model.ProfileStatus
	Confidence model.Confidence
}

// Classifier produces status candidates from profile headline and most
// recent experience.
type Classifier struct {
	llm      anthropic.Client
	examples ExampleStore
	modelID  string
	now      func() time.Time
	rng      *rand.Rand
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithModel overrides the default model ID.
func WithModel(modelID string) Option {
	return func(c *Classifier) { c.modelID = modelID }
}

// WithClock overrides the date source used in the prompt.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

// WithRand overrides the source used for exemplar sampling.
func WithRand(rng *rand.Rand) Option {
	return func(c *Classifier) { c.rng = rng }
}

// NewClassifier creates a Classifier backed by the given LLM client and
// exemplar store.
func NewClassifier(llm anthropic.Client, examples ExampleStore, opts ...Option) *Classifier {
	c := &Classifier{
		llm:      llm,
		examples: examples,
		modelID:  defaultModel,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Candidate classifies a single profile. A profile with no experience
// entries cannot be classified.
func (c *Classifier) Candidate(ctx context.Context, p *model.Profile) (Result, error) {
	recent := p.RecentExperience()
	if recent == nil {
		return Result{}, eris.New("classify: profile has no experience entries")
	}

	examplesText, err := c.formatExamples(ctx)
	if err != nil {
		// Classification can proceed without exemplars; the rubric alone
		// still constrains the output.
		zap.L().Warn("classify: loading exemplars failed", zap.Error(err))
	}

	temp := classifyTempFactor
	resp, err := c.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.modelID,
		MaxTokens:   defaultMaxTokens,
		System:      anthropic.BuildCachedSystemBlocks(c.systemPrompt()),
		Messages:    []anthropic.Message{{Role: "user", Content: c.userPrompt(examplesText, p.Headline, recent)}},
		Temperature: &temp,
	})
	if err != nil {
		return Result{}, eris.Wrap(err, "classify: status call")
	}
	resp.Usage.LogCost(c.modelID, "status_classification")

	return parseResult(resp.Text())
}

func (c *Classifier) systemPrompt() string {
	return fmt.Sprintf("Today's date: %s\n%s", c.now().Format("January 2, 2006"), statusRubric)
}

func (c *Classifier) userPrompt(examplesText, headline string, recent *model.Experience) string {
	var b strings.Builder
	if examplesText != "" {
		b.WriteString("Here are some examples with their classifications:\n\n")
		b.WriteString(examplesText)
		b.WriteString("\n\n")
	}
	b.WriteString("Classify this profile with status and confidence:\n")
	b.WriteString(formatExemplarHeader(headline, recent))
	return b.String()
}

// formatExamples samples a balanced set of exemplars per status and formats
// them the way the prompt expects.
func (c *Classifier) formatExamples(ctx context.Context) (string, error) {
	all, err := c.examples.ListStatusExamples(ctx)
	if err != nil {
		return "", err
	}

	byStatus := make(map[model.ProfileStatus][]model.StatusExample)
	for _, ex := range all {
		if ex.AssignedStatus.Valid() {
			byStatus[ex.AssignedStatus] = append(byStatus[ex.AssignedStatus], ex)
		}
	}

	var formatted []string
	for _, status := range model.AllStatuses {
		pool := byStatus[status]
		c.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		n := min(examplesPerStatus, len(pool))
		for _, ex := range pool[:n] {
			formatted = append(formatted,
				fmt.Sprintf("%s\n%s", formatExemplarHeader(ex.Headline, &ex.RecentExperience), ex.AssignedStatus))
		}
	}
	return strings.Join(formatted, "\n\n"), nil
}

func formatExemplarHeader(headline string, exp *model.Experience) string {
	return fmt.Sprintf("####HEADLINE: %s\n####EXPERIENCE: %s at %s (%s, %s)",
		headline, exp.Title, exp.Company, exp.Duration, exp.DateRange)
}

// parseResult enforces the STATUS|CONFIDENCE reply contract.
func parseResult(text string) (Result, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(text)), "|")
	if len(parts) != 2 {
		return Result{}, &MalformedResponseError{Response: text}
	}

	status := model.ProfileStatus(strings.TrimSpace(parts[0]))
	if !status.Valid() {
		return Result{}, &MalformedResponseError{Response: text}
	}

	confidence := model.Confidence(strings.TrimSpace(parts[1]))
	if confidence != model.ConfidenceHigh && confidence != model.ConfidenceLow {
		return Result{}, &MalformedResponseError{Response: text}
	}

	return Result{Status: status, Confidence: confidence}, nil
}
