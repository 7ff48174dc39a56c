package label

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/stealthscout/scout-cli/internal/console"
	"github.com/stealthscout/scout-cli/internal/model"
	"github.com/stealthscout/scout-cli/pkg/anthropic"
)

const (
	operatorModel     = "claude-sonnet-4-5-20250929"
	operatorMaxTokens = 16
	maxExamples       = 10
)

const operatorRubric = `You are a helpful AI assistant acting as an investment analyst reviewing LinkedIn profiles of stealth founders to label them as "senior operators" or not.

The goal is to arrive at an accurate label to decide if we should reach out to this founder to initiate an investment discussion.

You will be provided with a ####LINKEDIN PROFILE for each founder, including their professional work experience, job titles, companies, and durations for each role.

Review their work experience and determine if they can be classified as "senior operators" based on the following criteria:

	- Has 10 or more years of total professional experience (consider the most recent 15 years).
	- Has held leadership positions such as Director, Head, AVP, Senior Manager, Vice President, CTO, or Founder.
	- Demonstrates a clear career progression into roles with increasing responsibility.
	- Has founded or worked in prominent companies with significant impact (e.g., Fortune 500, industry leader companies, companies with significant funding or companies with notable market presence.)
	- Has spent enough time in roles to be able to show sustained impact and has not jumped from role to role too often.
	- Shows notable achievements or contributions to the industry, such as awards, patents, or leading projects resulting in substantial growth.

Label the profile as "TRUE" if the individual meets at least four of the above criteria.

Your final output should only include "TRUE" or "FALSE" without any additional text or explanation.`

// OperatorExampleStore supplies labelled seniority exemplars for the
// few-shot exchange.
type OperatorExampleStore interface {
	ListOperatorExamples(ctx context.Context) ([]model.OperatorExample, error)
}

// OperatorLabeller classifies seniority via the LLM, falling back to the
// operator prompt when the call fails outright.
type OperatorLabeller struct {
	llm      anthropic.Client
	examples OperatorExampleStore
	prompter console.Prompter
	modelID  string
}

// OperatorOption customizes an OperatorLabeller.
type OperatorOption func(*OperatorLabeller)

// WithOperatorModel overrides the model used for seniority labelling.
func WithOperatorModel(modelID string) OperatorOption {
	return func(l *OperatorLabeller) { l.modelID = modelID }
}

// NewOperatorLabeller wires an OperatorLabeller.
func NewOperatorLabeller(llm anthropic.Client, examples OperatorExampleStore, prompter console.Prompter, opts ...OperatorOption) *OperatorLabeller {
	l := &OperatorLabeller{
		llm:      llm,
		examples: examples,
		prompter: prompter,
		modelID:  operatorModel,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SeniorOperator labels the profile. A reply that is neither TRUE nor FALSE
// defaults to false; a failed call asks the operator instead.
func (l *OperatorLabeller) SeniorOperator(ctx context.Context, p *model.Profile) (bool, error) {
	if len(p.Experience) == 0 {
		zap.L().Warn("label: no experience entries", zap.String("full_name", p.FullName))
		return false, nil
	}

	messages, err := l.buildMessages(ctx, p)
	if err != nil {
		zap.L().Warn("label: loading operator exemplars failed", zap.Error(err))
		messages = []anthropic.Message{{Role: "user", Content: formatOperatorProfile(p.FullName, p.Experience)}}
	}

	resp, err := l.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     l.modelID,
		MaxTokens: operatorMaxTokens,
		System:    anthropic.BuildCachedSystemBlocks(operatorRubric),
		Messages:  messages,
	})
	if err != nil {
		zap.L().Error("label: senior operator call failed", zap.Error(err))
		return l.prompter.Confirm("Is this profile a senior operator?")
	}
	resp.Usage.LogCost(l.modelID, "senior_operator")

	switch strings.ToLower(strings.TrimSpace(resp.Text())) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		zap.L().Warn("label: senior operator reply not a boolean, defaulting to false",
			zap.String("reply", resp.Text()))
		return false, nil
	}
}

func (l *OperatorLabeller) buildMessages(ctx context.Context, p *model.Profile) ([]anthropic.Message, error) {
	examples, err := l.examples.ListOperatorExamples(ctx)
	if err != nil {
		return nil, err
	}
	if len(examples) > maxExamples {
		examples = examples[:maxExamples]
	}

	messages := make([]anthropic.Message, 0, 2*len(examples)+1)
	for _, ex := range examples {
		messages = append(messages,
			anthropic.Message{Role: "user", Content: formatOperatorProfile(ex.FullName, ex.Experience)},
			anthropic.Message{Role: "assistant", Content: strings.ToUpper(fmt.Sprintf("%t", ex.IsSeniorOperator))},
		)
	}
	messages = append(messages, anthropic.Message{Role: "user", Content: formatOperatorProfile(p.FullName, p.Experience)})
	return messages, nil
}

func formatOperatorProfile(name string, experience []model.Experience) string {
	lines := make([]string, 0, len(experience)+2)
	lines = append(lines, fmt.Sprintf("Profile: %s", name), "Experience:")
	for _, exp := range experience {
		lines = append(lines, fmt.Sprintf("- %s at %s for %s", exp.Title, exp.Company, exp.Duration))
	}
	return strings.Join(lines, "\n")
}
