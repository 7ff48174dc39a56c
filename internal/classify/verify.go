package classify

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/stealthscout/scout-cli/internal/console"
	"github.com/stealthscout/scout-cli/internal/model"
)

// Verifier runs the human-in-the-loop resolution around a raw model
// classification.
type Verifier struct {
	classifier *Classifier
	prompter   console.Prompter
	out        io.Writer
}

// NewVerifier wires a Verifier over a classifier, an operator prompter, and
// the writer used for the review display.
func NewVerifier(classifier *Classifier, prompter console.Prompter, out io.Writer) *Verifier {
	return &Verifier{classifier: classifier, prompter: prompter, out: out}
}

// Resolve classifies the profile and settles the final status.
//
// When autoApprove is set AND the candidate matches oldStatus, the model's
// answer is accepted without review. A candidate that would change the
// stored status always goes to the operator, regardless of autoApprove.
//
// Classification failures resolve to the empty status with low confidence;
// callers must treat that as "skip all status writes".
func (v *Verifier) Resolve(ctx context.Context, p *model.Profile, autoApprove bool, oldStatus model.ProfileStatus) (Result, error) {
	candidate, err := v.classifier.Candidate(ctx, p)
	if err != nil {
		zap.L().Error("classify: candidate failed", zap.String("linkedin_url", p.LinkedInURL), zap.Error(err))
		return Result{Status: model.StatusUnknown, Confidence: model.ConfidenceLow}, nil
	}

	log := zap.L().With(
		zap.String("linkedin_url", p.LinkedInURL),
		zap.String("old_status", string(oldStatus)),
		zap.String("candidate_status", string(candidate.Status)),
	)

	statusUnchanged := candidate.Status == oldStatus
	if autoApprove && statusUnchanged {
		log.Info("classify: auto-approving unchanged status")
		return candidate, nil
	}
	if autoApprove && !statusUnchanged {
		log.Info("classify: manual verification required, status would change")
	}

	v.showReview(p, candidate)

	correct, err := v.prompter.Confirm("\nIs this classification correct?")
	if err != nil {
		return Result{}, err
	}

	final := candidate
	if correct {
		if err := v.maybeSaveExample(ctx, p, final.Status, "Save this as a training example?"); err != nil {
			return Result{}, err
		}
		return final, nil
	}

	options := make([]string, len(model.AllStatuses))
	for i, s := range model.AllStatuses {
		options[i] = string(s)
	}
	chosen, err := v.prompter.Select("Enter correct status", options)
	if err != nil {
		return Result{}, err
	}
	final.Status = model.ProfileStatus(chosen)

	if err := v.maybeSaveExample(ctx, p, final.Status, "Save this correction as a training example?"); err != nil {
		return Result{}, err
	}
	return final, nil
}

func (v *Verifier) showReview(p *model.Profile, candidate Result) {
	fmt.Fprintf(v.out, "\nProfile Review:\n%s\n", "--------------------------------------------------")
	fmt.Fprintf(v.out, "Name: %s\n", p.FullName)
	fmt.Fprintf(v.out, "Headline: %s\n", p.Headline)

	if recent := p.RecentExperience(); recent != nil {
		fmt.Fprintf(v.out, "\nMost Recent Experience:\n")
		fmt.Fprintf(v.out, "Title: %s\n", recent.Title)
		fmt.Fprintf(v.out, "Company: %s\n", recent.Company)
		fmt.Fprintf(v.out, "Duration: %s\n", recent.Duration)
		fmt.Fprintf(v.out, "Date Range: %s\n", recent.DateRange)
	}

	fmt.Fprintf(v.out, "\nAI Classification: %s (Confidence: %s)\n", candidate.Status, candidate.Confidence)
}

func (v *Verifier) maybeSaveExample(ctx context.Context, p *model.Profile, status model.ProfileStatus, question string) error {
	save, err := v.prompter.Confirm(question)
	if err != nil || !save {
		return err
	}

	ex := model.StatusExample{
		Headline:       p.Headline,
		AssignedStatus: status,
		CreatedAt:      v.classifier.now(),
	}
	if recent := p.RecentExperience(); recent != nil {
		ex.RecentExperience = *recent
	}
	if err := v.classifier.examples.AppendStatusExample(ctx, ex); err != nil {
		return err
	}
	zap.L().Info("classify: saved training example", zap.String("assigned_status", string(status)))
	return nil
}
