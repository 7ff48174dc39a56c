package main

import (
	"os"

	"github.com/stealthscout/scout-cli/internal/classify"
	"github.com/stealthscout/scout-cli/internal/console"
	"github.com/stealthscout/scout-cli/internal/label"
	"github.com/stealthscout/scout-cli/internal/pipeline"
	"github.com/stealthscout/scout-cli/internal/scrape"
	"github.com/stealthscout/scout-cli/internal/store"
	"github.com/stealthscout/scout-cli/pkg/anthropic"
	"github.com/stealthscout/scout-cli/pkg/linkedin"
)

// initOrchestrator wires the scrape, classify, and label stages around an
// already-opened store.
func initOrchestrator(st store.Store) *pipeline.Orchestrator {
	prompter := console.NewStdio(nil, nil)

	li := linkedin.NewClient(cfg.LinkedIn.Key, linkedin.WithBaseURL(cfg.LinkedIn.BaseURL))
	fetcher := scrape.NewFetcher(li)

	llm := anthropic.NewClient(cfg.Anthropic.Key)
	classifier := classify.NewClassifier(llm, st, classify.WithModel(cfg.Anthropic.StatusModel))
	resolver := classify.NewVerifier(classifier, prompter, os.Stdout)
	senior := label.NewOperatorLabeller(llm, st, prompter,
		label.WithOperatorModel(cfg.Anthropic.OperatorModel))

	return pipeline.New(st, fetcher, resolver, senior, prompter, os.Stdout)
}
