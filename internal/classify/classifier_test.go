package classify

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stealthscout/scout-cli/internal/model"
	"github.com/stealthscout/scout-cli/pkg/anthropic"
)

// fakeLLM scripts CreateMessage replies and captures requests.
type fakeLLM struct {
	replies  []string
	err      error
	requests []anthropic.MessageRequest
}

func (f *fakeLLM) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: reply}},
	}, nil
}

// memExamples is an in-memory ExampleStore.
type memExamples struct {
	examples []model.StatusExample
	appended []model.StatusExample
	listErr  error
}

func (m *memExamples) ListStatusExamples(ctx context.Context) ([]model.StatusExample, error) {
	return m.examples, m.listErr
}

func (m *memExamples) AppendStatusExample(ctx context.Context, ex model.StatusExample) error {
	m.appended = append(m.appended, ex)
	return nil
}

func stealthProfile() *model.Profile {
	return &model.Profile{
		FullName: "Jane Doe",
		Headline: "Building something new in AI",
		Experience: []model.Experience{
			{Company: "Stealth Mode", Title: "Founder", Duration: "3 mos", DateRange: "Jun 2026 - Present"},
		},
	}
}

func newTestClassifier(llm anthropic.Client, store ExampleStore) *Classifier {
	return NewClassifier(llm, store,
		WithClock(func() time.Time { return time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC) }),
		WithRand(rand.New(rand.NewSource(1))),
	)
}

func TestCandidate_ParsesStatusAndConfidence(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{replies: []string{"stealth|HIGH"}}
	c := newTestClassifier(llm, &memExamples{})

	got, err := c.Candidate(context.Background(), stealthProfile())
	require.NoError(t, err)
	assert.Equal(t, model.StatusStealth, got.Status)
	assert.Equal(t, model.ConfidenceHigh, got.Confidence)

	require.Len(t, llm.requests, 1)
	req := llm.requests[0]
	require.NotEmpty(t, req.System)
	assert.Contains(t, req.System[0].Text, "Today's date: September 1, 2026")
	assert.Contains(t, req.System[0].Text, "STATUS|CONFIDENCE")
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "####HEADLINE: Building something new in AI")
	assert.Contains(t, req.Messages[0].Content, "Founder at Stealth Mode (3 mos, Jun 2026 - Present)")
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.6, *req.Temperature, 1e-9)
}

func TestCandidate_BalancedExemplarSampling(t *testing.T) {
	t.Parallel()

	store := &memExamples{}
	for _, status := range model.AllStatuses {
		for i := 0; i < 6; i++ {
			store.examples = append(store.examples, model.StatusExample{
				Headline:         "example " + string(status),
				RecentExperience: model.Experience{Company: "Acme", Title: "Engineer", Duration: "1 yr", DateRange: "2025 - Present"},
				AssignedStatus:   status,
			})
		}
	}
	llm := &fakeLLM{replies: []string{"recently_quit|low"}}
	c := newTestClassifier(llm, store)

	_, err := c.Candidate(context.Background(), stealthProfile())
	require.NoError(t, err)

	prompt := llm.requests[0].Messages[0].Content
	for _, status := range model.AllStatuses {
		assert.Contains(t, prompt, "example "+string(status))
	}
	// 4 per status, never the full pool of 6.
	assert.Equal(t, 16, countOccurrences(prompt, "####HEADLINE: example"))
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}

func TestCandidate_ExampleLoadFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{replies: []string{"currently_employed|high"}}
	c := newTestClassifier(llm, &memExamples{listErr: assert.AnError})

	got, err := c.Candidate(context.Background(), stealthProfile())
	require.NoError(t, err)
	assert.Equal(t, model.StatusCurrentlyEmployed, got.Status)
}

func TestCandidate_NoExperienceFails(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(&fakeLLM{}, &memExamples{})
	_, err := c.Candidate(context.Background(), &model.Profile{Headline: "Engineer"})
	require.Error(t, err)
}

func TestParseResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		want    Result
		wantErr bool
	}{
		{"canonical", "stealth|HIGH", Result{model.StatusStealth, model.ConfidenceHigh}, false},
		{"lowercase with spaces", "  recently_quit | low \n", Result{model.StatusRecentlyQuit, model.ConfidenceLow}, false},
		{"unknown status", "retired|high", Result{}, true},
		{"bad confidence", "stealth|maybe", Result{}, true},
		{"missing delimiter", "stealth", Result{}, true},
		{"extra parts", "stealth|high|really", Result{}, true},
		{"empty", "", Result{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseResult(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				var mre *MalformedResponseError
				assert.ErrorAs(t, err, &mre)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
