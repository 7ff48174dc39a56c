package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stealthscout/scout-cli/internal/model"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"track", "refresh", "companies", "profiles", "migrate", "seed"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "scout-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestTrackCommand_Flags(t *testing.T) {
	flag := trackCmd.Flags().Lookup("company")
	require.NotNil(t, flag, "track command should have --company flag")

	catFlag := trackCmd.Flags().Lookup("category")
	require.NotNil(t, catFlag, "track command should have --category flag")
	assert.Equal(t, "stealth_founder", catFlag.DefValue)
}

func TestRefreshCommand_HasSubcommands(t *testing.T) {
	cmds := refreshCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, name := range []string{"profile", "company", "all"} {
		assert.True(t, names[name], "refresh should have subcommand %q", name)
	}
}

func TestProfilesCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"company", "status", "repeat-founder", "senior-operator", "limit", "offset", "by-duration"} {
		flag := profilesListCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "profiles list should have --%s flag", flagName)
	}

	flag := profilesHistoryCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "50", flag.DefValue)
}

func TestProfilesCommand_HasSubcommands(t *testing.T) {
	cmds := profilesCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, name := range []string{"list", "count", "urls", "history"} {
		assert.True(t, names[name], "profiles should have subcommand %q", name)
	}
}

func TestProfilesURLsCommand_Flags(t *testing.T) {
	statusFlag := profilesURLsCmd.Flags().Lookup("status")
	require.NotNil(t, statusFlag, "profiles urls should have --status flag")

	catFlag := profilesURLsCmd.Flags().Lookup("category")
	require.NotNil(t, catFlag, "profiles urls should have --category flag")
	assert.Equal(t, "stealth_founder", catFlag.DefValue)
}

func TestSeedCommand_HasSubcommands(t *testing.T) {
	cmds := seedCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, name := range []string{"status-examples", "operator-examples"} {
		assert.True(t, names[name], "seed should have subcommand %q", name)
	}
}

func TestSortByRecentDuration(t *testing.T) {
	profiles := []model.Profile{
		{FullName: "Short", Experience: []model.Experience{{Duration: "3 mos"}}},
		{FullName: "Long", Experience: []model.Experience{{Duration: "2 yrs 1 mo"}}},
		{FullName: "None"},
		{FullName: "Medium", Experience: []model.Experience{{Duration: "11 mos"}}},
	}

	sortByRecentDuration(profiles)

	got := make([]string, len(profiles))
	for i, p := range profiles {
		got[i] = p.FullName
	}
	assert.Equal(t, []string{"Long", "Medium", "Short", "None"}, got)
}

func TestFormatProfilesList(t *testing.T) {
	var buf bytes.Buffer
	formatProfilesList(&buf, []model.Profile{
		{
			FullName:         "Jane Doe",
			LinkedInURL:      "https://www.linkedin.com/in/jane-doe/",
			Status:           model.StatusStealth,
			StatusConfidence: model.ConfidenceHigh,
			IsRepeatFounder:  true,
			Experience:       []model.Experience{{Title: "Co-Founder", Company: "Stealth Startup", Duration: "3 mos"}},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "stealth")
	assert.Contains(t, out, "Co-Founder at Stealth Startup (3 mos)")
	assert.Contains(t, out, "https://www.linkedin.com/in/jane-doe/")
}
