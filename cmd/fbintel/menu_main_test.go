package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMenu(input string) *MenuUI {
	return NewMenuUI(&cobra.Command{}, strings.NewReader(input))
}

func TestPromptDays(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  int
	}{
		{"empty input takes the default", "\n", defaultCollectDays},
		{"explicit value", "3\n", 3},
		{"non-numeric re-prompts", "soon\n14\n", 14},
		{"zero re-prompts", "0\n2\n", 2},
		{"negative re-prompts", "-5\n1\n", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ui := newTestMenu(tc.input)
			assert.Equal(t, tc.want, ui.promptDays())
		})
	}
}

func TestPromptYesNo(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{" y \n", true},
		{"n\n", false},
		{"yes\n", false},
		{"\n", false},
	}
	for _, tc := range cases {
		ui := newTestMenu(tc.input)
		assert.Equal(t, tc.want, ui.promptYesNo("launch?"), "input %q", tc.input)
	}
}

func TestCollectFlow_YesLaunchesOnce(t *testing.T) {
	ui := newTestMenu("2\ny\n")

	var collectedDays, launches int
	err := ui.collectFlow(
		func(days int) error {
			collectedDays = days
			return nil
		},
		func() error {
			launches++
			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, collectedDays)
	assert.Equal(t, 1, launches)
}

func TestCollectFlow_NoSkipsDashboard(t *testing.T) {
	ui := newTestMenu("\nn\n")

	var collectedDays, launches int
	err := ui.collectFlow(
		func(days int) error {
			collectedDays = days
			return nil
		},
		func() error {
			launches++
			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, defaultCollectDays, collectedDays)
	assert.Equal(t, 0, launches)
}

func TestCollectFlow_FailureSkipsDashboardPrompt(t *testing.T) {
	ui := newTestMenu("1\ny\n")

	launches := 0
	err := ui.collectFlow(
		func(int) error { return fmt.Errorf("provider outage") },
		func() error {
			launches++
			return nil
		},
	)
	require.Error(t, err)
	assert.Equal(t, 0, launches)
}

func TestCollectFlow_LaunchErrorNeverFailsSession(t *testing.T) {
	ui := newTestMenu("1\ny\n")

	err := ui.collectFlow(
		func(int) error { return nil },
		func() error { return fmt.Errorf("port busy") },
	)
	assert.NoError(t, err)
}

func TestHandleMenuChoice(t *testing.T) {
	ui := newTestMenu("")

	err := ui.handleMenuChoice("0")
	require.EqualError(t, err, "exit")

	assert.NoError(t, ui.handleMenuChoice("banana"))
}
