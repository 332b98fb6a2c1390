package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tc := range tests {
		var out bytes.Buffer
		confirm := promptConfirm(strings.NewReader(tc.input), &out)
		assert.Equal(t, tc.want, confirm(context.Background(), "Are you sure you want to delete this coupon?"), "input %q", tc.input)
		assert.Equal(t, "Are you sure you want to delete this coupon? [y/N] ", out.String())
	}
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "login", "logout", "whoami", "health", "list", "delete", "toggle", "dashboard"} {
		assert.Contains(t, names, want)
	}
	require.NotNil(t, root.PersistentFlags().Lookup("api-url"))
	require.NotNil(t, root.PersistentFlags().Lookup("probe-interval"))
}
