package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cv-screening-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopifyResume = "Built a shopify theme, handled store management and shopify seo. Skills: liquid templating, custom sections, javascript, html5"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEvaluateCommand(t *testing.T) {
	t.Run("Should score text for a job title", func(t *testing.T) {
		out, err := run(t, "evaluate", "--job-title", "Shopify Developer", "--text", shopifyResume)
		require.NoError(t, err)

		var decision domain.DecisionRecord
		require.NoError(t, json.Unmarshal([]byte(out), &decision))
		assert.Equal(t, "SHOPIFY_DEVELOPER", decision.RoleID)
		assert.Equal(t, domain.DecisionAccept, decision.Decision)
	})

	t.Run("Should read a plain text file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cv.txt")
		require.NoError(t, os.WriteFile(path, []byte(shopifyResume), 0o600))

		out, err := run(t, "evaluate", "--role", "SHOPIFY_DEVELOPER", "--file", path)
		require.NoError(t, err)
		assert.Contains(t, out, `"roleId": "SHOPIFY_DEVELOPER"`)
	})

	t.Run("Should mark empty text as REJECT_EMPTY", func(t *testing.T) {
		out, err := run(t, "evaluate", "--role", "GCMS_LAB_SPECIALIST", "--text", "   ")
		require.NoError(t, err)
		assert.Contains(t, out, `"rank": "REJECT_EMPTY"`)
	})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown role", []string{"evaluate", "--role", "NOPE", "--text", "x"}, `unknown role "NOPE"`},
		{"unknown title", []string{"evaluate", "--job-title", "Barista", "--text", "x"}, "no role matches"},
		{"missing input", []string{"evaluate", "--role", "GCMS_LAB_SPECIALIST"}, "file text"},
		{"both selectors", []string{"evaluate", "--role", "A", "--job-title", "B", "--text", "x"}, "none of the others"},
		{"missing file", []string{"evaluate", "--role", "GCMS_LAB_SPECIALIST", "--file", "/does/not/exist.pdf"}, "read /does/not/exist.pdf"},
	}
	for _, tt := range tests {
		t.Run("Should fail on "+tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRolesCommand(t *testing.T) {
	out, err := run(t, "roles")
	require.NoError(t, err)
	assert.Contains(t, out, "ROLE")
	assert.Contains(t, out, "GCMS_LAB_SPECIALIST")
	assert.Contains(t, out, "SHOPIFY_DEVELOPER")
}
