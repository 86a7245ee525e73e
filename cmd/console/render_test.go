package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/practice-admin/internal/masterdata"
	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/internal/table"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

func modifierRows() []model.Record {
	return []model.Record{
		{"id": "m1", "modifier_code": "25", "description": "Significant E/M"},
		{"id": "m2", "modifier_code": "59", "description": ""},
	}
}

func TestRenderTable(t *testing.T) {
	cfg := masterdata.ModifierConfig()
	var buf bytes.Buffer

	require.NoError(t, renderTable(&buf, cfg, modifierRows(), []string{"m2"}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[0], "Modifier Code")
	assert.Contains(t, lines[0], "Description")
	assert.True(t, strings.HasPrefix(lines[1], " "))
	assert.Contains(t, lines[1], "Significant E/M")
	assert.True(t, strings.HasPrefix(lines[2], "*"))
	assert.Contains(t, lines[2], "—")
	assert.Equal(t, "2 modifiers", lines[3])
}

func TestRenderTable_Empty(t *testing.T) {
	cfg := masterdata.ModifierConfig()
	var buf bytes.Buffer

	require.NoError(t, renderTable(&buf, cfg, nil, nil))
	assert.Equal(t, "No modifiers found\n", buf.String())

	cfg.Labels.Empty = ""
	buf.Reset()
	require.NoError(t, renderTable(&buf, cfg, nil, nil))
	assert.Equal(t, "No modifiers found.\n", buf.String())
}

func TestRenderTable_FlattensMultilineCells(t *testing.T) {
	cfg := masterdata.ModifierConfig()
	rows := []model.Record{{"id": "m1", "modifier_code": "25", "description": "line one\nline\ttwo"}}
	var buf bytes.Buffer

	require.NoError(t, renderTable(&buf, cfg, rows, nil))
	assert.Contains(t, buf.String(), "line one line two")
}

func TestRenderNotification(t *testing.T) {
	var buf bytes.Buffer
	renderNotification(&buf, &table.Notification{Kind: table.KindSuccess, Title: "Success", Message: "Modifier added successfully"})
	renderNotification(&buf, nil)
	assert.Equal(t, "[success] Success: Modifier added successfully\n", buf.String())
}

func TestRenderConfig(t *testing.T) {
	cfg := masterdata.ModifierConfig()
	var buf bytes.Buffer

	require.NoError(t, renderConfig(&buf, cfg, map[string][]masterdata.Option{
		"is_active": {{Value: "true", Label: "Yes"}, {Value: "false", Label: "No"}},
	}))

	out := buf.String()
	assert.Contains(t, out, "Modifiers (modifiers)")
	assert.Contains(t, out, "columns: Modifier Code, Description")
	assert.Contains(t, out, "search:  modifier_code")
	assert.Contains(t, out, "true|false")
}

func TestRenderSources(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderSources(&buf, []*masterdata.Config{masterdata.LocationConfig(), masterdata.ModifierConfig()}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.Index(buf.String(), "locations") < strings.Index(buf.String(), "modifiers"))
}

func TestRenderSession(t *testing.T) {
	var buf bytes.Buffer
	renderSession(&buf, nil)
	assert.Equal(t, "Not signed in.\n", buf.String())

	buf.Reset()
	renderSession(&buf, &model.SessionResponse{
		ExpiresAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.Local),
		User:      &model.User{Email: "admin@example.com"},
		Profile:   &model.Profile{FullName: "Ada Admin", Role: model.RoleAdmin},
	})
	assert.Contains(t, buf.String(), "Signed in as admin@example.com (Ada Admin, admin)")
	assert.Contains(t, buf.String(), "2026-01-02 03:04")
}

func TestParseAssignments(t *testing.T) {
	cfg := masterdata.ModifierConfig()

	got, err := parseAssignments(cfg, []string{"modifier_code=25", "description=a=b", "is_active=No"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"modifier_code": "25", "description": "a=b", "is_active": "No"}, got)

	_, err = parseAssignments(cfg, []string{"modifier_code"})
	assert.Error(t, err)

	_, err = parseAssignments(cfg, []string{"locations=x"})
	assert.ErrorContains(t, err, "unknown field")
}

func TestParseFilters(t *testing.T) {
	got, err := parseFilters(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseFilters([]string{"state=CA"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"state": "CA"}, got)

	_, err = parseFilters([]string{"=CA"})
	assert.Error(t, err)
}

func TestFindRow(t *testing.T) {
	row, err := findRow(modifierRows(), "m2")
	require.NoError(t, err)
	assert.Equal(t, "59", row["modifier_code"])

	_, err = findRow(modifierRows(), "missing")
	assert.Error(t, err)
}

func TestConfirm(t *testing.T) {
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
	for _, tt := range tests {
		var out bytes.Buffer
		c := &console{in: bufio.NewReader(strings.NewReader(tt.input)), out: &out}
		assert.Equal(t, tt.want, c.confirm("Delete?"), tt.input)
		assert.Equal(t, "Delete? [y/N] ", out.String())
	}
}

func TestPrompt_SharesReader(t *testing.T) {
	c := &console{in: bufio.NewReader(strings.NewReader("a@b.co\nsecret123\n")), out: &bytes.Buffer{}}
	assert.Equal(t, "a@b.co", c.prompt("Email: "))
	assert.Equal(t, "secret123", c.prompt("Password: "))
}

func TestReport(t *testing.T) {
	var out bytes.Buffer
	c := &console{out: &out}
	sess := table.NewSession(masterdata.ModifierConfig(), nil, table.Options{
		OnDelete: func(_ context.Context, _ string) error { return apperrors.NotFound("modifier", nil) },
	})

	err := c.report(sess, sess.RequestDelete(context.Background(), "m1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errReported))
	assert.Equal(t, "[error] Error: Record not found.\n", out.String())

	plain := errors.New("boom")
	assert.Equal(t, plain, c.report(table.NewSession(masterdata.ModifierConfig(), nil, table.Options{}), plain))
}

func TestConsoleMessage(t *testing.T) {
	assert.Equal(t, "Record not found.", consoleMessage(apperrors.NotFound("x", nil)))
	assert.Equal(t, "not signed in", consoleMessage(errors.New("not signed in")))
}
