package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-daterange/pkg/renderers/jsonview"
)

func TestRun_JSONRenderer(t *testing.T) {
	out, err := run(context.Background(), cliOptions{
		renderer: "json",
		start:    "2020-01-01",
		end:      "2020-01-05",
		messages: []string{"No results"},
		timezone: "UTC",
		action:   "/search",
	})
	require.NoError(t, err)

	var payload jsonview.Payload
	require.NoError(t, json.Unmarshal(out, &payload))
	assert.Equal(t, "/search", payload.Form.Action)
	assert.Equal(t, "2020-01-01", payload.View.Start.Value)
	assert.Equal(t, "2020-01-01", payload.View.End.Min)
	assert.False(t, payload.View.End.Disabled)
	assert.Equal(t, []string{"No results"}, payload.View.Messages)
}

func TestRun_VanillaFetching(t *testing.T) {
	out, err := run(context.Background(), cliOptions{
		renderer: "vanilla",
		fetching: true,
		timezone: "UTC",
		styles:   true,
	})
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "Loading...")
	assert.Contains(t, html, `aria-busy="true"`)
	assert.Contains(t, html, "<style data-daterange-styles>")
}

func TestRun_UnknownRenderer(t *testing.T) {
	_, err := run(context.Background(), cliOptions{renderer: "pdf", timezone: "UTC"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: json, vanilla")
}

func TestRun_BadTimezone(t *testing.T) {
	_, err := run(context.Background(), cliOptions{renderer: "json", timezone: "Mars/Olympus"})
	assert.Error(t, err)
}

func TestRun_TUIRejectsUnknownFormat(t *testing.T) {
	_, err := run(context.Background(), cliOptions{renderer: "tui", format: "xml", timezone: "UTC"})
	assert.Error(t, err)
}

func TestMessageList(t *testing.T) {
	var list messageList
	require.NoError(t, list.Set("a"))
	require.NoError(t, list.Set("b"))
	assert.Equal(t, "a, b", list.String())
}

func TestWriteOutput_AppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	writeOutput(&buf, []byte("x"))
	assert.Equal(t, "x\n", buf.String())
}
