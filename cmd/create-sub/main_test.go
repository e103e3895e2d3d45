package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func reader(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func TestPromptModel_DefaultsOnEmpty(t *testing.T) {
	var out bytes.Buffer
	model, err := promptModel(reader(""), &out)
	require.NoError(t, err)
	require.Equal(t, "presence", model)
}

func TestPromptModel_RejectsUnknownThenAccepts(t *testing.T) {
	var out bytes.Buffer
	model, err := promptModel(reader("bogus", "CALL"), &out)
	require.NoError(t, err)
	require.Equal(t, "call", model)
	require.Contains(t, out.String(), "Invalid model")
}

func TestPromptDomain_RejectsMalformedThenAccepts(t *testing.T) {
	var out bytes.Buffer
	domain, err := promptDomain(reader("example.com", "123.com", "1234567890.com"), &out)
	require.NoError(t, err)
	require.Equal(t, "1234567890.com", domain)
	require.Contains(t, out.String(), "Invalid domain format")
}

func TestConfirmInput(t *testing.T) {
	req := &createRequest{Domain: "1234567890.com", Model: "presence", PostURL: "https://cb"}

	var out bytes.Buffer
	require.True(t, confirmInput(reader("y"), &out, req))
	require.Contains(t, out.String(), "1234567890.com")

	out.Reset()
	require.False(t, confirmInput(reader("n"), &out, req))
}
