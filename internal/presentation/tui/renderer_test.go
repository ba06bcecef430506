package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(60)
	out, err := render("A **fever** of 3 days.")
	require.NoError(t, err)
	assert.Contains(t, out, "fever")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.True(t, strings.Contains(buf.String(), "v1.2.3"))
}
