// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML(t *testing.T) {
	out, err := HTML("## سناریو\n\n- **RO**\n- MVR\n")
	require.NoError(t, err)

	assert.Contains(t, out, "<h2>سناریو</h2>")
	assert.Contains(t, out, "<strong>RO</strong>")
	assert.Contains(t, out, "<li>MVR</li>")
}

func TestHTMLTable(t *testing.T) {
	src := "| پارامتر | مقدار |\n|---|---|\n| TDS | 35000 |\n"
	out, err := HTML(src)
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>35000</td>")
}

func TestPage(t *testing.T) {
	out, err := Page("گزارش <ZLD>", "12:00:00", "متن **مهم**")
	require.NoError(t, err)

	assert.Contains(t, out, `dir="rtl"`)
	assert.Contains(t, out, "<title>گزارش &lt;ZLD&gt;</title>")
	assert.Contains(t, out, "<p>12:00:00</p>")
	assert.Contains(t, out, "<strong>مهم</strong>")
}

func TestPageWithoutSubtitle(t *testing.T) {
	out, err := Page("t", "", "body")
	require.NoError(t, err)
	assert.NotContains(t, out, "<p></p>")
}

func TestLinks(t *testing.T) {
	src := "See [paper](https://example.com/a) and <https://example.com/b>.\n\n" +
		"Again [dup](https://example.com/a), a [local](./notes.md) link."

	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, Links(src))
}

func TestLinksNone(t *testing.T) {
	assert.Empty(t, Links("plain text only"))
}
