package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "Matematika (M)", expected: "Matematika (M)"},
		{input: "  Teorie:\n\t", expected: "Teorie:"},
		{input: "5?\n    N?", expected: "5? N?"},
		{input: "1. pololetí", expected: "1. pololetí"},
		{input: "", expected: ""},
	}

	for _, row := range table {
		require.Equal(t, row.expected, Normalize(row.input))
	}
}

func TestText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div id="a"> Hello <b>big</b>
		world </div><div id="b">x</div>`,
	))
	require.NoError(t, err)

	require.Equal(t, "Hello big world", Text(doc.Find("#a")))
	require.Equal(t, "Hello world", OwnText(doc.Find("#a")))
	require.Equal(t, "Hello big world x", Text(doc.Find("div")))
	require.Equal(t, "", OwnText(doc.Find("#missing")))
	require.Equal(t, " Hello big\n\t\tworld ", GetText(doc.Find("#a").Nodes[0]))
}
