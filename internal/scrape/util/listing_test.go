package util

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

var testLayout = Layout{
	Markers: []string{"#results"},
	Items:   []string{".job", ".card"},
	Title:   []string{"a.title", "h2"},
	Company: []string{".company"},
}

func TestExtractListing_Items(t *testing.T) {
	d := doc(t, `<div id="results">
	  <div class="job"><a class="title" href="/vaga/1?utm_source=x">  Dev&nbsp;Go </a><span class="company">ACME</span></div>
	  <a href="/vaga/2"><div class="job"><h2>Analista</h2></div></a>
	  <div class="job"><a class="title" href="/vaga/3">Ver vaga</a><h2>QA</h2><span class="company">Beta</span></div>
	</div>`)

	got, ok := ExtractListing(d, "site", "https://example.com/busca", testLayout)
	require.True(t, ok)
	require.Len(t, got, 3)

	assert.Equal(t, "Dev Go", got[0].Title)
	assert.Equal(t, "ACME", got[0].Company)
	assert.Equal(t, "https://example.com/vaga/1", got[0].Link)
	assert.Equal(t, "site", got[0].Source)

	assert.Equal(t, "Analista", got[1].Title)
	assert.Empty(t, got[1].Company)
	assert.Equal(t, "https://example.com/vaga/2", got[1].Link)

	assert.Equal(t, "QA", got[2].Title, "junk anchor text skipped")
}

func TestExtractListing_MarkerOnlyAndUnknown(t *testing.T) {
	got, ok := ExtractListing(doc(t, `<div id="results"></div>`), "site", "https://example.com", testLayout)
	assert.True(t, ok)
	assert.Empty(t, got)

	_, ok = ExtractListing(doc(t, `<p>captcha</p>`), "site", "https://example.com", testLayout)
	assert.False(t, ok)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "analista-de-dados", Slug("  Analista  de Dados "))
	assert.Equal(t, "c%23", Slug("C#"))
}

func TestCanonicalURL(t *testing.T) {
	assert.Equal(t, "https://br.indeed.com/viewjob?jk=abc",
		CanonicalURL("HTTPS://BR.Indeed.com/viewjob?jk=abc&tk=zzz&from=serp#x"))
	assert.Equal(t, "https://example.com/a?b=1&c=2",
		CanonicalURL("https://example.com/a?c=2&utm_medium=x&b=1"))
	assert.Empty(t, ResolveLink("https://example.com", "javascript:void(0)"))
}
