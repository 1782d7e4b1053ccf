package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/finc/marcfacts/export/marcxml"
)

const articleXML = `<?xml version="1.0" encoding="UTF-8"?>
<collection xmlns="http://www.loc.gov/MARC21/slim">
  <record>
    <leader>00000naa a2200000 c 4500</leader>
    <controlfield tag="001">1000000001</controlfield>
    <controlfield tag="003">DE-627</controlfield>
    <datafield tag="245" ind1="1" ind2="0">
      <subfield code="a">Ein Aufsatz</subfield>
    </datafield>
    <datafield tag="773" ind1="0" ind2="8">
      <subfield code="g">Bd. 12 (2019), S. 1-9</subfield>
      <subfield code="w">(DE-627)2000000002</subfield>
    </datafield>
  </record>
</collection>
`

func TestOpenURLResolvesContainers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"response": {"docs": [
			{"id": "2000000002", "title": ["Journal of Testing"], "format": ["Journal"]}
		]}}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	input := filepath.Join(dir, "articles.xml")
	if err := os.WriteFile(input, []byte(articleXML), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"openurl", "--config-dir", dir, "--solr-url", srv.URL, "--workers", "2", input})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("openurl: %v", err)
	}

	got := out.String()
	for _, want := range []string{"rft.jtitle=Journal+of+Testing", "rft.atitle=Ein+Aufsatz", "rft.volume=12", "rft.pages=1-9"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %s:\n%s", want, got)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("solr called %d times, want 1", n)
	}
}
