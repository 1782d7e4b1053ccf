package main

import (
	"github.com/finc/marcfacts/cmd"

	// Register format plugins
	_ "github.com/finc/marcfacts/export/bibtex"
	_ "github.com/finc/marcfacts/export/csl"
	_ "github.com/finc/marcfacts/export/facts"
	_ "github.com/finc/marcfacts/export/iso2709"
	_ "github.com/finc/marcfacts/export/marcxml"
	_ "github.com/finc/marcfacts/export/openurl"
)

func main() {
	cmd.Execute()
}
