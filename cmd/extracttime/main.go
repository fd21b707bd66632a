// ExtractTime - event date and time extraction
//
// ExtractTime reads free-form French or English text, finds the dates and
// times it mentions and writes them out as schedule records.
package main

import (
	"os"

	"github.com/VictorBaumgartner/ExtractTime/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
