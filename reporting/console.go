package reporting

import (
	"fmt"
	"io"
	"strings"
)

const banner = `   ____                          __         __       
  / __/____ ___  ___ ___  ___   / /  ___ _ / /__ ___ 
 / _/ / __// _ \/_ // -_)/ _ \ / /__/ _ ` + "`" + `//  '_// -_)
/_/  /_/   \___//__/\__//_//_//____/\_,_//_/\_\ \__/ 
`

// Line separates the sections of the console output
var Line = strings.Repeat("═", 55) + "\n"

func PrintBanner(w io.Writer) {
	fmt.Fprint(w, Line+banner+"\n"+Line)
}

// PrintSettings prints one key/value pair per line, keys padded to 15
func PrintSettings(w io.Writer, settings [][2]string) {
	fmt.Fprint(w, "Setting :\n\n")
	for _, kv := range settings {
		fmt.Fprintf(w, "%-15s %s\n", kv[0], kv[1])
	}
	fmt.Fprintln(w)
}

func PrintWinRate(w io.Writer, winRate float64) {
	fmt.Fprintf(w, "\n%sWin rate %.2f%%\n\n%s", Line, winRate, Line)
}
