package renderer

import "fmt"

// Verbose enables progress logging from the renderers
var Verbose = false

func logf(format string, args ...interface{}) {
	if Verbose {
		fmt.Printf(format+"\n", args...)
	}
}
