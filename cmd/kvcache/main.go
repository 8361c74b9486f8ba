// Command kvcache inspects and edits a persistent namespaced cache from the
// shell, or serves it over HTTP.
package main

import (
	"os"
)

func main() {
	a := newApp()
	err := a.rootCmd().Execute()
	if cerr := a.close(); cerr != nil {
		a.logger.Error("could not close cache", "err", cerr)
		if err == nil {
			err = cerr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}
