// PaletteVision - dominant colour extraction
//
// PaletteVision finds the dominant colours of images with k-means or mean
// shift clustering, on the command line or as an HTTP service.
package main

import (
	"os"

	"github.com/jmylchreest/palettevision/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
