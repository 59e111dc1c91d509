// Command lom applies the linear optical model of the telescope to stored
// rigid body motions and reports the resulting optical metrics.
package main

import (
	"os"

	"github.com/banshee-data/optics.report/internal/monitoring"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		monitoring.Logger().WithError(err).Fatal("command failed")
	}
}
