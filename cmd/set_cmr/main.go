// Command set_cmr switches the POS LV to CMR corrections. It waits for
// the mode service without a time limit and always exits with status 0;
// the outcome is only reported on stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/edwinhayes/poslv/dgps"
	"github.com/edwinhayes/poslv/ros"
	"github.com/sirupsen/logrus"
)

func main() {
	node, err := ros.NewNode("set_cmr", os.Args[1:])
	if err != nil {
		fmt.Printf("SetDGPS request failed: %v\n", err)
		return
	}
	defer node.Shutdown()

	run(context.Background(), dgps.NewROSBus(node), node.Logger(), os.Stdout)
}

func run(ctx context.Context, bus dgps.Bus, logger *logrus.Entry, w io.Writer) {
	setter := dgps.NewSetter(bus, dgps.WithLogger(logger))
	res := setter.SetMode(ctx, dgps.ModeCMR)
	if err := dgps.Report(w, res); err != nil {
		logger.WithError(err).Error("writing result")
	}
}
