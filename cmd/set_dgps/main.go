// Command set_dgps switches the POS LV to the correction mode given as
// argument.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/edwinhayes/poslv/dgps"
	"github.com/edwinhayes/poslv/ros"
	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

type opts struct {
	Timeout    time.Duration `short:"t" long:"timeout" description:"give up waiting for the service after this long (0 waits forever)"`
	Service    string        `short:"s" long:"service" default:"/poslv/set_dgps" description:"mode service name"`
	ExitStatus bool          `long:"exit-status" description:"exit with status 1 when the mode was not set"`

	Args struct {
		Mode string `positional-arg-name:"mode" description:"correction mode, e.g. cmr"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	node, err := ros.NewNode("set_dgps", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	code := run(node.Logger(), dgps.NewROSBus(node), node.NonRosArgs(), os.Stdout)
	node.Shutdown()
	os.Exit(code)
}

// run parses the options left over by the node and performs one mode
// change. It returns the process exit status.
func run(logger *logrus.Entry, bus dgps.Bus, args []string, w io.Writer) int {
	var o opts
	parser := flags.NewParser(&o, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 2
	}

	ctx := context.Background()
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	setter := dgps.NewSetter(bus, dgps.WithService(o.Service), dgps.WithLogger(logger))
	res := setter.SetMode(ctx, o.Args.Mode)
	if err := dgps.Report(w, res); err != nil {
		logger.WithError(err).Error("writing result")
	}
	if o.ExitStatus && !res.OK() {
		return 1
	}
	return 0
}
