// Command poslv_sim provides the POS LV mode service backed by a
// simulated device. With --standalone it also runs its own master.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/edwinhayes/poslv/poslvsim"
	"github.com/edwinhayes/poslv/ros"
	"github.com/edwinhayes/poslv/ros/rostest"
	"github.com/jessevdk/go-flags"
)

type opts struct {
	Modes      string `short:"m" long:"modes" description:"comma separated accepted modes (overrides ~modes)"`
	Busy       bool   `short:"b" long:"busy" description:"refuse every mode change"`
	Standalone bool   `long:"standalone" description:"start an in-process master and print its URI"`
}

func main() {
	var o opts
	rest, err := flags.NewParser(&o, flags.Default|flags.IgnoreUnknown).ParseArgs(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if o.Standalone {
		master, err := rostest.NewMaster()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer master.Close()
		fmt.Printf("ROS_MASTER_URI=%s\n", master.URI())
		rest = append(rest, "__master:="+master.URI())
	}

	if err := run(rest, o); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, o opts) error {
	node, err := ros.NewNode("poslv", append([]string{"__log_level:=info"}, args...))
	if err != nil {
		return err
	}
	defer node.Shutdown()

	modes, err := poslvsim.ModesFromParam(node)
	if err != nil {
		return err
	}
	if o.Modes != "" {
		modes = strings.Split(o.Modes, ",")
	}

	device := poslvsim.NewDevice(modes, node.Logger())
	device.SetBusy(o.Busy)
	server, err := poslvsim.Serve(node, device)
	if err != nil {
		return err
	}
	defer server.Shutdown()

	node.Logger().Infof("serving mode service, current mode %s", device.Mode())
	node.Spin()
	return nil
}
