// Command productctl runs single product actions and schema migrations against
// the store configured for the product service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abgdnv/productcrud/pkg/config/configloader"
)

const serviceName = "product"

// errActionFailed is returned when the dispatched action answered with an error status.
// The response has already been printed.
var errActionFailed = errors.New("action failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errActionFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "productctl",
		Short:         "Operate on the product store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", configloader.DefaultConfigFile, "path to the YAML configuration file")
	root.AddCommand(newInvokeCmd(&configFile), newMigrateCmd(&configFile))
	return root
}
