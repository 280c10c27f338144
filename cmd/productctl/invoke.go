package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abgdnv/productcrud/internal/app"
	"github.com/abgdnv/productcrud/internal/config"
	"github.com/abgdnv/productcrud/internal/dispatch"
	"github.com/abgdnv/productcrud/pkg/bootstrap"
	"github.com/abgdnv/productcrud/pkg/config/configloader"
)

func newInvokeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "invoke [event.json]",
		Short: "Run one {action, data} event and print the response",
		Long: "Reads a JSON event from the given file, or from stdin when the file is omitted or '-',\n" +
			"runs it against the configured store and prints the response. The exit code is 1\n" +
			"when the response status is error.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configloader.Load[*config.ToolConfig](serviceName, *configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := bootstrap.NewWriterLogger(cmd.ErrOrStderr(), cfg.Log.Level)

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open event file: %w", err)
				}
				defer f.Close()
				in = f
			}

			deps, err := app.SetupToolDependencies(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := deps.Close(context.Background()); err != nil {
					logger.Warn("Failed to release connections", "error", err)
				}
			}()

			resp := invoke(cmd.Context(), deps.Dispatcher, in)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
			if resp.Status != dispatch.StatusSuccess {
				return errActionFailed
			}
			return nil
		},
	}
}

// invoke decodes one event from r and dispatches it. A malformed event yields an error response.
func invoke(ctx context.Context, d *dispatch.Dispatcher, r io.Reader) dispatch.Response {
	req, err := dispatch.DecodeRequest(r)
	if err != nil {
		return dispatch.Response{Status: dispatch.StatusError, Message: err.Error(), Err: err}
	}
	return d.Dispatch(ctx, req)
}
