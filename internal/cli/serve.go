package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedsignal/internal/api"
	"github.com/matzehuels/pedsignal/pkg/buildinfo"
	"github.com/matzehuels/pedsignal/pkg/errors"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [pedigree]",
		Short: "Serve analyses of a pedigree over HTTP",
		Long: `Load a pedigree and serve lineage, cone and climb queries over HTTP.

The pedigree comes from the argument or from server.pedigree in the config
file. Cone and climb results use the configured cache and can be saved to the
configured report store. The server stops gracefully on interrupt.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.cfg.Server.Pedigree
			if len(args) == 1 {
				path = args[0]
			}
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}
			return c.runServe(cmd.Context(), path, addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, path, addr string, noCache bool) error {
	if path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no pedigree given; pass a file or set server.pedigree")
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close(context.WithoutCancel(ctx))

	p, err := runner.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("load pedigree: %w", err)
	}

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	srv := api.New(runner, p, logger, buildinfo.Version)
	printInfo("Serving %s on %s", StyleHighlight.Render(path), StyleLink.Render(displayURL(addr)))
	if err := srv.ListenAndServe(ctx, addr, c.cfg.Server.ReadTimeout, c.cfg.Server.WriteTimeout); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	prog.done("Server stopped")
	return nil
}

// displayURL turns a listen address like ":8080" into a clickable URL.
func displayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
