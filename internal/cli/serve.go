package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridlayout/pkg/config"
	"github.com/matzehuels/gridlayout/pkg/server"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, token string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve the configured store over HTTP. Layouts are read and written as
whole JSON documents; views and SVG renders are computed per request.

Routes:
  GET    /healthz
  GET    /layouts
  GET    /layouts/{id}
  PUT    /layouts/{id}
  DELETE /layouts/{id}
  GET    /layouts/{id}/view?breakpoint=mobile
  GET    /layouts/{id}/svg?breakpoint=tablet&grid=1

When a token is set, PUT and DELETE require "Authorization: Bearer <token>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("token") {
				token = c.cfg.Server.Token
			}

			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			bc, err := c.openCache(ctx)
			if err != nil {
				return err
			}
			defer bc.Close()

			srv := server.New(store,
				server.WithLogger(c.Logger),
				server.WithToken(token),
				server.WithRenderer(c.newRenderer(bc)))

			out := cmd.ErrOrStderr()
			printSuccess(out, "Serving %s store on %s", c.cfg.Storage.Backend, StyleLink.Render("http://"+addr))
			if token == "" {
				printDetail(out, "writes are not authenticated")
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+config.DefaultServerAddr+")")
	cmd.Flags().StringVar(&token, "token", "", "bearer token required on writes")
	return cmd
}
