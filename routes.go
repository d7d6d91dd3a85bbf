package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-nest/framework/routing"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the mounted routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApplication(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		routes, err := a.Routes()
		if err != nil {
			return err
		}
		printRoutes(cmd.OutOrStdout(), routes)
		return nil
	},
}

var methodColors = map[string]*color.Color{
	http.MethodGet:    color.New(color.FgGreen),
	http.MethodPost:   color.New(color.FgYellow),
	http.MethodPut:    color.New(color.FgBlue),
	http.MethodPatch:  color.New(color.FgCyan),
	http.MethodDelete: color.New(color.FgRed),
}

func printRoutes(w io.Writer, routes []routing.RouteInfo) {
	width := 0
	for _, r := range routes {
		width = max(width, len(r.Path))
	}
	for _, r := range routes {
		method := fmt.Sprintf("%-7s", r.Method)
		if c, ok := methodColors[r.Method]; ok {
			method = c.Sprint(method)
		}
		fmt.Fprintf(w, "%s %-*s  %s\n", method, width, r.Path, r.Handler)
	}
	fmt.Fprintf(w, "\n%d route(s)\n", len(routes))
}
