package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-nest/app"
	"github.com/km-arc/go-nest/app/common"
	nest "github.com/km-arc/go-nest/framework/app"
	"github.com/km-arc/go-nest/framework/providers"
)

var envFiles []string

func main() {
	rootCmd := &cobra.Command{
		Use:           "go-nest",
		Short:         "Books demo built on the go-nest framework",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApplication builds and initializes the demo application.
func newApplication(ctx context.Context) (*nest.Application, error) {
	a := nest.Create(app.Module(app.Options{
		Config: providers.ConfigOptions{EnvFiles: envFiles},
	}))
	a.UseGlobalFilters(common.HTTPExceptionFilterClass)
	if err := a.Init(ctx); err != nil {
		return nil, errors.Join(err, a.Close(context.WithoutCancel(ctx)))
	}
	return a, nil
}
