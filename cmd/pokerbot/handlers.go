package main

import (
	"fmt"
	"io"

	"github.com/keepmind9/pokerbot/internal/core"
	"github.com/keepmind9/pokerbot/internal/handlers"
	"github.com/spf13/cobra"
)

var handlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "List the commands pokerbot answers to",
	Long:  "Print every registered command in matching order with its trigger and help line",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHandlers(cmd.OutOrStdout())
	},
}

func listHandlers(out io.Writer) error {
	_, router, err := buildRouter(&core.Config{}, handlers.Deps{})
	if err != nil {
		return err
	}
	for i, h := range router.Registry().Handlers() {
		fmt.Fprintf(out, "%d. %-8s %s\n   %s\n", i+1, h.Name(), h.Trigger(), h.Description())
	}
	return nil
}
