package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-analyser/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the spectap configuration file",
	}

	var force bool

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return config.WriteExample(cmd.OutOrStdout(), config.Default())
			}

			if err := config.WriteExampleFile(args[0], force); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", args[0])

			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)

	return cmd
}
