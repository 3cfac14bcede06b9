package main

import (
	"os"

	"github.com/dcsim/rack-planner/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rack-planner",
	Short: "rack-planner keeps the inventory of racks, servers and their components.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cli.NewCmdSeed())
	rootCmd.AddCommand(cli.NewCmdExport())
	rootCmd.AddCommand(cli.NewCmdGet())
	rootCmd.AddCommand(cli.NewCmdDelete())
}
