package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Shut down the running watcher",
	RunE:  runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	client, err := tryDial(cmd.Context())
	if err != nil {
		fmt.Println("Not running")
		return nil
	}
	defer client.Close()

	if err := client.Shutdown(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Shutdown requested")
	return nil
}
