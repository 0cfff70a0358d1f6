package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event <name> [key=value ...]",
	Short: "Send a single custom event",
	Long: `Send one event with optional properties.

Values that parse as integers, floats or booleans are sent typed:

  phenhance event upgrade plan=pro seats=4 trial=false`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEvent,
}

func init() {
	rootCmd.AddCommand(eventCmd)
}

func runEvent(cmd *cobra.Command, args []string) error {
	props, err := parseProperties(args[1:])
	if err != nil {
		return err
	}

	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	if !sess.coordinator.TrackEvent(args[0], props) {
		return errors.New("event was not sent")
	}
	return nil
}
