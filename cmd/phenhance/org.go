package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Look up and record the organization",
	Long: `Fetch the organization for the configured auth key and record it as an
organization event and profile attribute.

Requires organization.base_url and organization.auth_key (or
PHENHANCE_AUTH_KEY).`,
	Args: cobra.NoArgs,
	RunE: runOrg,
}

func init() {
	rootCmd.AddCommand(orgCmd)
}

func runOrg(cmd *cobra.Command, args []string) error {
	if cfg.Organization.AuthKey == "" {
		return errors.New("no organization auth key configured")
	}

	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	if !sess.coordinator.TrackOrganization(cmd.Context(), cfg.Organization.AuthKey) {
		return fmt.Errorf("organization lookup against %s failed", cfg.Organization.BaseURL)
	}
	return nil
}
