package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type licenseStatus struct {
	Activated bool `json:"activated"`
}

func NewLicenseCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Manage the license key",
	}

	activate := &cobra.Command{
		Use:   "activate <key>",
		Short: "Activate taskpad with a license key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			if err := a.gate().Activate(args[0]); err != nil {
				return err
			}
			return a.printLicense(true)
		},
	}

	deactivate := &cobra.Command{
		Use:   "deactivate",
		Short: "Forget the license on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			if err := a.gate().Deactivate(); err != nil {
				return err
			}
			return a.printLicense(false)
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether taskpad is activated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			return a.printLicense(a.gate().Activated())
		},
	}

	cmd.AddCommand(activate, deactivate, status)
	return cmd
}

func (a *app) printLicense(activated bool) error {
	if a.json() {
		return a.printJSON(licenseStatus{Activated: activated})
	}
	state := "not activated"
	if activated {
		state = "activated"
	}
	_, err := fmt.Fprintf(a.out, "License %s\n", state)
	return err
}
