package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file.sas> [<file.sas> ...]",
	Short: "Submit program files and write their .log/.lst outputs next to them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// missing inputs are precondition failures, caught before connecting
		for _, path := range args {
			if _, err := os.Stat(path); err != nil {
				return errors.Wrap(err, "program file")
			}
		}

		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer disconnect(cmd, c)

		for _, path := range args {
			logPath, lstPath, err := c.SubmitFile(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: wrote %s and %s\n", path, logPath, lstPath)
		}
		return nil
	},
}
