package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chrisjb82/powerSAS/sas"
)

// promptCredential asks interactively for whichever part of the credential
// was not supplied. The password never echoes when stdin is a terminal. The
// filled credential is used once by the connect and then goes out of scope.
func promptCredential(cmd *cobra.Command, cred *sas.Credential) error {
	reader := bufio.NewReader(cmd.InOrStdin())

	if cred.Username == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return errors.Wrap(err, "reading username")
		}
		cred.Username = strings.TrimSpace(line)
	}

	if cred.Password == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return errors.Wrap(err, "reading password")
			}
			cred.Password = string(b)
		} else {
			line, err := reader.ReadString('\n')
			if err != nil {
				return errors.Wrap(err, "reading password")
			}
			cred.Password = strings.TrimRight(line, "\r\n")
		}
	}
	return nil
}
