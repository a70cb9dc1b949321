// Package cmd wires the command line surface: an interactive session by
// default, a batch mode under "run".
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/chrisjb82/powerSAS/client"
	"github.com/chrisjb82/powerSAS/repl"
	"github.com/chrisjb82/powerSAS/sas"
)

// Version is set via -ldflags at build time if desired
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "powersas",
	Short: "Submit SAS programs to a local or remote SAS session",
	Long: "powersas opens a SAS session, either as a local subprocess or on a remote\n" +
		"server over SSH, and submits program code to it. Run without arguments it\n" +
		"drops into an interactive loop; 'run' submits program files and writes\n" +
		"their .log and .lst outputs next to them.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := connect(cmd)
		if err != nil {
			return err
		}
		defer disconnect(cmd, c)
		repl.Run(terminal{cmd.InOrStdin(), cmd.OutOrStdout()}, c)
		return nil
	},
}

// terminal glues the command's in and out streams into the io.ReadWriter the
// loop wants.
type terminal struct {
	io.Reader
	io.Writer
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("server", "local", "SAS server as host[:port], or 'local' for a subprocess session")
	pf.Bool("local", false, "run the interpreter locally, overriding --server")
	pf.String("user", "", "username for remote sessions (prompted when omitted)")
	pf.String("password", "", "password for remote sessions (prompted when omitted)")
	pf.String("command", "", "interpreter launch command (default \""+sas.DefaultCommand+"\")")
	pf.String("known-hosts", defaultKnownHosts(), "path to a known_hosts file")
	pf.Bool("strict-host-key", false, "verify the server host key against known-hosts")
	pf.Int("chunk-size", sas.DefaultChunkSize, "maximum bytes drained per flush")
	pf.BoolP("verbose", "v", false, "enable debug logging")
	cobra.CheckErr(viper.BindPFlags(pf))

	rootCmd.AddCommand(runCmd, versionCmd)
}

func initConfig() {
	viper.SetConfigName(".powersas")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("powersas")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	// a missing config file is fine
	_ = viper.ReadInConfig()
}

// connect builds a client from flags/env/config and opens the session,
// prompting for whatever part of the credential is missing.
func connect(cmd *cobra.Command) (*client.Client, error) {
	def, err := serverDef()
	if err != nil {
		return nil, err
	}
	cred := sas.Credential{
		Username: viper.GetString("user"),
		Password: viper.GetString("password"),
	}
	if def.Protocol != "local" {
		if err := promptCredential(cmd, &cred); err != nil {
			return nil, err
		}
	}
	c := client.New(client.Open(sas.WithLogger(newLogger())), viper.GetInt("chunk-size"))
	return c, c.Connect(def, cred)
}

func disconnect(cmd *cobra.Command, c *client.Client) {
	if err := c.Disconnect(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
	}
}

func serverDef() (sas.ServerDef, error) {
	server := viper.GetString("server")
	if viper.GetBool("local") {
		server = "local"
	}
	def, err := sas.ParseServer(server)
	if err != nil {
		return def, err
	}
	if command := viper.GetString("command"); command != "" {
		def.Command = command
	}
	def.KnownHosts = viper.GetString("known-hosts")
	def.StrictHostKey = viper.GetBool("strict-host-key")
	return def, nil
}

func defaultKnownHosts() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.ssh/known_hosts"
}

func newLogger() *zap.Logger {
	if !viper.GetBool("verbose") {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
