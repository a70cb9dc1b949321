// Package sas opens SAS sessions and exposes the four operations the rest of
// the tool is built on: submit a unit of code, flush the log, flush the
// listing, close. A session runs a stdio-mode SAS interpreter either as a
// local subprocess or on a remote host over SSH.
package sas

import (
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultCommand launches the interpreter in stdio mode: program source is
// read from stdin, the log is written to stderr and the listing to stdout.
const DefaultCommand = "sas -nodms -stdio -nonews -noterminal"

// DefaultPort is used when a remote server is given without a port.
const DefaultPort = 22

// DefaultChunkSize bounds how many bytes a single flush returns.
const DefaultChunkSize = 32 << 10

// ServerDef describes where and how to launch a SAS interpreter.
type ServerDef struct {
	Host     string
	Port     int
	Protocol string // "local" or "ssh"
	Command  string

	// host key verification for remote sessions, ignored for local ones
	KnownHosts    string
	StrictHostKey bool
}

// Credential authenticates a remote session. It is read once while
// connecting and never persisted.
type Credential struct {
	Username string
	Password string
}

// Local returns the definition of an interpreter run as a subprocess.
func Local() ServerDef {
	return ServerDef{Protocol: "local", Command: DefaultCommand}
}

// ParseServer turns a "host[:port]" argument into a server definition.
// The literal "local" (or an empty string) selects a local session.
func ParseServer(server string) (ServerDef, error) {
	if server == "" || strings.EqualFold(server, "local") {
		return Local(), nil
	}
	def := ServerDef{Protocol: "ssh", Port: DefaultPort, Command: DefaultCommand}
	host, port, err := net.SplitHostPort(server)
	if err != nil {
		// no port given
		def.Host = server
		return def, nil
	}
	def.Host = host
	def.Port, err = strconv.Atoi(port)
	if err != nil || def.Port <= 0 {
		return def, errors.Errorf("invalid port in %q", server)
	}
	return def, nil
}

// Option customizes a workspace.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger routes diagnostics to the given logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
