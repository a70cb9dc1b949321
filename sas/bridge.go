package sas

import (
	"io"
	"net"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// bridgeTransport launches the interpreter on a remote host over SSH. It
// stands in for the original vendor bridge connection: same machine name,
// port and credentials, different wire.
type bridgeTransport struct {
	client  *ssh.Client
	session *ssh.Session
	logger  *zap.Logger
}

func newBridgeTransport(def ServerDef, cred Credential, logger *zap.Logger) (*bridgeTransport, error) {
	var auths []ssh.AuthMethod
	if cred.Password != "" {
		auths = append(auths, ssh.Password(cred.Password))
	}
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			auths = append(auths, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	hostKeyCB := ssh.InsecureIgnoreHostKey()
	if def.StrictHostKey {
		cb, err := knownhosts.New(def.KnownHosts)
		if err != nil {
			return nil, errors.Wrap(err, "reading known hosts")
		}
		hostKeyCB = cb
	}

	port := def.Port
	if port == 0 {
		port = DefaultPort
	}
	addr := net.JoinHostPort(def.Host, strconv.Itoa(port))
	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            cred.Username,
		Auth:            auths,
		HostKeyCallback: hostKeyCB,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connecting to "+addr)
	}
	logger.Debug("connected", zap.String("addr", addr), zap.String("user", cred.Username))
	return &bridgeTransport{client: client, logger: logger}, nil
}

func (t *bridgeTransport) start(command string) (io.WriteCloser, io.Reader, io.Reader, error) {
	session, err := t.client.NewSession()
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "opening ssh session")
	}
	t.session = session

	stdin, err := session.StdinPipe()
	var stdout, stderr io.Reader
	if err == nil {
		stdout, err = session.StdoutPipe()
	}
	if err == nil {
		stderr, err = session.StderrPipe()
	}
	if err == nil {
		err = session.Start(command)
	}
	if err != nil {
		session.Close()
		return nil, nil, nil, err
	}
	t.logger.Debug("interpreter started", zap.String("command", command))
	return stdin, stdout, stderr, nil
}

func (t *bridgeTransport) close() error {
	var err error
	if t.session != nil {
		// a nonzero remote exit only reflects errors in the last program
		if werr := t.session.Wait(); werr != nil {
			if _, ok := werr.(*ssh.ExitError); !ok {
				err = errors.Wrap(werr, "waiting for interpreter exit")
			}
		}
		t.session.Close()
	}
	if cerr := t.client.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "closing ssh connection")
	}
	return err
}
