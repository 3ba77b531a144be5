package storage

import (
	"citricloud/backend/config"
	"context"
	"fmt"
	"io"
	"net"
	"path"
	"strconv"

	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Stage names the step of a transfer that failed
type Stage string

const (
	StageConnect Stage = "connect"
	StageMkdir   Stage = "mkdir"
	StageWrite   Stage = "write"
)

// StageError reports which step of a transfer went wrong
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// session is an open SFTP client plus whatever has to be closed with it
type session struct {
	client *sftp.Client
	closer io.Closer
}

func (s *session) Close() error {
	err := s.client.Close()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}

	return err
}

// SFTP uploads files to a storage box over SSH
type SFTP struct {
	addr string
	cfg  *ssh.ClientConfig

	dial func(ctx context.Context) (*session, error)
}

func NewSFTP(c config.StorageBoxConfig) (*SFTP, error) {
	var hostKey ssh.HostKeyCallback

	if c.KnownHosts != "" {
		cb, err := knownhosts.New(c.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts file, %w", err)
		}
		hostKey = cb
	} else {
		zap.L().Warn("storagebox.known_hosts is not set, the storage box host key will not be verified")
		hostKey = ssh.InsecureIgnoreHostKey()
	}

	s := &SFTP{
		addr: net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		cfg: &ssh.ClientConfig{
			User:            c.User,
			Auth:            []ssh.AuthMethod{ssh.Password(c.Password)},
			HostKeyCallback: hostKey,
			Timeout:         c.Timeout,
		},
	}
	s.dial = s.dialSSH

	return s, nil
}

func (s *SFTP) dialSSH(ctx context.Context) (*session, error) {
	d := net.Dialer{Timeout: s.cfg.Timeout}

	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return nil, err
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, s.addr, s.cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}

	sshClient := ssh.NewClient(c, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, err
	}

	return &session{client: client, closer: sshClient}, nil
}

func (s *SFTP) Put(ctx context.Context, dir, name string, r io.Reader) (string, error) {
	sess, err := s.dial(ctx)
	if err != nil {
		return "", &StageError{Stage: StageConnect, Err: err}
	}
	defer sess.Close()

	return put(sess.client, dir, name, r)
}

func put(client *sftp.Client, dir, name string, r io.Reader) (string, error) {
	// MkdirAll is a no-op for an existing directory, so concurrent uploads
	// can't race each other into a failed mkdir
	if err := client.MkdirAll(dir); err != nil {
		return "", &StageError{Stage: StageMkdir, Err: err}
	}

	remotePath := path.Join(dir, name)

	f, err := client.Create(remotePath)
	if err != nil {
		return "", &StageError{Stage: StageWrite, Err: err}
	}

	if _, err := f.ReadFrom(r); err != nil {
		f.Close()
		return "", &StageError{Stage: StageWrite, Err: err}
	}

	if err := f.Close(); err != nil {
		return "", &StageError{Stage: StageWrite, Err: err}
	}

	return remotePath, nil
}
