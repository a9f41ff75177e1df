package station

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/task"
	"github.com/timeclock-hq/timeclock-backend-go/internal/protocol"
	"github.com/timeclock-hq/timeclock-backend-go/internal/wire"
)

var (
	// ErrBusy is returned when a request arrives while another exchange
	// is still in flight.
	ErrBusy = errors.New("station: another request is in progress")

	// ErrClosed is returned for requests submitted after Close.
	ErrClosed = errors.New("station: client closed")

	// ErrServerUntrusted means the peer failed to prove knowledge of the
	// pairing secret.
	ErrServerUntrusted = errors.New("station: server failed challenge")

	// ErrAuthRejected means the central station refused the device or
	// the operator credentials.
	ErrAuthRejected = errors.New("station: authentication rejected")
)

// Credentials identify the operator for the login phase of the handshake.
type Credentials struct {
	Login    string
	Password string
}

// ClientConfig carries the connection parameters for the central station.
type ClientConfig struct {
	Addr        string
	Secret      string
	DialTimeout time.Duration
}

type job struct {
	ctx    context.Context
	run    func(ctx context.Context) error
	result chan error
}

// Client talks to the central station. A single communication goroutine
// owns the connection; callers hand it work one exchange at a time and a
// second caller gets ErrBusy instead of queueing behind the first.
type Client struct {
	cfg    ClientConfig
	store  *Store
	logger *slog.Logger

	jobs   chan job
	closed chan struct{}
	busy   atomic.Bool

	// owned by the communication goroutine
	conn     net.Conn
	reader   *bufio.Reader
	writer   *bufio.Writer
	authedAs string
}

func NewClient(cfg ClientConfig, store *Store, logger *slog.Logger) *Client {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	c := &Client{
		cfg:    cfg,
		store:  store,
		logger: logger,
		jobs:   make(chan job),
		closed: make(chan struct{}),
	}
	go c.communicate()
	return c
}

// Close stops the communication goroutine and drops the connection. The
// in-flight exchange, if any, is allowed to finish.
func (c *Client) Close() {
	close(c.closed)
}

// RetrieveTasks fetches the operator's active tasks and replaces the
// local snapshot with them.
func (c *Client) RetrieveTasks(ctx context.Context, creds Credentials) ([]task.AssignedTask, error) {
	var tasks []task.AssignedTask
	err := c.submit(ctx, func(ctx context.Context) error {
		if err := c.ensureSession(ctx, creds); err != nil {
			return err
		}
		retrieved, err := c.retrieveTasks(ctx)
		if err != nil {
			return err
		}
		if err := c.store.ReplaceTasks(ctx, retrieved); err != nil {
			return err
		}
		tasks = retrieved
		return nil
	})
	return tasks, err
}

// UploadLogs sends every locally recorded entry the central station has
// not seen from this device yet.
func (c *Client) UploadLogs(ctx context.Context, creds Credentials) error {
	return c.submit(ctx, func(ctx context.Context) error {
		if err := c.ensureSession(ctx, creds); err != nil {
			return err
		}
		return c.uploadLogs(ctx)
	})
}

// Authenticate verifies the credentials against the central station
// without issuing a command.
func (c *Client) Authenticate(ctx context.Context, creds Credentials) error {
	return c.submit(ctx, func(ctx context.Context) error {
		return c.ensureSession(ctx, creds)
	})
}

func (c *Client) submit(ctx context.Context, run func(ctx context.Context) error) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	// The flag, not channel readiness, decides busy. An idle client must
	// accept even if the communication goroutine is not parked at its
	// select yet.
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	j := job{ctx: ctx, run: run, result: make(chan error, 1)}
	select {
	case c.jobs <- j:
	case <-c.closed:
		c.busy.Store(false)
		return ErrClosed
	}
	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) communicate() {
	for {
		select {
		case <-c.closed:
			c.dropConn()
			return
		case j := <-c.jobs:
			err := j.run(j.ctx)
			if err != nil {
				// A failed exchange leaves the stream in an unknown
				// state. Reconnect on the next request.
				c.dropConn()
			}
			j.result <- err
			c.busy.Store(false)
		}
	}
}

// ensureSession makes sure the connection is up and authenticated for
// the given operator, dialing and redoing the handshake when it is not.
func (c *Client) ensureSession(ctx context.Context, creds Credentials) error {
	if c.conn != nil && c.authedAs == creds.Login {
		return nil
	}
	c.dropConn()

	dialer := net.Dialer{Timeout: c.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.Addr, err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.writer = bufio.NewWriter(conn)

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}

	if err := c.handshake(ctx, creds); err != nil {
		c.dropConn()
		return err
	}
	c.authedAs = creds.Login
	c.logger.Info("session established",
		slog.String("server", c.cfg.Addr),
		slog.String("login", creds.Login),
	)
	return nil
}

// handshake runs the station side of the three-phase exchange: verify the
// server against the pairing secret, prove the device, then prove the
// operator.
func (c *Client) handshake(ctx context.Context, creds Credentials) error {
	challenge, err := protocol.NewChallenge()
	if err != nil {
		return err
	}
	if err := c.writeLine("SERVER CHALLENGE " + challenge); err != nil {
		return err
	}
	digest, err := c.expectSuffix("SERVER RESPONSE ")
	if err != nil {
		return err
	}
	serverOK := protocol.Verify(c.cfg.Secret, challenge, digest)
	if err := c.writeAck("SERVER RESPONSE ", serverOK); err != nil {
		return err
	}
	if !serverOK {
		return ErrServerUntrusted
	}

	clientChallenge, err := c.expectSuffix("CLIENT CHALLENGE ")
	if err != nil {
		return err
	}
	if err := c.writeLine("CLIENT RESPONSE " + protocol.Response(c.cfg.Secret, clientChallenge)); err != nil {
		return err
	}
	accepted, err := c.expectAck("CLIENT RESPONSE ")
	if err != nil {
		return err
	}
	if !accepted {
		return ErrAuthRejected
	}

	deviceUUID, err := c.store.DeviceUUID(ctx)
	if err != nil {
		return err
	}
	if err := c.writeLine("CLIENT UUID " + deviceUUID); err != nil {
		return err
	}

	if err := c.writeLine("LOGIN " + creds.Login); err != nil {
		return err
	}
	loginChallenge, err := c.expectSuffix("LOGIN CHALLENGE ")
	if err != nil {
		// An unknown or deactivated operator is dropped without a
		// challenge.
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			return ErrAuthRejected
		}
		return err
	}
	if err := c.writeLine("LOGIN RESPONSE " + protocol.Response(creds.Password, loginChallenge)); err != nil {
		return err
	}
	accepted, err = c.expectAck("LOGIN RESPONSE ")
	if err != nil {
		return err
	}
	if !accepted {
		return ErrAuthRejected
	}
	return nil
}

// retrieveTasks reads task blocks until END TASKS. Each block is a header
// line followed by description lines and a blank separator.
func (c *Client) retrieveTasks(ctx context.Context) ([]task.AssignedTask, error) {
	if err := c.writeLine("RETRIEVE TASKS"); err != nil {
		return nil, err
	}
	var tasks []task.AssignedTask
	for {
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(line, "END TASKS") {
			return tasks, nil
		}
		header, ok := wire.ParseTaskHeader(line)
		if !ok {
			return nil, fmt.Errorf("malformed task header: %q", line)
		}

		var descLines []string
		for {
			line, err := c.readLine()
			if err != nil {
				return nil, err
			}
			if line == "" {
				break
			}
			descLines = append(descLines, line)
		}
		tasks = append(tasks, task.AssignedTask{
			Task: task.Task{
				ID:          header.ID,
				Title:       header.Title,
				Description: strings.Join(descLines, "\n"),
			},
			SecondsSpent: header.SecondsSpent,
		})
	}
}

// uploadLogs sends every local entry newer than the server's watermark
// for this device.
func (c *Client) uploadLogs(ctx context.Context) error {
	if err := c.writeLine("LOG UPLOAD"); err != nil {
		return err
	}
	line, err := c.readLine()
	if err != nil {
		return err
	}

	var since *time.Time
	switch {
	case strings.EqualFold(line, "NO ENTRYS"):
	default:
		stamp, ok := wire.CutPrefixFold(line, "LAST ENTRY AT ")
		if !ok {
			return fmt.Errorf("malformed watermark line: %q", line)
		}
		last, err := wire.ParseTimestamp(stamp)
		if err != nil {
			return fmt.Errorf("malformed watermark timestamp: %w", err)
		}
		since = &last
	}

	entries, err := c.store.EntriesAfter(ctx, since)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		line, err := wire.FormatEntry(entry)
		if err != nil {
			return err
		}
		if err := c.writeLine(line); err != nil {
			return err
		}
	}
	if err := c.writeLine("END LOG"); err != nil {
		return err
	}
	c.logger.Info("log upload sent", slog.Int("entries", len(entries)))
	return nil
}

func (c *Client) dropConn() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = nil
	c.reader = nil
	c.writer = nil
	c.authedAs = ""
}

func (c *Client) readLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Client) writeLine(line string) error {
	if _, err := c.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return c.writer.Flush()
}

func (c *Client) writeAck(prefix string, ok bool) error {
	if ok {
		return c.writeLine(prefix + "OK")
	}
	return c.writeLine(prefix + "NOK")
}

func (c *Client) expectSuffix(prefix string) (string, error) {
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	rest, ok := wire.CutPrefixFold(line, prefix)
	if !ok {
		return "", fmt.Errorf("expected %s, got %q", strings.TrimSpace(prefix), line)
	}
	return rest, nil
}

func (c *Client) expectAck(prefix string) (bool, error) {
	line, err := c.readLine()
	if err != nil {
		return false, err
	}
	switch {
	case strings.EqualFold(line, prefix+"OK"):
		return true, nil
	case strings.EqualFold(line, prefix+"NOK"):
		return false, nil
	default:
		return false, fmt.Errorf("expected %s ack, got %q", strings.TrimSpace(prefix), line)
	}
}
