package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/google/uuid"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/employee"
	"github.com/timeclock-hq/timeclock-backend-go/internal/protocol"
	"github.com/timeclock-hq/timeclock-backend-go/internal/wire"
)

// protocolError is fatal to the connection: an unparsable line, a wrong
// command, or a rejected challenge. Never signalled back to the peer
// beyond a NOK.
type protocolError struct {
	msg  string
	line string
}

func (e *protocolError) Error() string {
	return fmt.Sprintf("protocol error: %s: %q", e.msg, e.line)
}

// session serves one authenticated worker-station connection: handshake
// first, then the command loop until EOF, a protocol error, or shutdown.
type session struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	deps   *Deps
	logger *slog.Logger

	// bound by a successful handshake
	login    string
	deviceID int64
}

func newSession(conn net.Conn, deps *Deps, logger *slog.Logger) *session {
	return &session{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
		deps:   deps,
		logger: logger,
	}
}

func (s *session) run(ctx context.Context) {
	ok, err := s.handshake(ctx)
	if err != nil {
		s.logger.Info("handshake failed", slog.String("error", err.Error()))
		return
	}
	if !ok {
		s.logger.Info("handshake rejected")
		return
	}

	s.logger.Info("session established",
		slog.String("employee", s.login),
		slog.Int64("device_id", s.deviceID),
	)

	for {
		line, err := s.readLine()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.logger.Info("session read failed", slog.String("error", err.Error()))
			}
			return
		}
		if err := s.handleCommand(ctx, line); err != nil {
			s.logger.Info("session aborted", slog.String("error", err.Error()))
			return
		}
	}
}

// handshake runs the three-phase mutual challenge-response exchange.
// A false return is a silent rejection (bad digest, unknown or inactive
// employee); an error is a transport or protocol failure. Either way the
// caller closes the connection and no partial state is kept.
func (s *session) handshake(ctx context.Context) (bool, error) {
	// Phase 1: prove our identity against the worker's challenge.
	serverChallenge, err := s.expectSuffix("SERVER CHALLENGE ")
	if err != nil {
		return false, err
	}
	if err := s.writeLine("SERVER RESPONSE " + protocol.Response(s.deps.Secret, serverChallenge)); err != nil {
		return false, err
	}
	accepted, err := s.expectAck("SERVER RESPONSE ")
	if err != nil {
		return false, err
	}
	if !accepted {
		return false, nil
	}

	// Phase 2: challenge the device.
	clientChallenge, err := protocol.NewChallenge()
	if err != nil {
		return false, err
	}
	if err := s.writeLine("CLIENT CHALLENGE " + clientChallenge); err != nil {
		return false, err
	}
	clientResponse, err := s.expectSuffix("CLIENT RESPONSE ")
	if err != nil {
		return false, err
	}
	clientOK := protocol.Verify(s.deps.Secret, clientChallenge, clientResponse)
	if err := s.writeAck("CLIENT RESPONSE ", clientOK); err != nil {
		return false, err
	}
	if !clientOK {
		return false, nil
	}

	deviceUUID, err := s.expectSuffix("CLIENT UUID ")
	if err != nil {
		return false, err
	}
	if _, err := uuid.Parse(deviceUUID); err != nil {
		return false, &protocolError{msg: "invalid client uuid", line: deviceUUID}
	}
	deviceID, err := s.deps.Worklogs.FindOrCreateDevice(ctx, deviceUUID)
	if err != nil {
		return false, err
	}

	// Phase 3: challenge the operator.
	login, err := s.expectSuffix("LOGIN ")
	if err != nil {
		return false, err
	}
	emp, err := s.deps.Employees.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			s.logger.Info("unknown employee", slog.String("login", login))
			return false, nil
		}
		return false, err
	}
	if !emp.Active {
		s.logger.Info("inactive employee", slog.String("login", login))
		return false, nil
	}

	loginChallenge, err := protocol.NewChallenge()
	if err != nil {
		return false, err
	}
	if err := s.writeLine("LOGIN CHALLENGE " + loginChallenge); err != nil {
		return false, err
	}
	loginResponse, err := s.expectSuffix("LOGIN RESPONSE ")
	if err != nil {
		return false, err
	}
	loginOK := protocol.Verify(emp.Password, loginChallenge, loginResponse)
	if err := s.writeAck("LOGIN RESPONSE ", loginOK); err != nil {
		return false, err
	}
	if !loginOK {
		return false, nil
	}

	s.login = login
	s.deviceID = deviceID
	return true, nil
}

func (s *session) handleCommand(ctx context.Context, line string) error {
	switch {
	case strings.EqualFold(line, "RETRIEVE TASKS"):
		return s.retrieveTasks(ctx)
	case strings.EqualFold(line, "LOG UPLOAD"):
		return s.logUpload(ctx)
	default:
		return &protocolError{msg: "unknown command", line: line}
	}
}

// retrieveTasks streams every active, unfinished, actively-assigned task:
// a header line, the description lines, a blank separator, and END TASKS
// after the last block.
func (s *session) retrieveTasks(ctx context.Context) error {
	tasks, err := s.deps.Tasks.ActiveTasksForEmployee(ctx, s.login)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		header := wire.FormatTaskHeader(wire.TaskHeader{
			ID:           t.ID,
			Title:        t.Title,
			SecondsSpent: t.SecondsSpent,
		})
		if err := s.writeLine(header); err != nil {
			return err
		}
		for _, descLine := range strings.Split(t.Description, "\n") {
			if err := s.writeLine(descLine); err != nil {
				return err
			}
		}
		if err := s.writeLine(""); err != nil {
			return err
		}
	}
	return s.writeLine("END TASKS")
}

// logUpload tells the device the last entry timestamp it is known for,
// then accepts entries until END LOG and hands the employee's backlog to
// the reconciliation engine.
func (s *session) logUpload(ctx context.Context) error {
	last, err := s.deps.Worklogs.LastEntryTimestampForDevice(ctx, s.deviceID)
	if err != nil {
		return err
	}
	if last != nil {
		err = s.writeLine("LAST ENTRY AT " + wire.FormatTimestamp(*last))
	} else {
		err = s.writeLine("NO ENTRYS")
	}
	if err != nil {
		return err
	}

	count := 0
	for {
		line, err := s.readLine()
		if err != nil {
			return err
		}
		if strings.EqualFold(line, "END LOG") {
			break
		}
		entry, err := wire.ParseEntry(line)
		if err != nil {
			return &protocolError{msg: "invalid log entry", line: line}
		}
		if err := s.deps.Worklogs.InsertEntry(ctx, entry, s.deviceID); err != nil {
			return err
		}
		count++
	}

	s.logger.Info("log upload received",
		slog.String("employee", s.login),
		slog.Int("entries", count),
	)
	if err := s.deps.Reconciler.Reconcile(ctx, s.login); err != nil {
		// The upload itself is durable; reconciliation will be retried
		// with the next batch.
		s.logger.Error("reconciliation failed", slog.String("error", err.Error()))
	}
	return nil
}

func (s *session) readLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	return line, nil
}

func (s *session) writeLine(line string) error {
	if _, err := s.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return s.writer.Flush()
}

func (s *session) writeAck(prefix string, ok bool) error {
	if ok {
		return s.writeLine(prefix + "OK")
	}
	return s.writeLine(prefix + "NOK")
}

// expectSuffix reads a line and strips the required case-insensitive
// prefix.
func (s *session) expectSuffix(prefix string) (string, error) {
	line, err := s.readLine()
	if err != nil {
		return "", err
	}
	rest, ok := wire.CutPrefixFold(line, prefix)
	if !ok {
		return "", &protocolError{msg: "expected " + strings.TrimSpace(prefix), line: line}
	}
	return rest, nil
}

// expectAck reads an OK/NOK line for the given prefix.
func (s *session) expectAck(prefix string) (bool, error) {
	line, err := s.readLine()
	if err != nil {
		return false, err
	}
	switch {
	case strings.EqualFold(line, prefix+"OK"):
		return true, nil
	case strings.EqualFold(line, prefix+"NOK"):
		return false, nil
	default:
		return false, &protocolError{msg: "expected " + strings.TrimSpace(prefix) + " ack", line: line}
	}
}
