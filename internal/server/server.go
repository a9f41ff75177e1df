// Package server implements the central-station TCP endpoint: listeners
// for both address families, one goroutine per accepted connection, and a
// reaper that keeps the live-connection set honest so shutdown can wait
// for full drain.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/employee"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/task"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/worklog"
)

// Reconciler triggers a reconciliation pass for one employee.
type Reconciler interface {
	Reconcile(ctx context.Context, login string) error
}

// Deps are the collaborators a session needs.
type Deps struct {
	// Secret is the shared pairing secret proving both server and device
	// identity during the handshake.
	Secret string

	Employees  employee.EmployeeRepository
	Tasks      task.TaskRepository
	Worklogs   worklog.WorklogRepository
	Reconciler Reconciler
}

// Server accepts worker-station connections and runs one session per
// connection until stopped.
type Server struct {
	deps   *Deps
	logger *slog.Logger

	mu        sync.Mutex
	stopped   bool
	listeners []net.Listener
	conns     map[net.Conn]struct{}

	acceptors errgroup.Group
	done      chan net.Conn
	reaped    sync.WaitGroup
	reaper    sync.WaitGroup
}

func New(deps *Deps, logger *slog.Logger) *Server {
	return &Server{
		deps:   deps,
		logger: logger,
		conns:  make(map[net.Conn]struct{}),
		done:   make(chan net.Conn),
	}
}

// Start opens one listener per address family and begins accepting.
func (s *Server) Start(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	for _, network := range []string{"tcp4", "tcp6"} {
		listener, err := net.Listen(network, addr)
		if err != nil {
			s.closeListeners()
			return fmt.Errorf("listen %s on %s: %w", network, addr, err)
		}
		s.listeners = append(s.listeners, listener)
		s.logger.Info("listening", slog.String("network", network), slog.String("addr", addr))
	}

	s.reaper.Add(1)
	go s.runReaper()
	for _, listener := range s.listeners {
		listener := listener
		s.acceptors.Go(func() error {
			s.acceptLoop(ctx, listener)
			return nil
		})
	}
	return nil
}

// Addrs returns the bound listener addresses, one per address family.
func (s *Server) Addrs() []net.Addr {
	addrs := make([]net.Addr, 0, len(s.listeners))
	for _, listener := range s.listeners {
		addrs = append(addrs, listener.Addr())
	}
	return addrs
}

// Stop closes the listeners and every live connection, then blocks until
// all sessions have drained. In-flight commands are abandoned, not
// drained.
func (s *Server) Stop() {
	s.mu.Lock()
	s.stopped = true
	conns := make([]net.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	s.closeListeners()
	for _, conn := range conns {
		_ = conn.Close()
	}

	_ = s.acceptors.Wait()
	s.reaped.Wait()
	close(s.done)
	s.reaper.Wait()
	s.logger.Info("server stopped")
}

func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.logger.Error("accept failed", slog.String("error", err.Error()))
			}
			return
		}

		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.reaped.Add(1)
		s.mu.Unlock()

		logger := s.logger.With(slog.String("remote", conn.RemoteAddr().String()))
		logger.Info("connection accepted")
		go func() {
			defer func() { s.done <- conn }()
			sess := newSession(conn, s.deps, logger)
			sess.run(ctx)
		}()
	}
}

// runReaper removes finished sessions from the live set. Sessions never
// remove themselves, so Stop can wait on the set without self-join races.
func (s *Server) runReaper() {
	defer s.reaper.Done()
	for conn := range s.done {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		s.reaped.Done()
	}
}

func (s *Server) closeListeners() {
	for _, listener := range s.listeners {
		_ = listener.Close()
	}
}
