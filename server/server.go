package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fncall/handlers"
	"github.com/fncall/logger"

	"github.com/google/uuid"
)

type Server struct {
	StartTime time.Time
	Svr       *http.Server
	grace     time.Duration
	log       *logger.Logger
}

func NewServer(conf *Conf, svc *handlers.Service) *Server {
	if conf == nil {
		conf = ServerConfigs()
	}
	return &Server{
		StartTime: time.Now().UTC(),
		grace:     conf.Grace,
		log:       logger.NewLogger("Server", uuid.NewString()),
		Svr: &http.Server{
			Handler:      SetupRoutes(svc),
			Addr:         conf.Addr,
			ReadTimeout:  conf.TimeoutRead,
			WriteTimeout: conf.TimeoutWrite,
			IdleTimeout:  conf.TimeoutIdle,
		},
	}
}

func secondsToTimeStr(seconds float64) string {
	duration := time.Duration(int64(seconds)) * time.Second
	timeValue := time.Time{}.Add(duration)
	return timeValue.Format("15:04:05")
}

// returns the current run time of the server
// as a HH:MM:SS formatted string.
func (s *Server) RunTime() string {
	return secondsToTimeStr(time.Since(s.StartTime).Seconds())
}

// forcibly shuts down server and returns total run time.
func (s *Server) Shutdown() (string, error) {
	if err := s.Svr.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return "0", fmt.Errorf("server shutdown failed: %w", err)
	}
	return s.RunTime(), nil
}

// Run serves until ctx is done or the process receives an interrupt, then
// drains in-flight requests for the grace period.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	ln, err := net.Listen("tcp", s.Svr.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Svr.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener without signal handling.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting server...", "addr", ln.Addr().String())
		if err := s.Svr.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	if err := s.Svr.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("shutdown timed out. forcing exit.", "error", err)
		if _, err := s.Shutdown(); err != nil {
			return err
		}
	}
	s.log.Info(fmt.Sprintf("server run time: %s", s.RunTime()))
	return <-errc
}
