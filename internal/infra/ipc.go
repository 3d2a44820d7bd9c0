package infra

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/putao520/aria-ng-gui/internal/domain"
)

const (
	commandReadTimeout = 2 * time.Second
	commandDialTimeout = 300 * time.Millisecond
	commandRetryDelay  = 100 * time.Millisecond
)

// instanceInfo tells secondary instances where the primary listens.
type instanceInfo struct {
	Port int `json:"port"`
	PID  int `json:"pid"`
}

// CommandServer receives fire-and-forget UI commands on a loopback port.
// One newline-terminated command per connection; nothing is written back.
type CommandServer struct {
	ln       net.Listener
	infoPath string
	logger   *zap.Logger
}

// StartCommandServer listens on 127.0.0.1 and records the port at infoPath.
func StartCommandServer(infoPath string, logger *zap.Logger) (*CommandServer, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	port := ln.Addr().(*net.TCPAddr).Port
	data, err := json.Marshal(instanceInfo{Port: port, PID: os.Getpid()})
	if err != nil {
		ln.Close()
		return nil, err
	}
	if err := writeFileAtomic(infoPath, data, 0600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("failed to write instance info: %w", err)
	}

	logger.Debug("command server listening", zap.Int("port", port))
	return &CommandServer{ln: ln, infoPath: infoPath, logger: logger}, nil
}

// Addr returns the listening address.
func (s *CommandServer) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until ctx is canceled or the server is closed,
// delivering parsed commands to out.
func (s *CommandServer) Serve(ctx context.Context, out chan<- domain.Command) error {
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("command accept failed", zap.Error(err))
			continue
		}
		go s.handle(ctx, conn, out)
	}
}

func (s *CommandServer) handle(ctx context.Context, conn net.Conn, out chan<- domain.Command) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(commandReadTimeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		s.logger.Debug("empty command connection", zap.Error(err))
		return
	}

	cmd, err := ParseCommand(line)
	if err != nil {
		s.logger.Warn("ignoring malformed command", zap.String("line", strings.TrimSpace(line)), zap.Error(err))
		return
	}

	select {
	case out <- cmd:
	case <-ctx.Done():
	}
}

// Close stops listening and removes the instance info file.
func (s *CommandServer) Close() error {
	err := s.ln.Close()
	if rmErr := os.Remove(s.infoPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		s.logger.Debug("failed to remove instance info", zap.Error(rmErr))
	}
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// SendCommand delivers cmd to the running primary instance, retrying until
// timeout while the primary is still starting up.
func SendCommand(infoPath string, cmd domain.Command, timeout time.Duration) error {
	line := FormatCommand(cmd) + "\n"

	var lastErr error
	deadline := time.Now().Add(timeout)
	for {
		lastErr = sendOnce(infoPath, line)
		if lastErr == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("failed to reach running instance: %w", lastErr)
		}
		time.Sleep(commandRetryDelay)
	}
}

func sendOnce(infoPath, line string) error {
	data, err := os.ReadFile(infoPath)
	if err != nil {
		return err
	}
	var info instanceInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return err
	}
	if info.Port <= 0 {
		return errors.New("invalid command port")
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(info.Port)), commandDialTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Write([]byte(line))
	return err
}

// ParseCommand parses one command line: "activate", "context-menu", or
// "progress [value]".
func ParseCommand(line string) (domain.Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return domain.Command{}, errors.New("empty command")
	}

	kind := domain.CommandKind(fields[0])
	switch kind {
	case domain.CommandActivate, domain.CommandContextMenu:
		if len(fields) != 1 {
			return domain.Command{}, fmt.Errorf("%s takes no arguments", kind)
		}
		return domain.Command{Kind: kind}, nil

	case domain.CommandProgress:
		if len(fields) > 2 {
			return domain.Command{}, errors.New("progress takes at most one value")
		}
		cmd := domain.Command{Kind: kind}
		if len(fields) == 2 {
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return domain.Command{}, fmt.Errorf("invalid progress value: %w", err)
			}
			cmd.Value = &v
		}
		return cmd, nil

	default:
		return domain.Command{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

// FormatCommand renders cmd in the form ParseCommand accepts.
func FormatCommand(cmd domain.Command) string {
	if cmd.Kind == domain.CommandProgress && cmd.Value != nil && !math.IsNaN(*cmd.Value) {
		return string(cmd.Kind) + " " + strconv.FormatFloat(*cmd.Value, 'g', -1, 64)
	}
	return string(cmd.Kind)
}
