// Package terminal implements the façade handlers use to drive and
// observe an interactive child process: send/sendline/send_key,
// settle-waiting (expect_delay), pattern and cursor waits, and
// terminal-state reads, all backed by a real pseudo-TTY and the
// internal vt100 emulator. The pseudo-TTY spawn and VT100 emulation
// are external collaborators from the core's point of view (see the
// hsm and screen packages); this package is the one concrete,
// wired implementation of that narrow interface.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"

	"github.com/charles-dyfis-net/isg-state-machine-framework/config"
	"github.com/charles-dyfis-net/isg-state-machine-framework/vt100"
)

// builtinKeys is the fixed key-code table (spec.md §6): used as the
// default for SendKey when no os.term_key_<NAME> override is present.
var builtinKeys = map[string]string{
	"ESC":   "\x1b",
	"UP":    "\x1bOA",
	"DOWN":  "\x1bOB",
	"RIGHT": "\x1bOC",
	"LEFT":  "\x1bOD",
	"F1":    "\x01",
	"F2":    "\x02",
	"F3":    "\x03",
	"F4":    "\x04",
	"F5":    "\x05",
	"F6":    "\x06",
	"F7":    "\x07",
	"F8":    "\x1b[19~",
	"F9":    "\x1b[20~",
	"F10":   "\x1b[21~",
	"F11":   "\x1b[23~",
	"F12":   "\x1b[24~",
}

// Session owns one child process spawned under a pseudo-TTY and the
// vt100.Terminal fed by its output. It is not safe for concurrent use
// by multiple goroutines calling expect_*/send at once; callers
// serialize access (the façade is driven by one HSM run loop at a
// time — see rpcfacade for the cross-thread serialization boundary).
type Session struct {
	cmd  *exec.Cmd
	ptmx *os.File
	term *vt100.Terminal
	cfg  *config.Tree
	log  *slog.Logger

	mu           sync.Mutex
	lastActivity time.Time
	bytesRead    int64
	eof          bool
	readErr      error
}

// Spawn starts Connect.spawnString under a pseudo-TTY of the given
// size, exporting General.term (default "ANSI") as TERM, and begins
// feeding its output into a vt100.Terminal.
func Spawn(ctx context.Context, cfg *config.Tree, rows, cols int, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	spawnString, err := cfg.GetString(config.Path{"Connect"}, "spawnString")
	if err != nil {
		return nil, err
	}
	term := cfg.GetStringDefault(config.Path{"General"}, "term", "ANSI")

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", spawnString)
	cmd.Env = append(os.Environ(), "TERM="+term)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("terminal: spawn %q: %w", spawnString, err)
	}

	s := &Session{
		cmd:          cmd,
		ptmx:         ptmx,
		term:         vt100.New(rows, cols),
		cfg:          cfg,
		log:          logger,
		lastActivity: time.Now(),
	}
	go s.readLoop()
	return s, nil
}

func (s *Session) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.term.Write(buf[:n])
			s.bytesRead += int64(n)
			s.lastActivity = time.Now()
			s.mu.Unlock()
		}
		if err != nil {
			s.mu.Lock()
			s.eof = true
			s.readErr = err
			s.mu.Unlock()
			return
		}
	}
}

// Send transmits raw bytes to the child.
func (s *Session) Send(data []byte) error {
	_, err := s.ptmx.Write(data)
	return err
}

// Disconnect SIGTERMs the child and waits for it to exit, per the
// child-process contract in spec.md §6.
func (s *Session) Disconnect() error {
	if s.cmd.Process == nil {
		return nil
	}
	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		s.log.Error("terminal: signal child", slog.Any("error", err))
	}
	_ = s.cmd.Wait()
	return s.ptmx.Close()
}

// Term returns the underlying emulator for direct row/region reads.
func (s *Session) Term() *vt100.Terminal { return s.term }

func (s *Session) snapshot() (bytesRead int64, lastActivity time.Time, eof bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bytesRead, s.lastActivity, s.eof
}
