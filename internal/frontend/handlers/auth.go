// Package handlers provides Telnet session handling and command processing
// for the battle arena.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/onegotchi/arena/internal/frontend/telnet"
	"github.com/onegotchi/arena/internal/game/arena"
	"github.com/onegotchi/arena/internal/game/pet"
	"github.com/onegotchi/arena/internal/game/session"
	"github.com/onegotchi/arena/internal/narration"
	"github.com/onegotchi/arena/internal/storage/postgres"
)

const minPasswordLen = 6

// TrainerStore defines the trainer persistence operations required by ArenaHandler.
type TrainerStore interface {
	Register(ctx context.Context, address, password string) (postgres.Trainer, error)
	Authenticate(ctx context.Context, address, password string) (postgres.Trainer, error)
}

// HistoryStore defines the battle history queries required by ArenaHandler.
type HistoryStore interface {
	ListRecentByTrainer(ctx context.Context, trainer string, limit int) ([]postgres.BattleRecord, error)
	RecordFor(ctx context.Context, trainer string) (postgres.Record, error)
}

const welcomeBanner = `
` + telnet.Bold + telnet.BrightCyan + `
   ___             ____       _       _     _
  / _ \ _ __   ___/ ___| ___ | |_ ___| |__ (_)
 | | | | '_ \ / _ \ |  _ / _ \| __/ __| '_ \| |
 | |_| | | | |  __/ |_| | (_) | || (__| | | | |
  \___/|_| |_|\___|\____|\___/ \__\___|_| |_|_|` + telnet.Reset + `

` + telnet.BrightYellow + `  Battle Arena` + telnet.Reset + `

  Type ` + telnet.Green + `login <address> <password>` + telnet.Reset + ` to connect.
  Type ` + telnet.Green + `register <address> <password>` + telnet.Reset + ` to sign up a wallet.
  Type ` + telnet.Green + `quit` + telnet.Reset + ` to disconnect.
`

// Deps bundles the collaborators of an ArenaHandler.
type Deps struct {
	Trainers TrainerStore
	History  HistoryStore
	Pets     pet.Registry
	Arena    *arena.Arena
	Narrator narration.Narrator
	// Sessions enforces one live session per trainer; nil creates a private manager.
	Sessions *session.Manager
	// HistoryLimit caps the rows shown by the history command.
	HistoryLimit int
	Logger       *zap.Logger
	Now          func() time.Time
}

// ArenaHandler implements telnet.SessionHandler: it authenticates a trainer and
// then runs the arena command loop.
type ArenaHandler struct {
	trainers     TrainerStore
	history      HistoryStore
	pets         pet.Registry
	arena        *arena.Arena
	narrator     narration.Narrator
	sessions     *session.Manager
	historyLimit int
	logger       *zap.Logger
	now          func() time.Time
}

// NewArenaHandler creates an ArenaHandler.
//
// Precondition: Trainers, History, Pets, Arena and Narrator must be non-nil.
// Postcondition: Returns an ArenaHandler ready to handle sessions.
func NewArenaHandler(d Deps) *ArenaHandler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	sessions := d.Sessions
	if sessions == nil {
		sessions = session.NewManager()
	}
	limit := d.HistoryLimit
	if limit <= 0 {
		limit = 10
	}
	return &ArenaHandler{
		trainers:     d.Trainers,
		history:      d.History,
		pets:         d.Pets,
		arena:        d.Arena,
		narrator:     d.Narrator,
		sessions:     sessions,
		historyLimit: limit,
		logger:       logger,
		now:          now,
	}
}

// HandleSession implements telnet.SessionHandler. It shows the welcome banner
// and processes authentication commands until the trainer logs in or quits.
//
// Postcondition: Returns nil on clean quit, or an error if the session ended abnormally.
func (h *ArenaHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	addr := conn.RemoteAddr().String()

	if err := conn.Write([]byte(welcomeBanner)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "quit", "exit":
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			h.logger.Info("client quit",
				zap.String("remote_addr", addr),
				zap.Duration("session_duration", time.Since(start)),
			)
			return nil

		case "login":
			tr, ok := h.handleLogin(ctx, conn, args)
			if !ok {
				continue
			}
			if _, err := h.sessions.Add(tr.Address, conn.ID()); err != nil {
				if !errors.Is(err, session.ErrAlreadyConnected) {
					return fmt.Errorf("registering session: %w", err)
				}
				_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That trainer is already connected from another session."))
				continue
			}
			h.logger.Info("trainer logged in",
				zap.String("remote_addr", addr),
				zap.String("address", tr.Address),
				zap.Duration("login_time", time.Since(start)),
			)
			defer func() { _ = h.sessions.Remove(tr.Address) }()
			_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Welcome back, trainer %s!", shortAddress(tr.Address)))
			return h.arenaLoop(ctx, conn, tr)

		case "register":
			h.handleRegister(ctx, conn, args)

		case "help":
			h.showAuthHelp(conn)

		default:
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown command: %s. Type 'help' for available commands.", cmd))
		}
	}
}

// handleLogin authenticates a trainer. It reports false when the failure was
// shown to the user and the auth loop should continue.
func (h *ArenaHandler) handleLogin(ctx context.Context, conn *telnet.Conn, args []string) (postgres.Trainer, bool) {
	if len(args) < 2 {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: login <address> <password>"))
		return postgres.Trainer{}, false
	}

	start := time.Now()
	tr, err := h.trainers.Authenticate(ctx, args[0], args[1])
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrTrainerNotFound):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Trainer not found. Use 'register' to sign up."))
		case errors.Is(err, postgres.ErrInvalidCredentials):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Invalid password."))
		default:
			h.logger.Error("authentication error", zap.Error(err), zap.Duration("elapsed", elapsed))
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
		}
		return postgres.Trainer{}, false
	}

	return tr, true
}

func (h *ArenaHandler) handleRegister(ctx context.Context, conn *telnet.Conn, args []string) {
	if len(args) < 2 {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: register <address> <password>"))
		return
	}
	if err := pet.ValidAddress(args[0]); err != nil {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That is not a valid wallet address (0x followed by 40 hex digits)."))
		return
	}
	if len(args[1]) < minPasswordLen {
		_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Password must be at least %d characters.", minPasswordLen))
		return
	}

	start := time.Now()
	tr, err := h.trainers.Register(ctx, args[0], args[1])
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, postgres.ErrTrainerExists) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That address is already registered."))
			return
		}
		h.logger.Error("registration error", zap.Error(err), zap.Duration("elapsed", elapsed))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
		return
	}

	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen,
		"Trainer %s registered. You may now 'login'.", shortAddress(tr.Address)))
}

func (h *ArenaHandler) showAuthHelp(conn *telnet.Conn) {
	_ = conn.WriteLines(
		telnet.Colorize(telnet.BrightWhite, "Available commands:"),
		helpLine("login <address> <password>", "Log in as a trainer"),
		helpLine("register <address> <password>", "Register a wallet address"),
		helpLine("help", "Show this help"),
		helpLine("quit", "Disconnect"),
	)
}

func helpLine(usage, desc string) string {
	return telnet.PadRight(telnet.Colorize(telnet.Green, "  "+usage), 34) + desc
}

// shortAddress abbreviates a wallet address to 0x1234…abcd.
func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
