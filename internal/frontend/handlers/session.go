package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/onegotchi/arena/internal/frontend/telnet"
	"github.com/onegotchi/arena/internal/game/arena"
	"github.com/onegotchi/arena/internal/game/battle"
	"github.com/onegotchi/arena/internal/game/pet"
	"github.com/onegotchi/arena/internal/narration"
	"github.com/onegotchi/arena/internal/storage/postgres"
)

// arenaSession is the per-connection arena state of one logged-in trainer.
type arenaSession struct {
	h       *ArenaHandler
	conn    *telnet.Conn
	trainer postgres.Trainer
	logger  *zap.Logger

	mine       []pet.Pet
	candidates []pet.Pet
	self       *pet.Pet
	opponent   *pet.Pet
	matchID    string
}

// arenaLoop runs the arena commands for tr until quit or disconnect.
func (h *ArenaHandler) arenaLoop(ctx context.Context, conn *telnet.Conn, tr postgres.Trainer) error {
	s := &arenaSession{
		h:       h,
		conn:    conn,
		trainer: tr,
		logger:  h.logger.With(zap.String("trainer", tr.Address), zap.String("session", conn.ID())),
	}
	defer s.leave()

	s.listPets(ctx)
	prompt := telnet.Colorize(telnet.BrightWhite, "arena> ")

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(prompt); err != nil {
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
			return nil
		case "pets", "mine":
			s.listPets(ctx)
		case "pick", "select":
			s.pick(ctx, args)
		case "feed", "play", "evolve":
			c, _ := pet.ParseCare(cmd)
			s.care(ctx, c, args)
		case "find":
			s.find(ctx, args)
		case "challenge":
			s.challenge(args)
		case "fight":
			s.fight(ctx)
		case "attack", "a":
			s.attack(ctx)
		case "status":
			s.status()
		case "back", "flee":
			s.back()
		case "history":
			s.showHistory(ctx)
		case "help":
			s.showHelp()
		default:
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown command: %s. Type 'help' for available commands.", cmd))
		}
	}
}

func (s *arenaSession) errorLine(msg string) {
	_ = s.conn.WriteLine(telnet.Colorize(telnet.Red, msg))
}

func (s *arenaSession) internalError(op string, err error) {
	s.logger.Error(op, zap.Error(err))
	s.errorLine("An internal error occurred. Please try again.")
}

func (s *arenaSession) listPets(ctx context.Context) {
	pets, err := s.h.pets.ListByOwner(ctx, s.trainer.Address)
	if err != nil {
		s.internalError("listing pets", err)
		return
	}
	s.mine = pets
	_ = s.conn.WriteLines(RenderPetList("Your pets:", pets, false, s.h.now())...)
	if len(pets) > 0 {
		_ = s.conn.WriteLine("Type " + telnet.Colorize(telnet.Green, "pick <n>") + " to choose your fighter.")
	}
}

// index parses a 1-based list index.
func index(args []string, n int) (int, bool) {
	if len(args) < 1 {
		return 0, false
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

func (s *arenaSession) pick(ctx context.Context, args []string) {
	if s.inBattle() {
		s.errorLine("You are in a battle. Type 'back' to leave it first.")
		return
	}
	i, ok := index(args, len(s.mine))
	if !ok {
		s.errorLine("Usage: pick <n> (see 'pets')")
		return
	}
	p := s.mine[i]
	s.self = &p
	if s.opponent != nil && s.opponent.ID == p.ID {
		s.opponent = nil
	}
	_ = s.conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "%s is ready to fight!", p.Name))
	s.react(ctx, p, narration.InteractionGreet)
}

// react prints the pet's narrated reaction to interaction.
func (s *arenaSession) react(ctx context.Context, p pet.Pet, interaction narration.Interaction) {
	c := p.Combatant()
	line, err := s.h.narrator.Narrate(ctx, narration.Request{
		PetName:     c.Name,
		Stage:       c.Stage,
		Hunger:      c.Hunger,
		Happiness:   c.Happiness,
		Health:      battle.StartingHealth,
		Interaction: interaction,
	})
	if err != nil {
		s.logger.Warn("pet narration failed", zap.Stringer("interaction", interaction), zap.Error(err))
		return
	}
	_ = s.conn.WriteLine(telnet.Colorf(telnet.Magenta, "%s: \"%s\"", p.Name, line))
}

var careReactions = map[pet.Care]narration.Interaction{
	pet.CareFeed:   narration.InteractionFeed,
	pet.CarePlay:   narration.InteractionPlay,
	pet.CareEvolve: narration.InteractionEvolve,
}

// care feeds, plays with or evolves one of the trainer's pets.
func (s *arenaSession) care(ctx context.Context, c pet.Care, args []string) {
	if s.inBattle() {
		s.errorLine("You are in a battle. Type 'back' to leave it first.")
		return
	}
	i, ok := index(args, len(s.mine))
	if !ok {
		s.errorLine(fmt.Sprintf("Usage: %s <n> (see 'pets')", c))
		return
	}
	before := s.mine[i]
	p, err := s.h.pets.Tend(ctx, s.trainer.Address, before.ID, c)
	switch {
	case err == nil:
	case errors.Is(err, pet.ErrCannotEvolve):
		if before.Stage >= 3 {
			s.errorLine(fmt.Sprintf("%s is fully grown.", before.Name))
			return
		}
		s.errorLine(fmt.Sprintf("%s cannot evolve yet: it needs happiness 70+ and food above 70.", before.Name))
		return
	case errors.Is(err, pet.ErrNotOwner), errors.Is(err, pet.ErrPetNotFound):
		s.errorLine("That pet is no longer yours. Type 'pets' to refresh.")
		return
	default:
		s.internalError("tending pet", err)
		return
	}

	s.mine[i] = p
	if s.self != nil && s.self.ID == p.ID {
		s.self = &p
	}
	s.logger.Info("pet tended",
		zap.String("pet", p.ID),
		zap.Stringer("care", c),
		zap.Int("hunger", p.Hunger),
		zap.Int("happiness", p.Happiness),
		zap.Int("stage", p.Stage),
	)

	switch c {
	case pet.CareFeed:
		_ = s.conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "%s has been fed!", p.Name))
	case pet.CarePlay:
		_ = s.conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "%s had fun!", p.Name))
	case pet.CareEvolve:
		_ = s.conn.WriteLine(telnet.Colorf(telnet.Bold+telnet.BrightYellow, "%s evolved into a %s!", p.Name, p.Badge()))
	}
	_ = s.conn.WriteLine(RenderPetCard(i+1, p, false, s.h.now()))
	s.react(ctx, p, careReactions[c])
}

func (s *arenaSession) find(ctx context.Context, args []string) {
	if len(args) < 1 {
		s.errorLine("Usage: find <address>")
		return
	}
	if err := pet.ValidAddress(args[0]); err != nil {
		s.errorLine("That is not a valid wallet address.")
		return
	}
	owner := pet.NormalizeOwner(args[0])
	pets, err := s.h.pets.ListByOwner(ctx, owner)
	if err != nil {
		s.internalError("finding opponents", err)
		return
	}
	if s.self != nil {
		kept := pets[:0]
		for _, p := range pets {
			if p.ID != s.self.ID {
				kept = append(kept, p)
			}
		}
		pets = kept
	}
	s.candidates = pets
	if len(pets) == 0 {
		_ = s.conn.WriteLine(telnet.Colorize(telnet.Yellow, "This address has no pets!"))
		return
	}
	_ = s.conn.WriteLines(RenderPetList("Pets of "+shortAddress(owner)+":", pets, true, s.h.now())...)
	_ = s.conn.WriteLine("Type " + telnet.Colorize(telnet.Green, "challenge <n>") + " to pick an opponent.")
}

func (s *arenaSession) challenge(args []string) {
	if s.inBattle() {
		s.errorLine("You are in a battle. Type 'back' to leave it first.")
		return
	}
	i, ok := index(args, len(s.candidates))
	if !ok {
		s.errorLine("Usage: challenge <n> (see 'find <address>')")
		return
	}
	p := s.candidates[i]
	s.opponent = &p
	_ = s.conn.WriteLine(telnet.Colorf(telnet.BrightRed, "%s accepts the challenge!", p.Name))
	if s.self == nil {
		_ = s.conn.WriteLine("Now " + telnet.Colorize(telnet.Green, "pick <n>") + " one of your pets.")
		return
	}
	_ = s.conn.WriteLine("Type " + telnet.Colorize(telnet.Green, "fight") + " to begin.")
}

// inBattle reports whether the current match is still being fought.
func (s *arenaSession) inBattle() bool {
	if s.matchID == "" {
		return false
	}
	m, err := s.h.arena.Get(s.matchID)
	return err == nil && !m.State.Finished
}

func (s *arenaSession) fight(ctx context.Context) {
	if s.self == nil || s.opponent == nil {
		s.errorLine("Pick your pet ('pick <n>') and an opponent ('challenge <n>') first.")
		return
	}
	if s.inBattle() {
		s.errorLine("You are already in a battle.")
		return
	}
	s.leave()

	self, opp := s.self.Combatant(), s.opponent.Combatant()
	l := &sessionListener{conn: s.conn, self: self, opponent: opp}
	m, err := s.h.arena.Start(ctx, s.trainer.Address, self, opp, l)
	if err != nil {
		switch {
		case errors.Is(err, arena.ErrTooManyMatches):
			s.errorLine("The arena is full. Try again shortly.")
		case errors.Is(err, arena.ErrInvalidSelection):
			s.errorLine("Choose two different pets.")
		default:
			s.internalError("starting match", err)
		}
		return
	}
	s.matchID = m.ID
	_ = s.h.sessions.SetMatch(s.trainer.Address, m.ID)
	s.logger.Info("match started",
		zap.String("match", m.ID),
		zap.String("self", self.ID),
		zap.String("opponent", opp.ID),
	)
	lines := []string{RenderEntry(m.State.Log[0])}
	lines = append(lines, RenderStatus(self, opp, m.State)...)
	_ = s.conn.WriteLines(lines...)
}

func (s *arenaSession) attack(ctx context.Context) {
	if s.matchID == "" {
		s.errorLine("You are not in a battle. Type 'fight' to start one.")
		return
	}
	_, err := s.h.arena.Attack(ctx, s.matchID)
	switch {
	case err == nil:
	case errors.Is(err, arena.ErrNotYourTurn):
		_ = s.conn.WriteLine(telnet.Colorize(telnet.Yellow, "Wait! Your opponent is about to strike."))
	case errors.Is(err, arena.ErrBattleFinished):
		s.errorLine("The battle is over. Type 'fight' for a rematch.")
	case errors.Is(err, arena.ErrMatchNotFound):
		s.matchID = ""
		s.errorLine("You are not in a battle. Type 'fight' to start one.")
	default:
		s.internalError("attacking", err)
	}
}

func (s *arenaSession) status() {
	if s.matchID != "" {
		if m, err := s.h.arena.Get(s.matchID); err == nil {
			_ = s.conn.WriteLines(RenderStatus(m.Self, m.Opponent, m.State)...)
			return
		}
	}
	var lines []string
	if s.self != nil {
		lines = append(lines, "Your pet: "+RenderPetCard(1, *s.self, false, s.h.now()))
	}
	if s.opponent != nil {
		lines = append(lines, "Opponent: "+RenderPetCard(1, *s.opponent, true, s.h.now()))
	}
	if len(lines) == 0 {
		lines = append(lines, telnet.Colorize(telnet.Dim, "Nothing selected. Type 'pets' to begin."))
	}
	_ = s.conn.WriteLines(lines...)
}

func (s *arenaSession) back() {
	if s.matchID == "" {
		s.opponent = nil
		_ = s.conn.WriteLine("Selection cleared.")
		return
	}
	fled := s.inBattle()
	s.leave()
	if fled {
		_ = s.conn.WriteLine(telnet.Colorize(telnet.Yellow, "You fled the battle."))
		return
	}
	_ = s.conn.WriteLine("Back to pet selection.")
}

// leave abandons the current match, if any.
func (s *arenaSession) leave() {
	if s.matchID == "" {
		return
	}
	s.h.arena.Leave(s.matchID)
	_ = s.h.sessions.SetMatch(s.trainer.Address, "")
	s.matchID = ""
}

func (s *arenaSession) showHistory(ctx context.Context) {
	rec, err := s.h.history.RecordFor(ctx, s.trainer.Address)
	if err != nil {
		s.internalError("loading record", err)
		return
	}
	battles, err := s.h.history.ListRecentByTrainer(ctx, s.trainer.Address, s.h.historyLimit)
	if err != nil {
		s.internalError("loading history", err)
		return
	}
	_ = s.conn.WriteLines(RenderHistory(rec, battles)...)
}

func (s *arenaSession) showHelp() {
	_ = s.conn.WriteLines(
		telnet.Colorize(telnet.BrightWhite, "Arena commands:"),
		helpLine("pets", "List your pets"),
		helpLine("pick <n>", "Choose your fighter"),
		helpLine("feed <n>", "Feed a pet (less hunger, more attack)"),
		helpLine("play <n>", "Play with a pet (happier, but hungrier)"),
		helpLine("evolve <n>", "Evolve a thriving pet to its next stage"),
		helpLine("find <address>", "List another trainer's pets"),
		helpLine("challenge <n>", "Choose an opponent from the last find"),
		helpLine("fight", "Start the battle"),
		helpLine("attack (a)", "Strike on your turn"),
		helpLine("status", "Show health and selection"),
		helpLine("back (flee)", "Leave the current battle"),
		helpLine("history", "Show your record and recent battles"),
		helpLine("quit", "Disconnect"),
	)
}

// sessionListener renders match events onto a trainer's connection. Events
// caused by the trainer's own command arrive while the prompt is not shown;
// opponent turns and results arrive asynchronously and redraw it.
type sessionListener struct {
	conn     *telnet.Conn
	self     battle.Combatant
	opponent battle.Combatant
}

func (l *sessionListener) OnScheduled(arena.ScheduledTurn) {
	_ = l.conn.WriteLine(telnet.Colorf(telnet.Dim, "%s is preparing to strike...", l.opponent.Name))
}

func (l *sessionListener) OnTurn(ev arena.TurnEvent) {
	lines := RenderTurn(l.self, l.opponent, ev)
	if ev.Entry.Attacker == battle.SideSelf {
		_ = l.conn.WriteLines(lines...)
		return
	}
	if !ev.State.Finished {
		lines = append(lines, "  Your turn! Type "+telnet.Colorize(telnet.Green, "attack")+".")
	}
	_ = l.conn.Notify(lines...)
}

func (l *sessionListener) OnFinish(r arena.MatchResult) {
	_ = l.conn.Notify(RenderResult(r)...)
}
