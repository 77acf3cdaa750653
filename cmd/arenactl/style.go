package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/onegotchi/arena/internal/game/battle"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	selfStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	opponentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	resultStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	rewardStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	winStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	lossStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func entryStyle(e battle.LogEntry) lipgloss.Style {
	switch {
	case e.Kind == battle.EntryStart:
		return titleStyle
	case e.Kind == battle.EntryResult:
		return resultStyle
	case e.Attacker == battle.SideOpponent:
		return opponentStyle
	default:
		return selfStyle
	}
}
