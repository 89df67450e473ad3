package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorBgSubtle = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorMuted    = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	// Status colors
	ColorStatusOpen       = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorStatusInProgress = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorStatusBlocked    = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorStatusClosed     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}

	ColorStatusOpenBg       = lipgloss.AdaptiveColor{Light: "#D4EDDA", Dark: "#1A3D2A"}
	ColorStatusInProgressBg = lipgloss.AdaptiveColor{Light: "#D1ECF1", Dark: "#1A3344"}
	ColorStatusBlockedBg    = lipgloss.AdaptiveColor{Light: "#F8D7DA", Dark: "#3D1A1A"}
	ColorStatusClosedBg     = lipgloss.AdaptiveColor{Light: "#E2E3E5", Dark: "#2A2A3D"}

	// Priority colors
	ColorPrioCritical = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorPrioHigh     = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorPrioMedium   = lipgloss.AdaptiveColor{Light: "#808000", Dark: "#F1FA8C"}
	ColorPrioLow      = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}

	// Kind badges (white on colored background)
	ColorKindBadgeText = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	ColorKindBugBg     = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#E5493A"}
	ColorKindFeatureBg = lipgloss.AdaptiveColor{Light: "#36B37E", Dark: "#36B37E"}
	ColorKindTaskBg    = lipgloss.AdaptiveColor{Light: "#2684FF", Dark: "#4C9AFF"}
	ColorKindEpicBg    = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#904EE2"}
	ColorKindChoreBg   = lipgloss.AdaptiveColor{Light: "#6B778C", Dark: "#6B778C"}
)

// RenderPriorityBadge returns a styled priority badge, always 2 cells wide.
// Priority values: 0=Critical, 1=High, 2=Medium, 3=Low, 4=Backlog
func RenderPriorityBadge(priority int) string {
	var fg lipgloss.AdaptiveColor
	var label string

	switch priority {
	case 0:
		fg, label = ColorPrioCritical, "P0"
	case 1:
		fg, label = ColorPrioHigh, "P1"
	case 2:
		fg, label = ColorPrioMedium, "P2"
	case 3:
		fg, label = ColorPrioLow, "P3"
	case 4:
		fg, label = ColorMuted, "P4"
	default:
		fg, label = ColorMuted, "P?"
	}

	return lipgloss.NewStyle().Foreground(fg).Bold(true).Render(label)
}

// RenderStatusBadge returns a styled status badge, always 4 cells wide.
// Items without a status render as blanks.
func RenderStatusBadge(status string) string {
	var fg, bg lipgloss.AdaptiveColor
	var label string

	switch status {
	case "":
		return "    "
	case "open":
		fg, bg, label = ColorStatusOpen, ColorStatusOpenBg, "OPEN"
	case "in_progress":
		fg, bg, label = ColorStatusInProgress, ColorStatusInProgressBg, "PROG"
	case "blocked":
		fg, bg, label = ColorStatusBlocked, ColorStatusBlockedBg, "BLKD"
	case "closed":
		fg, bg, label = ColorStatusClosed, ColorStatusClosedBg, "DONE"
	default:
		fg, bg, label = ColorMuted, ColorBgSubtle, padRight(truncateRunesHelper(strings.ToUpper(status), 4, ""), 4)
	}

	return lipgloss.NewStyle().Foreground(fg).Background(bg).Render(label)
}

// RenderKindBadge returns a colored square badge with a single letter.
func RenderKindBadge(kind string) string {
	var bg lipgloss.AdaptiveColor
	var label string

	switch kind {
	case "bug":
		bg, label = ColorKindBugBg, "B"
	case "feature":
		bg, label = ColorKindFeatureBg, "F"
	case "task":
		bg, label = ColorKindTaskBg, "T"
	case "epic":
		bg, label = ColorKindEpicBg, "E"
	case "chore":
		bg, label = ColorKindChoreBg, "C"
	default:
		bg, label = ColorBgSubtle, "·"
	}

	return lipgloss.NewStyle().
		Foreground(ColorKindBadgeText).
		Background(bg).
		Bold(true).
		Render(label)
}
