// Package tui hosts the engines in a Bubble Tea program, locally or over SSH.
// It maps keys to actions, drives the frame scheduler and forwards finished
// sessions to the profile service.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg is sent once per display refresh.
type FrameMsg time.Time

// frameCmd schedules the next display refresh.
func frameCmd(fps int) tea.Cmd {
	if fps <= 0 {
		fps = 60
	}
	interval := time.Second / time.Duration(fps)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}
