// Package tui renders the interactive command chooser shown when botctl runs
// without arguments on a terminal.
package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// ExitCommand is returned when the operator leaves the menu.
const ExitCommand = "exit"

// Item is one entry of the chooser.
type Item struct {
	Key         rune
	Command     string
	Description string
}

// Option configures a Menu.
type Option func(*Menu)

// WithScreen runs the menu on screen instead of the controlling terminal.
func WithScreen(screen tcell.Screen) Option {
	return func(m *Menu) {
		if screen != nil {
			m.app.SetScreen(screen)
		}
	}
}

// Menu is a single-shot chooser. Build a new Menu for every prompt.
type Menu struct {
	app   *tview.Application
	list  *tview.List
	items []Item

	mu     sync.Mutex
	choice string
}

// NewMenu builds a chooser titled title listing items in order.
func NewMenu(title string, items []Item, opts ...Option) *Menu {
	app := tview.NewApplication()
	list := tview.NewList().ShowSecondaryText(false)
	list.SetBorder(true).SetTitle(fmt.Sprintf(" %s ", title))

	m := &Menu{app: app, list: list, items: items}
	for _, item := range items {
		item := item
		label := fmt.Sprintf("%-10s %s", item.Command, item.Description)
		list.AddItem(label, "", item.Key, func() { m.choose(item.Command) })
	}

	app.SetRoot(list, true)
	app.SetInputCapture(m.handleKey)

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Choose shows the menu until an item is picked and returns its command.
// Leaving with q or Esc yields ExitCommand. A cancelled ctx closes the menu
// and returns ctx.Err().
func (m *Menu) Choose(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.app.Stop()
		case <-done:
		}
	}()

	if err := m.app.Run(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.choice == "" {
		return ExitCommand, nil
	}
	return m.choice, nil
}

func (m *Menu) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		m.choose(ExitCommand)
		return nil
	case tcell.KeyRune:
		r := event.Rune()
		if r == 'q' || r == 'Q' {
			m.choose(ExitCommand)
			return nil
		}
		for _, item := range m.items {
			if item.Key == r {
				m.choose(item.Command)
				return nil
			}
		}
	}
	return event
}

func (m *Menu) choose(command string) {
	m.mu.Lock()
	if m.choice != "" {
		m.mu.Unlock()
		return
	}
	m.choice = command
	m.mu.Unlock()
	go m.app.Stop()
}

func (m *Menu) selected() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.choice
}
