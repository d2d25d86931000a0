package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jasperwreed/astroguide/internal/conversation"
	"github.com/jasperwreed/astroguide/internal/models"
	"github.com/jasperwreed/astroguide/internal/notify"
	"github.com/jasperwreed/astroguide/internal/session"
)

// Bridge carries session snapshots and toasts from background goroutines
// into the bubbletea event loop. Create it before the orchestrator and the
// notification center so both can be pointed at it.
type Bridge struct {
	states chan session.State
	toasts chan notify.Toast
	done   chan struct{}
	once   sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		states: make(chan session.State, 256),
		toasts: make(chan notify.Toast, 16),
		done:   make(chan struct{}),
	}
}

func (b *Bridge) Observer() session.Observer {
	return func(s session.State) {
		select {
		case b.states <- s:
		case <-b.done:
		}
	}
}

func (b *Bridge) Sink() notify.Sink {
	return notify.SinkFunc(func(t notify.Toast) {
		select {
		case b.toasts <- t:
		case <-b.done:
		}
	})
}

// Close unblocks any pending sender once the program has exited.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bridge) waitForState() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-b.states:
			return stateMsg(s)
		case <-b.done:
			return nil
		}
	}
}

func (b *Bridge) waitForToast() tea.Cmd {
	return func() tea.Msg {
		select {
		case t := <-b.toasts:
			return toastMsg(t)
		case <-b.done:
			return nil
		}
	}
}

// PreferenceStore persists preference changes made in the chat view.
type PreferenceStore interface {
	SavePreferences(models.Preferences) error
}

type Deps struct {
	Bridge         *Bridge
	Session        *session.Orchestrator
	Conversations  *conversation.Service
	Notifier       *notify.Center
	Store          PreferenceStore
	Preferences    models.Preferences
	ConversationID string
	DBPath         string
}

type Browser struct {
	deps Deps
}

func NewBrowser(deps Deps) *Browser {
	return &Browser{deps: deps}
}

// Run blocks until the user quits. Any stream still running is cancelled
// silently on the way out.
func (b *Browser) Run(ctx context.Context) error {
	defer b.deps.Bridge.Close()
	defer b.deps.Session.CancelStream(false)

	m := newChatModel(ctx, b.deps)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
