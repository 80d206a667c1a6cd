package tui

import (
	"context"
	"log/slog"
	"time"

	"activities-cli/internal/dispatch"
	"activities-cli/internal/syncctl"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Mutator performs confirmed mutations and interprets their results.
type Mutator interface {
	Register(ctx context.Context, activity, participant string) dispatch.Outcome
	Unregister(ctx context.Context, activity, participant string) dispatch.Outcome
}

// Options wires the terminal client to the service.
type Options struct {
	Fetcher syncctl.Fetcher
	Mutator Mutator
	Logger  *slog.Logger
	// Title is shown in the header; empty uses the default.
	Title string
}

const defaultTitle = "Extracurricular Activities"

type appModel struct {
	ctx     context.Context
	fetcher syncctl.Fetcher
	mutator Mutator
	guard   *syncctl.Guard
	logger  *slog.Logger
	now     func() time.Time
	tick    tickFunc
	title   string

	width  int
	height int

	state syncctl.State

	focus focusArea

	// activity is the selected option value; "" is the placeholder.
	activity string
	email    textinput.Model

	modal        modalKind
	pending      dispatchTarget
	confirmFocus confirmModalFocus

	flash    string
	flashSeq int

	list     list.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	showHelp bool
}

// dispatchTarget is the action awaiting confirmation.
type dispatchTarget struct {
	activity    string
	participant string
	prompt      string
}

func newAppModel(ctx context.Context, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	title := opts.Title
	if title == "" {
		title = defaultTitle
	}

	email := textinput.New()
	email.Placeholder = "your-email@mergington.edu"
	email.Prompt = ""
	email.CharLimit = 254
	email.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := appModel{
		ctx:     ctx,
		fetcher: opts.Fetcher,
		mutator: opts.Mutator,
		guard:   &syncctl.Guard{},
		logger:  logger,
		now:     time.Now,
		tick:    tea.Tick,
		title:   title,
		state:   syncctl.New(),
		email:   email,
		list:    newActivityList(),
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeyMap(),
	}
	// The initial load is issued here so Init only has to run it.
	m.state, _ = m.state.BeginFetch()
	m.layout()
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchCmd(m.state.FetchTicket()),
		m.spinner.Tick,
		m.clockCmd(),
	)
}

// beginFetch issues a fetch ticket and returns the command performing it.
func (m appModel) beginFetch() (appModel, tea.Cmd) {
	var t syncctl.Ticket
	m.state, t = m.state.BeginFetch()
	return m, m.fetchCmd(t)
}

func (m appModel) fetchCmd(t syncctl.Ticket) tea.Cmd {
	ctx, f := m.ctx, m.fetcher
	return func() tea.Msg {
		snap, err := f.ListActivities(ctx)
		return fetchDoneMsg{ticket: t, snap: snap, err: err}
	}
}

func (m appModel) clockCmd() tea.Cmd {
	return m.tick(clockInterval, func(time.Time) tea.Msg { return clockTickMsg{} })
}

func (m appModel) registerCmd(activity, participant string) tea.Cmd {
	ctx, mu := m.ctx, m.mutator
	return func() tea.Msg {
		return mutationDoneMsg{outcome: mu.Register(ctx, activity, participant)}
	}
}

func (m appModel) unregisterCmd(activity, participant string, release func()) tea.Cmd {
	ctx, mu := m.ctx, m.mutator
	return func() tea.Msg {
		defer release()
		return mutationDoneMsg{outcome: mu.Unregister(ctx, activity, participant)}
	}
}
