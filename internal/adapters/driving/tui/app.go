// Package tui implements the interactive review screen following the Elm
// architecture. One screen: mentions on the left, the selected mention's
// candidates with community tallies on the right.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/outremer-kg/recon-cli/internal/adapters/driving/tui/keymap"
	"github.com/outremer-kg/recon-cli/internal/adapters/driving/tui/messages"
	"github.com/outremer-kg/recon-cli/internal/adapters/driving/tui/styles"
	"github.com/outremer-kg/recon-cli/internal/core/domain"
)

// syncTickInterval paces push-status refreshes while pushes are in flight.
const syncTickInterval = 300 * time.Millisecond

type flagKey struct {
	person string
	kind   domain.EntityFlagKind
}

// App is the review TUI application. It implements tea.Model.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	docID  string
	bundle *domain.Bundle

	// mention and candidate track the current selection.
	mention   int
	candidate int

	// decisions caches the reviewer's own live decisions.
	decisions map[domain.DecisionKey]domain.DecisionKind

	// flags caches the set entity flags for the document.
	flags map[flagKey]bool

	status  string
	err     error
	loading bool

	showHelp bool
	width    int
	height   int
	ready    bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the review application for one document.
func NewApp(ports *Ports, docID string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating review app: %w", err)
	}
	return &App{
		ports:     ports,
		ctx:       context.Background(),
		styles:    styles.DefaultStyles(),
		keys:      keymap.DefaultKeyMap(),
		docID:     docID,
		decisions: make(map[domain.DecisionKey]domain.DecisionKind),
		flags:     make(map[flagKey]bool),
		loading:   true,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) {
	if ctx != nil {
		a.ctx = ctx
	}
}

// Init loads the bundle.
func (a *App) Init() tea.Cmd {
	return a.loadBundle()
}

func (a *App) loadBundle() tea.Cmd {
	return func() tea.Msg {
		b, err := a.ports.Bundles.Get(a.ctx, a.docID)
		return messages.BundleLoaded{Bundle: b, Err: err}
	}
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.BundleLoaded:
		a.loading = false
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.bundle = msg.Bundle
		a.err = nil
		a.reloadState()
		return a, nil

	case messages.DecisionRecorded:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.err = nil
		if msg.Cleared {
			delete(a.decisions, msg.Key)
			a.status = fmt.Sprintf("withdrew %s on %s", msg.Kind, msg.Key.RecordKey)
		} else {
			a.decisions[msg.Key] = msg.Kind
			a.status = fmt.Sprintf("%s %s", msg.Kind, msg.Key.RecordKey)
		}
		return a, a.syncTick()

	case messages.FlagToggled:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.err = nil
		a.flags[flagKey{person: msg.Person, kind: msg.Kind}] = msg.Set
		if msg.Set {
			a.status = fmt.Sprintf("marked %s as %s", msg.Person, msg.Kind)
		} else {
			a.status = fmt.Sprintf("cleared %s on %s", msg.Kind, msg.Person)
		}
		return a, nil

	case messages.PullCompleted:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.err = nil
		keys, mentions := a.ports.Review.Conflicts(a.docID)
		if len(keys) > 0 {
			a.status = fmt.Sprintf("pulled; %d conflicts across %d mentions", len(keys), mentions)
		} else {
			a.status = "pulled community decisions"
		}
		return a, nil

	case messages.SyncTick:
		if a.anyPending() {
			return a, a.syncTick()
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = !a.showHelp

	case key.Matches(msg, a.keys.Up):
		if a.mention > 0 {
			a.mention--
			a.candidate = 0
		}

	case key.Matches(msg, a.keys.Down):
		if a.bundle != nil && a.mention < len(a.bundle.Links)-1 {
			a.mention++
			a.candidate = 0
		}

	case key.Matches(msg, a.keys.Prev):
		if a.candidate > 0 {
			a.candidate--
		}

	case key.Matches(msg, a.keys.Next):
		if link := a.currentLink(); link != nil && a.candidate < len(link.Candidates)-1 {
			a.candidate++
		}

	case key.Matches(msg, a.keys.Accept):
		return a, a.decide(domain.DecisionAccept)

	case key.Matches(msg, a.keys.Reject):
		return a, a.decide(domain.DecisionReject)

	case key.Matches(msg, a.keys.Uncertain):
		return a, a.decide(domain.DecisionFlag)

	case key.Matches(msg, a.keys.NotPerson):
		return a, a.toggleFlag(domain.FlagNotPerson)

	case key.Matches(msg, a.keys.WrongEra):
		return a, a.toggleFlag(domain.FlagWrongEra)

	case key.Matches(msg, a.keys.Duplicate):
		return a, a.toggleFlag(domain.FlagDuplicate)

	case key.Matches(msg, a.keys.Group):
		return a, a.toggleFlag(domain.FlagGroup)

	case key.Matches(msg, a.keys.Pull):
		a.status = "pulling community decisions..."
		return a, a.pull()
	}

	return a, nil
}

// reloadState rebuilds the decision and flag caches for the loaded bundle.
func (a *App) reloadState() {
	a.mention = 0
	a.candidate = 0
	a.decisions = make(map[domain.DecisionKey]domain.DecisionKind)
	a.flags = make(map[flagKey]bool)

	if a.bundle == nil {
		return
	}
	for i := range a.bundle.Links {
		link := &a.bundle.Links[i]
		for j := range link.Candidates {
			k := domain.DecisionKey{
				DocID:     a.docID,
				Person:    link.Mention.Name,
				RecordKey: link.Candidates[j].RecordID,
			}
			if d, err := a.ports.Review.MyDecision(a.ctx, k); err == nil && d != nil {
				a.decisions[k] = d.Kind
			}
		}
	}
	if set, err := a.ports.Review.Flags(a.ctx, a.docID); err == nil {
		for _, f := range set {
			a.flags[flagKey{person: f.Person, kind: f.Kind}] = true
		}
	}
}

func (a *App) currentLink() *domain.MentionLink {
	if a.bundle == nil || a.mention >= len(a.bundle.Links) {
		return nil
	}
	return &a.bundle.Links[a.mention]
}

func (a *App) currentKey() (domain.DecisionKey, bool) {
	link := a.currentLink()
	if link == nil || a.candidate >= len(link.Candidates) {
		return domain.DecisionKey{}, false
	}
	return domain.DecisionKey{
		DocID:     a.docID,
		Person:    link.Mention.Name,
		RecordKey: link.Candidates[a.candidate].RecordID,
	}, true
}

func (a *App) decide(kind domain.DecisionKind) tea.Cmd {
	k, ok := a.currentKey()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		outcome, err := a.ports.Review.Decide(a.ctx, k, kind, "")
		if err != nil {
			return messages.DecisionRecorded{Key: k, Kind: kind, Err: err}
		}
		return messages.DecisionRecorded{Key: outcome.Key, Kind: kind, Cleared: outcome.Cleared}
	}
}

func (a *App) toggleFlag(kind domain.EntityFlagKind) tea.Cmd {
	link := a.currentLink()
	if link == nil {
		return nil
	}
	person := link.Mention.Name
	return func() tea.Msg {
		set, err := a.ports.Review.ToggleFlag(a.ctx, a.docID, person, kind)
		return messages.FlagToggled{Person: person, Kind: kind, Set: set, Err: err}
	}
}

func (a *App) pull() tea.Cmd {
	return func() tea.Msg {
		err := a.ports.Review.Refresh(a.ctx, a.docID)
		return messages.PullCompleted{DocID: a.docID, Err: err}
	}
}

func (a *App) syncTick() tea.Cmd {
	return tea.Tick(syncTickInterval, func(time.Time) tea.Msg {
		return messages.SyncTick{}
	})
}

// anyPending reports whether a push for the current document is in flight.
func (a *App) anyPending() bool {
	for k := range a.decisions {
		if a.ports.Review.PushStatus(k).State == domain.SyncPending {
			return true
		}
	}
	return false
}

// View renders the screen.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.loading {
		return a.styles.Muted.Render("Loading bundle...")
	}
	if a.bundle == nil {
		if a.err != nil {
			return a.styles.Reject.Render(fmt.Sprintf("Error: %v", a.err))
		}
		return a.styles.Muted.Render("No bundle loaded.")
	}

	var b strings.Builder
	counts := a.bundle.Count()
	b.WriteString(a.styles.Title.Render(a.bundle.DocID))
	b.WriteString(a.styles.Muted.Render(fmt.Sprintf("  %d mentions, %d high, %d medium, %d low",
		len(a.bundle.Links), counts.High, counts.Medium, counts.Low)))
	b.WriteString("\n\n")

	left := a.renderMentions()
	right := a.renderCandidates()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		a.styles.Pane.Render(left),
		a.styles.Pane.Render(right)))
	b.WriteString("\n")

	if a.err != nil {
		b.WriteString(a.styles.Reject.Render(fmt.Sprintf("Error: %v", a.err)))
		b.WriteString("\n")
	} else if a.status != "" {
		b.WriteString(a.styles.StatusBar.Render(a.status))
		b.WriteString("\n")
	}

	if a.showHelp {
		b.WriteString(a.styles.Help.Render(helpText))
	} else {
		b.WriteString(a.styles.Help.Render("a accept  r reject  u uncertain  p pull  ? help  q quit"))
	}
	return b.String()
}

const helpText = `↑/k ↓/j  move between mentions      ←/h →/l  move between candidates
a/r/u    toggle accept/reject/uncertain on the candidate
x/e/d/g  toggle not_person / wrong_era / duplicate / group on the mention
p        pull community decisions    q  quit`

func (a *App) renderMentions() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Mentions"))
	b.WriteString("\n")
	for i := range a.bundle.Links {
		link := &a.bundle.Links[i]
		line := fmt.Sprintf("%-25s %s", truncate(link.Mention.Name, 25), link.Status)
		if marks := a.flagMarks(link.Mention.Name); marks != "" {
			line += " " + marks
		}
		if i == a.mention {
			b.WriteString(a.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(a.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderCandidates() string {
	link := a.currentLink()
	if link == nil {
		return a.styles.Muted.Render("No mention selected.")
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Candidates for " + link.Mention.Name))
	b.WriteString("\n")
	if len(link.Candidates) == 0 {
		b.WriteString(a.styles.Muted.Render("No candidates."))
		return b.String()
	}

	for j := range link.Candidates {
		c := &link.Candidates[j]
		k := domain.DecisionKey{DocID: a.docID, Person: link.Mention.Name, RecordKey: c.RecordID}

		line := fmt.Sprintf("%-30s %.2f %-7s", truncate(c.Label, 30), c.Score, c.Tier)
		line += " " + a.decisionMark(k)
		tally := a.ports.Review.Tally(k)
		if !tally.Empty() {
			line += fmt.Sprintf("  [%d+/%d-]", tally.Accepts, tally.Rejects)
			if tally.Conflict() {
				line += " !"
			}
		}

		if j == a.candidate {
			b.WriteString(a.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(a.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if link.Candidates[a.candidate].Evidence != "" {
		b.WriteString("\n")
		b.WriteString(a.styles.Muted.Render(link.Candidates[a.candidate].Evidence))
	}
	return b.String()
}

// decisionMark renders the reviewer's own decision and its sync state.
func (a *App) decisionMark(k domain.DecisionKey) string {
	kind, ok := a.decisions[k]
	if !ok {
		return " "
	}

	var mark string
	switch kind {
	case domain.DecisionAccept:
		mark = a.styles.Accept.Render("✓")
	case domain.DecisionReject:
		mark = a.styles.Reject.Render("✗")
	case domain.DecisionFlag:
		mark = a.styles.Uncertain.Render("?")
	}

	switch a.ports.Review.PushStatus(k).State {
	case domain.SyncPending:
		mark += a.styles.Uncertain.Render("…")
	case domain.SyncError:
		mark += a.styles.Reject.Render("⚠")
	default:
		mark += " "
	}
	return mark
}

func (a *App) flagMarks(person string) string {
	glyphs := []struct {
		kind  domain.EntityFlagKind
		glyph string
	}{
		{domain.FlagNotPerson, "x"},
		{domain.FlagWrongEra, "e"},
		{domain.FlagDuplicate, "d"},
		{domain.FlagGroup, "g"},
	}
	var out string
	for _, g := range glyphs {
		if a.flags[flagKey{person: person, kind: g.kind}] {
			out += g.glyph
		}
	}
	if out != "" {
		out = "[" + out + "]"
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
