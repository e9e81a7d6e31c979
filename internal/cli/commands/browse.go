package commands

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/covidlens/internal/cli/output"
	"github.com/leapstack-labs/covidlens/internal/dashboard"
	"github.com/leapstack-labs/covidlens/internal/engine"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the dashboard views interactively",
		Long: `Run the pipeline once and browse every dashboard view in a terminal UI.

The sidebar lists the views; the pane on the right renders the selected view
for the current selection.

Keys:
  up/down, j/k   Move through the views
  a              Toggle between the default regions and every region
  tab            Switch focus between the sidebar and the view pane
  q, ctrl+c      Quit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd)
		},
	}
}

func runBrowse(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if !cmdCtx.Renderer.IsTTY() {
		return fmt.Errorf("browse needs an interactive terminal; use 'covidlens view <kind>' instead")
	}

	res, err := cmdCtx.runPipeline(cmd.Context())
	if err != nil {
		return err
	}

	m := newBrowseModel(res, dashboard.DefaultSelection(res, cmdCtx.Cfg.Dashboard), cmdCtx.Cfg.DosesMetric())
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err = p.Run()
	return err
}

// viewItem is a sidebar entry.
type viewItem struct {
	kind dashboard.ViewKind
}

func (i viewItem) Title() string       { return i.kind.Title() }
func (i viewItem) Description() string { return string(i.kind) }
func (i viewItem) FilterValue() string { return string(i.kind) }

const sidebarWidth = 34

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}).
			Padding(0, 1)
	focusedPaneStyle = paneStyle.
				BorderForeground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5FAFFF"})
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"})
)

// browseModel is the bubbletea model of the browse command.
type browseModel struct {
	res         *engine.Result
	defaults    dashboard.Selection
	dosesMetric string
	allRegions  bool

	views     list.Model
	pane      viewport.Model
	paneFocus bool
	current   dashboard.ViewKind
	ready     bool
}

func newBrowseModel(res *engine.Result, sel dashboard.Selection, dosesMetric string) *browseModel {
	kinds := dashboard.Kinds()
	items := make([]list.Item, len(kinds))
	for i, k := range kinds {
		items[i] = viewItem{kind: k}
	}

	views := list.New(items, list.NewDefaultDelegate(), sidebarWidth, 20)
	views.Title = "Views"
	views.SetShowHelp(false)
	views.SetFilteringEnabled(false)
	views.SetShowStatusBar(false)

	return &browseModel{
		res:         res,
		defaults:    sel,
		dosesMetric: dosesMetric,
		views:       views,
		pane:        viewport.New(80, 20),
	}
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.ready = true
		m.refresh(true)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.paneFocus = !m.paneFocus
			return m, nil
		case "a":
			m.allRegions = !m.allRegions
			m.refresh(true)
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.paneFocus {
		m.pane, cmd = m.pane.Update(msg)
		return m, cmd
	}
	m.views, cmd = m.views.Update(msg)
	m.refresh(false)
	return m, cmd
}

func (m *browseModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	left, right := paneStyle, focusedPaneStyle
	if !m.paneFocus {
		left, right = focusedPaneStyle, paneStyle
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		left.Render(m.views.View()),
		right.Render(m.pane.View()),
	)
	return lipgloss.JoinVertical(lipgloss.Left, body, footerStyle.Render(m.footer()))
}

func (m *browseModel) footer() string {
	regions := "default regions"
	if m.allRegions {
		regions = "all regions"
	}
	return fmt.Sprintf(" %s | %s | tab: switch pane | a: toggle regions | q: quit", m.current.Title(), regions)
}

func (m *browseModel) resize(width, height int) {
	frameW, frameH := paneStyle.GetFrameSize()
	bodyH := max(height-frameH-1, 5)
	m.views.SetSize(sidebarWidth, bodyH)
	m.pane.Width = max(width-sidebarWidth-2*frameW, 20)
	m.pane.Height = bodyH
}

// refresh re-renders the pane when the highlighted view changed or force is set.
func (m *browseModel) refresh(force bool) {
	item, ok := m.views.SelectedItem().(viewItem)
	if !ok {
		return
	}
	if !force && item.kind == m.current {
		return
	}
	m.current = item.kind
	m.pane.SetContent(m.render(item.kind))
	m.pane.GotoTop()
}

func (m *browseModel) selection() dashboard.Selection {
	sel := m.defaults
	if m.allRegions {
		sel.Regions = append([]string(nil), m.res.Regions...)
	}
	return sel
}

// render draws one view as styled text sized for the pane.
func (m *browseModel) render(kind dashboard.ViewKind) string {
	v, err := dashboard.Render(kind, m.res, m.selection(), m.dosesMetric)
	if err != nil {
		return "Error: " + err.Error()
	}

	var buf bytes.Buffer
	r := output.NewRendererWithTTY(&buf, &buf, true, output.ModeText)
	if err := renderView(r, v); err != nil {
		return "Error: " + err.Error()
	}
	return strings.TrimRight(buf.String(), "\n")
}
