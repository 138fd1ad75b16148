package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PickerItem is one selectable entry, such as a discovered server.
type PickerItem struct {
	Name   string
	Detail string
	Value  string
}

// FilterValue implements list.Item
func (i PickerItem) FilterValue() string { return i.Name + " " + i.Detail }

// Title implements list.DefaultItem
func (i PickerItem) Title() string { return i.Name }

// Description implements list.DefaultItem
func (i PickerItem) Description() string { return i.Detail }

// ScanFunc produces the items shown by a Picker.
type ScanFunc func(ctx context.Context) ([]PickerItem, error)

type scanStartMsg struct{}

type scanDoneMsg struct {
	items []PickerItem
	err   error
}

type pickerKeyMap struct {
	Enter  key.Binding
	Rescan key.Binding
	Quit   key.Binding
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Rescan, k.Quit}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Enter, k.Rescan, k.Quit}}
}

var pickerKeys = pickerKeyMap{
	Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// PickerModel scans with a spinner, then lets the user choose one item.
type PickerModel struct {
	ctx      context.Context
	title    string
	scan     ScanFunc
	scanning bool
	err      error
	spinner  spinner.Model
	list     list.Model
	help     help.Model
	selected *PickerItem
	width    int
}

// NewPickerModel creates a picker titled title that fills itself with scan.
func NewPickerModel(ctx context.Context, title string, scan ScanFunc) PickerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(Accent)

	width, height := terminalSize()
	l := list.New(nil, list.NewDefaultDelegate(), width, max(height-6, 10))
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	return PickerModel{
		ctx:     ctx,
		title:   title,
		scan:    scan,
		spinner: s,
		list:    l,
		help:    help.New(),
		width:   width,
	}
}

// Init implements tea.Model
func (m PickerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return scanStartMsg{} })
}

func (m PickerModel) runScan() tea.Cmd {
	return func() tea.Msg {
		items, err := m.scan(m.ctx)
		return scanDoneMsg{items: items, err: err}
	}
}

// Update implements tea.Model
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case scanStartMsg:
		m.scanning = true
		m.err = nil
		return m, m.runScan()

	case scanDoneMsg:
		m.scanning = false
		m.err = msg.err
		items := make([]list.Item, len(msg.items))
		for i, it := range msg.items {
			items[i] = it
		}
		return m, m.list.SetItems(items)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = fitWidth(msg.Width)
		m.list.SetSize(m.width, max(msg.Height-6, 10))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, pickerKeys.Quit):
			return m, tea.Quit
		case m.scanning:
			return m, nil
		case key.Matches(msg, pickerKeys.Rescan):
			return m, func() tea.Msg { return scanStartMsg{} }
		case key.Matches(msg, pickerKeys.Enter):
			if it, ok := m.list.SelectedItem().(PickerItem); ok {
				m.selected = &it
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m PickerModel) View() string {
	if m.scanning {
		return fmt.Sprintf("\n  %s Scanning for %s...\n\n  %s\n",
			m.spinner.View(), m.title, m.help.View(pickerKeyMap{Quit: pickerKeys.Quit}))
	}
	if m.err != nil {
		return NewFailureResult("Scan failed", m.err, nil).SetWidth(m.width).Render() + "\n\n  " + m.help.View(pickerKeys)
	}
	if len(m.list.Items()) == 0 {
		return NewWarningResult("Nothing found").SetWidth(m.width).Render() + "\n\n  " + m.help.View(pickerKeys)
	}
	return m.list.View() + "\n  " + m.help.View(pickerKeys)
}

// Selected returns the chosen item, or nil if the user quit.
func (m PickerModel) Selected() *PickerItem {
	return m.selected
}

// Pick runs the picker on the terminal and returns the chosen item.
func Pick(ctx context.Context, title string, scan ScanFunc) (*PickerItem, error) {
	final, err := tea.NewProgram(NewPickerModel(ctx, title, scan), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}
	return final.(PickerModel).Selected(), nil
}
