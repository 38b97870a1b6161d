package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flowboard/pkg/anchor"
	"github.com/matzehuels/flowboard/pkg/route"
	"github.com/matzehuels/flowboard/pkg/session"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listDragStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

// =============================================================================
// AnchorEditorModel - Interactive edge endpoint editing
// =============================================================================

// AnchorEditorModel is the bubbletea model for moving edge endpoints
// between anchor points. Stepping an endpoint runs a drag on the session:
// the first step begins it, every step updates it and enter ends it.
type AnchorEditorModel struct {
	ctx    context.Context
	sess   *session.Session
	routes []route.Route

	Cursor int
	End    session.End
	Height int
	Offset int

	Committed int
	status    string
	err       error
}

// NewAnchorEditorModel creates an editor over the visible edges of s.
func NewAnchorEditorModel(ctx context.Context, s *session.Session) AnchorEditorModel {
	return AnchorEditorModel{
		ctx:    ctx,
		sess:   s,
		routes: s.Scene().Routes,
		End:    session.EndTo,
		Height: 15,
	}
}

func (m AnchorEditorModel) Init() tea.Cmd {
	return nil
}

func (m AnchorEditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// There is no cancel: a drag in flight is committed on exit.
			if m.sess.Dragging() {
				m.commit()
			}
			return m, tea.Quit
		case "up", "k":
			if !m.sess.Dragging() && m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if !m.sess.Dragging() && m.Cursor < len(m.routes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "tab":
			if !m.sess.Dragging() {
				if m.End == session.EndTo {
					m.End = session.EndFrom
				} else {
					m.End = session.EndTo
				}
			}
		case "left", "h":
			m.step(-1)
		case "right", "l":
			m.step(1)
		case "enter", " ":
			if m.sess.Dragging() {
				m.commit()
			}
		case "f":
			if !m.sess.Dragging() {
				n := m.sess.Freeze(m.ctx)
				m.routes = m.sess.Scene().Routes
				m.status = fmt.Sprintf("froze %d edges", n)
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// step moves the selected endpoint dir places around the 16 anchors of its
// node, beginning a drag if none is active.
func (m *AnchorEditorModel) step(dir int) {
	if len(m.routes) == 0 {
		return
	}
	rt := m.routes[m.Cursor]
	if !m.sess.Dragging() {
		if err := m.sess.BeginAnchorDrag(m.ctx, rt.Index, m.End); err != nil {
			m.err = err
			return
		}
		// Begin may have frozen resolved sides into the override table.
		rt.Sides = m.sess.Overrides()[rt.Key]
	}

	node, cur := rt.To, rt.Sides.To
	if m.End == session.EndFrom {
		node, cur = rt.From, rt.Sides.From
	}
	rect, ok := m.sess.Geometry()[node]
	if !ok {
		return
	}

	// Bare sides resolve onto a canonical anchor, which gives the start index.
	all := anchor.All(rect)
	at := anchor.Nearest(rect, anchor.Resolve(rect, cur)).Anchor
	idx := 0
	for i, h := range all {
		if h.Anchor == at {
			idx = i
			break
		}
	}
	next := all[(idx+dir+len(all))%len(all)]

	scene, err := m.sess.UpdateAnchorDrag(next.Pos)
	if err != nil {
		m.err = err
		return
	}
	m.routes = scene.Routes
	m.status = fmt.Sprintf("%s end → %s", m.End, next.Anchor)
}

func (m *AnchorEditorModel) commit() {
	sides, err := m.sess.EndAnchorDrag(m.ctx)
	if err != nil {
		m.err = err
		return
	}
	m.Committed++
	m.routes = m.sess.Scene().Routes
	m.status = fmt.Sprintf("saved %s → %s", sides.From, sides.To)
}

func (m AnchorEditorModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Edge Anchors · " + m.sess.Name()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ edge  tab from/to  ←/→ move anchor  ⏎ save  f freeze  q quit"))
	b.WriteString("\n\n")

	if len(m.routes) == 0 {
		b.WriteString(listDimStyle.Render("  no visible edges"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.routes) {
		end = len(m.routes)
	}
	dragIdx, _, dragging := m.sess.DragTarget()

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		rt := m.routes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		from, to := rt.Sides.From.String(), rt.Sides.To.String()
		if i == m.Cursor {
			if m.End == session.EndFrom {
				from = "[" + from + "]"
			} else {
				to = "[" + to + "]"
			}
		}
		label := rt.Label
		if label == "" {
			label = "—"
		}
		rows = append(rows, []string{cursor, rt.From + " → " + rt.To, from, to, label})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Edge", "From", "To", "Label").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.routes) {
				return lipgloss.NewStyle()
			}
			switch {
			case dragging && m.routes[idx].Index == dragIdx:
				return listDragStyle
			case idx == m.Cursor:
				return listSelectedStyle
			case col == 4:
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.routes))))
	if m.status != "" {
		b.WriteString("  " + StyleHighlight.Render(m.status))
	}
	if m.err != nil {
		b.WriteString("  " + styleIconError.Render(iconError+" "+m.err.Error()))
	}
	b.WriteString("\n")
	return b.String()
}
