package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/herald/internal/core/notify"
	"github.com/colonyops/herald/internal/core/permission"
	"github.com/colonyops/herald/internal/core/styles"
)

const maxBadge = 99

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{m.renderHeader()}

	if m.toast != nil {
		sections = append(sections, m.renderToast())
	}
	if m.confirm != nil {
		sections = append(sections, m.renderConfirm())
	}

	switch m.view {
	case viewDropdown:
		sections = append(sections, m.renderDropdown())
	case viewDetail:
		sections = append(sections, styles.DropdownStyle.Render(m.detail.View()))
	}

	if line := m.renderStatus(); line != "" {
		sections = append(sections, line)
	}

	if m.confirm != nil {
		sections = append(sections, m.help.View(confirmKeys{m.keys}))
	} else {
		sections = append(sections, m.help.View(m.keys))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Badge formats the unread counter; zero renders nothing.
func Badge(unread int) string {
	switch {
	case unread <= 0:
		return ""
	case unread > maxBadge:
		return fmt.Sprintf("%d+", maxBadge)
	default:
		return fmt.Sprintf("%d", unread)
	}
}

func (m Model) renderHeader() string {
	left := styles.HeaderStyle.Render(m.title)
	if m.state == permission.Unsupported {
		return left
	}

	icon := styles.IconBell
	if m.state != permission.Granted {
		icon = styles.IconBellSlash
	}
	bell := styles.BellStyle.Render(icon)
	if badge := Badge(m.snapshot.Unread); badge != "" {
		bell += " " + styles.BadgeStyle.Render(badge)
	}

	right := bell

	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderToast() string {
	t := m.toast
	body := styles.ToastTitleStyle.Render(t.Title)
	if t.Body != "" {
		body += "\n" + t.Body
	}
	return styles.ToastStyle.Render(body)
}

func (m Model) renderConfirm() string {
	return styles.ToastStyle.Render(
		styles.ToastTitleStyle.Render("Allow notifications?") + "\n" +
			styles.MutedStyle.Render("Notifications appear here and as desktop alerts."),
	)
}

func (m Model) renderDropdown() string {
	records := m.snapshot.Records
	if len(records) == 0 {
		return styles.DropdownStyle.Render(styles.MutedStyle.Render("No notifications"))
	}

	width := max(30, min(m.width-4, 72))
	end := min(len(records), m.offset+dropdownRows)

	var b strings.Builder
	for i := m.offset; i < end; i++ {
		if i > m.offset {
			b.WriteByte('\n')
		}
		b.WriteString(renderItem(records[i], i == m.cursor, width, time.Now()))
	}
	if len(records) > dropdownRows {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%d-%d of %d", m.offset+1, end, len(records))))
	}
	return styles.DropdownStyle.Render(b.String())
}

func renderItem(r notify.Record, selected bool, width int, now time.Time) string {
	icon := styles.IconUnread
	titleStyle := styles.ItemTitleStyle
	if r.Read {
		icon = styles.IconRead
		titleStyle = styles.ItemReadStyle
	}

	meta := styles.ItemMetaStyle.Render(relativeTime(r.Timestamp, now))
	title := truncate(r.Title, width-lipgloss.Width(meta)-4)
	line := fmt.Sprintf("%s %s  %s", icon, titleStyle.Render(title), meta)
	body := "  " + styles.MutedStyle.Render(truncate(r.Body, width-2))

	out := line + "\n" + body
	if selected {
		return styles.ItemSelectedStyle.Render(out)
	}
	return out
}

func (m Model) renderStatus() string {
	if m.status.Message == "" {
		if msg := m.state.StatusMessage(); msg != "" && m.state != permission.Granted {
			return styles.WarningStyle.Render(msg)
		}
		return ""
	}
	return styles.ForLevel(string(m.status.Level)).Render(m.status.Message)
}

// renderDetail renders a record as markdown.
func renderDetail(r notify.Record, width int) string {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n%s\n", r.Title, r.Body)
	if r.URL != "" {
		fmt.Fprintf(&md, "\n%s %s\n", styles.IconLink, r.URL)
	}
	if len(r.Actions) > 0 {
		md.WriteString("\n")
		for _, a := range r.Actions {
			fmt.Fprintf(&md, "- **%s** (`%s`)\n", a.Title, a.Action)
		}
	}
	if !r.Timestamp.IsZero() {
		fmt.Fprintf(&md, "\n_%s_\n", r.Timestamp.Local().Format(time.RFC1123))
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(max(20, width)),
	)
	if err != nil {
		log.Debug().Err(err).Msg("glamour renderer unavailable")
		return md.String()
	}
	out, err := renderer.Render(md.String())
	if err != nil {
		log.Debug().Err(err).Msg("render notification detail")
		return md.String()
	}
	return out
}

func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Local().Format("Jan 2")
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 1 || lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) > n-1 {
		r = r[:n-1]
	}
	return string(r) + "…"
}
