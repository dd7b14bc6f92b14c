package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/example/courtdesk/internal/application"
	"github.com/example/courtdesk/internal/views"
)

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{m.header()}

	switch {
	case m.route == application.PathLogin:
		sections = append(sections, m.login.view())
	case m.waiting:
		sections = append(sections, m.spinner.View()+" Checking session...")
	case !m.anyLoaded():
		sections = append(sections, m.spinner.View()+" Loading...")
	default:
		sections = append(sections, m.body())
	}

	sections = append(sections, m.footer())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) header() string {
	tabs := make([]string, 0, len(routes))
	for _, r := range routes {
		label := r.key + " " + r.title
		if r.path == m.route {
			tabs = append(tabs, activeTabStyle.Render(label))
			continue
		}
		tabs = append(tabs, tabStyle.Render(label))
	}

	who := mutedStyle.Render("not signed in")
	if m.session.Identity != nil {
		who = successStyle.Render(m.session.Identity.DisplayName())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("courtdesk")+"  ",
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"  "+who,
	) + "\n"
}

func (m Model) footer() string {
	lines := make([]string, 0, 3)
	if m.searching || m.search.Value() != "" {
		lines = append(lines, m.search.View())
	}
	if m.status != "" {
		if m.statusErr {
			lines = append(lines, errorStyle.Render(m.status))
		} else {
			lines = append(lines, successStyle.Render(m.status))
		}
	}
	if m.route != application.PathLogin {
		lines = append(lines, helpStyle.Render("1-5 views • ↑/↓ select • / search • r refresh • g regenerate • L sign out • q quit"))
	}
	return "\n" + strings.Join(lines, "\n")
}

func (m Model) anyLoaded() bool {
	for _, status := range m.snapshot.Status {
		if status.Loaded {
			return true
		}
	}
	return false
}

func (m Model) body() string {
	var out string
	switch m.route {
	case application.PathCases:
		out = m.casesView()
	case application.PathJudges:
		out = m.judgesView()
	case application.PathLawyers:
		out = m.lawyersView()
	case application.PathSchedules:
		out = m.schedulesView()
	default:
		out = m.dashboardView()
	}
	return out + m.errorsView()
}

// visibleRows is the length of the list the cursor moves over.
func (m Model) visibleRows() int {
	term := m.search.Value()
	switch m.route {
	case application.PathCases:
		return len(views.FilterCases(m.snapshot.Cases, term, ""))
	case application.PathJudges:
		return len(views.FilterJudges(m.snapshot.Judges, term))
	case application.PathLawyers:
		return len(views.FilterLawyers(m.snapshot.Lawyers, term))
	case application.PathSchedules:
		return len(m.snapshot.Schedules)
	}
	return 0
}

func (m Model) dashboardView() string {
	d := m.dashboard
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total cases", d.Stats.TotalCases),
		card("Judges", d.Stats.TotalJudges),
		card("Scheduled today", d.Stats.ScheduledToday),
		card("Pending", d.Stats.PendingCases),
	)

	peak := 0
	for _, b := range d.Trend {
		peak = max(peak, b.Count)
	}
	trend := make([]string, 0, len(d.Trend))
	for _, b := range d.Trend {
		width := 0
		if peak > 0 {
			width = b.Count * 30 / peak
		}
		trend = append(trend, fmt.Sprintf("%s %s %d", mutedStyle.Render(b.Day), barStyle.Render(strings.Repeat("█", width)), b.Count))
	}

	recent := make([][]string, 0, len(d.RecentSchedules))
	for _, e := range d.RecentSchedules {
		recent = append(recent, []string{e.CaseLabel, judgeName(m.snapshot.Judges, e.Schedule.Judge), e.Schedule.StartTime.String(), e.Schedule.Room})
	}
	pending := make([][]string, 0, len(d.PendingCases))
	for _, c := range d.PendingCases {
		pending = append(pending, []string{c.CaseNumber, c.CaseType, c.FiledIn.String(), formatFloat(c.Urgency)})
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		cards,
		sectionStyle.Render("Cases filed"),
		strings.Join(trend, "\n"),
		sectionStyle.Render("Recent hearings"),
		renderTable("No hearings scheduled.", []string{"Case", "Judge", "Start", "Room"}, recent, -1),
		sectionStyle.Render("Pending cases"),
		renderTable("No pending cases.", []string{"Number", "Type", "Filed", "Urgency"}, pending, -1),
	)
}

func card(label string, value int) string {
	return cardStyle.Render(cardValueStyle.Render(strconv.Itoa(value)) + "\n" + mutedStyle.Render(label))
}

func (m Model) casesView() string {
	cases := views.FilterCases(m.snapshot.Cases, m.search.Value(), "")
	rows := make([][]string, 0, len(cases))
	for _, c := range cases {
		rows = append(rows, []string{
			c.CaseNumber,
			c.CaseType,
			c.FiledIn.String(),
			formatFloat(c.Urgency),
			m.dashboard.JudgeNames[c.ID],
			strconv.Itoa(len(c.Lawyers)),
			yesNo(c.IsResolved),
		})
	}
	return renderTable("No cases match.", []string{"Number", "Type", "Filed", "Urgency", "Judge", "Lawyers", "Resolved"}, rows, m.selected)
}

func (m Model) judgesView() string {
	judges := views.FilterJudges(m.snapshot.Judges, m.search.Value())
	rows := make([][]string, 0, len(judges))
	for _, j := range judges {
		rows = append(rows, []string{j.Name, j.Court, j.Specialization, strconv.Itoa(j.ExperienceYears)})
	}
	list := renderTable("No judges match.", []string{"Name", "Court", "Specialization", "Years"}, rows, m.selected)
	if len(judges) == 0 {
		return list
	}

	judge := judges[min(m.selected, len(judges)-1)]
	entries := views.JudgeSchedule(judge.ID, m.snapshot.Schedules, m.snapshot.Cases)
	hearings := make([][]string, 0, len(entries))
	for _, e := range entries {
		hearings = append(hearings, []string{e.CaseLabel, e.Schedule.StartTime.String(), e.Schedule.EndTime.String(), e.Schedule.Room})
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		list,
		sectionStyle.Render("Hearings for "+judge.Name),
		renderTable("No hearings.", []string{"Case", "Start", "End", "Room"}, hearings, -1),
	)
}

func (m Model) lawyersView() string {
	lawyers := views.FilterLawyers(m.snapshot.Lawyers, m.search.Value())
	rows := make([][]string, 0, len(lawyers))
	for _, l := range lawyers {
		rows = append(rows, []string{
			l.Name,
			l.Specialization,
			string(l.HourlyRate),
			fmt.Sprintf("%d/%d", m.dashboard.LawyerCaseCount[l.ID], l.MaxCases),
		})
	}
	list := renderTable("No lawyers match.", []string{"Name", "Specialization", "Rate", "Cases"}, rows, m.selected)
	if len(lawyers) == 0 {
		return list
	}

	lawyer := lawyers[min(m.selected, len(lawyers)-1)]
	cases := views.LawyerCases(lawyer.ID, m.snapshot.Cases)
	caseRows := make([][]string, 0, len(cases))
	for _, c := range cases {
		caseRows = append(caseRows, []string{c.CaseNumber, c.CaseType, c.FiledIn.String(), yesNo(c.IsResolved)})
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		list,
		sectionStyle.Render("Cases for "+lawyer.Name),
		renderTable("No cases.", []string{"Number", "Type", "Filed", "Resolved"}, caseRows, -1),
	)
}

func (m Model) schedulesView() string {
	entries := views.RecentSchedules(m.snapshot.Schedules, m.snapshot.Cases, 0)
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.CaseLabel,
			judgeName(m.snapshot.Judges, e.Schedule.Judge),
			e.Schedule.StartTime.String(),
			e.Schedule.EndTime.String(),
			e.Schedule.Room,
			strconv.Itoa(e.Schedule.Version),
		})
	}
	return renderTable("No hearings scheduled.", []string{"Case", "Judge", "Start", "End", "Room", "Version"}, rows, m.selected)
}

func (m Model) errorsView() string {
	if len(m.dashboard.Errors) == 0 {
		return ""
	}
	names := make([]string, 0, len(m.dashboard.Errors))
	for name := range m.dashboard.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := []string{""}
	for _, name := range names {
		line := fmt.Sprintf("%s could not be refreshed (%s); showing the last copy", name, application.ErrorKind(m.dashboard.Errors[name]))
		lines = append(lines, warningStyle.Render(line))
	}
	return strings.Join(lines, "\n")
}

// renderTable draws rows with the row at selected highlighted; -1 highlights none.
func renderTable(empty string, headers []string, rows [][]string, selected int) string {
	if len(rows) == 0 {
		return mutedStyle.Render(empty)
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBorder))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case row == selected:
				return tableRowStyle
			default:
				return tableCellStyle
			}
		}).
		Render()
}

func judgeName(judges []application.Judge, id application.ID) string {
	for _, j := range judges {
		if j.ID == id {
			return j.Name
		}
	}
	if id.IsZero() {
		return ""
	}
	return views.UnknownJudgeLabel
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
