package tui

import (
	"fmt"
	"strings"

	"github.com/bananahana720/pocket-brain-sub000/models"
)

func (m mainLoopModel) View() string {
	switch m.captureStage {
	case captureStageKind:
		return m.viewCaptureKind()
	case captureStageForm:
		return m.viewCaptureForm()
	}

	if m.editing {
		return m.viewEdit()
	}

	if m.conflictsOpen {
		return m.viewConflicts()
	}

	if m.devicesOpen {
		return m.viewDevices()
	}

	if m.detail {
		note, ok := m.current()
		if !ok {
			return renderPage("NOTE", "note not found", "esc: back")
		}
		return m.viewDetail(note)
	}

	return m.viewList()
}

func (m mainLoopModel) viewList() string {
	out := m.statusLine() + "\n"

	if m.loading && len(m.items) == 0 {
		out += "\nloading notes...\n"
		return renderPage("POCKET BRAIN", strings.TrimRight(out, "\n"), m.listHotKeys())
	}

	if m.errMsg != "" {
		out += errorStyle.Render("Error: "+m.errMsg) + "\n"
	}
	if m.status != "" {
		out += "Status: " + m.status + "\n"
	}

	out += "\n"
	if len(m.items) == 0 {
		out += "no notes yet. Press a to capture one.\n"
	} else {
		out += "     │ Title                          │ Kind     │ Tags\n"
		out += "─────┼────────────────────────────────┼──────────┼────────────────\n"
		for i, note := range m.items {
			cursor := " "
			if i == m.idx {
				cursor = ">"
			}

			out += fmt.Sprintf(
				"%s %-3d│ %-30s │ %-8s │ %s\n",
				cursor,
				i+1,
				fitText(noteListTitle(note), 30),
				fitText(note.Kind, 8),
				orDash(fitText(strings.Join(note.Tags, ", "), 16)),
			)
		}
	}

	return renderPage("POCKET BRAIN", strings.TrimRight(out, "\n"), m.listHotKeys())
}

func (m mainLoopModel) listHotKeys() string {
	return "a: capture | s: sync | v: conflicts | d: devices | enter: open | e: edit | ctrl+d: delete | l: sign out | q: quit"
}

// statusLine is the always-visible sync badge: the engine status plus
// queue depth and conflict count when they matter.
func (m mainLoopModel) statusLine() string {
	badge := statusBadge(m.syncStatus)

	extra := ""
	if m.backpressure.PendingOps > 0 {
		extra += fmt.Sprintf("  pending: %d/%d", m.backpressure.PendingOps, m.backpressure.Cap)
	}
	if m.conflictN > 0 {
		extra += fmt.Sprintf("  conflicts: %d", m.conflictN)
	}

	return "Sync: " + badge + extra
}

func statusBadge(status models.SyncStatus) string {
	switch status {
	case models.StatusSynced:
		return badgeSyncedStyle.Render("synced")
	case models.StatusSyncing:
		return badgeSyncingStyle.Render("syncing")
	case models.StatusPolling:
		return badgeSyncingStyle.Render("polling")
	case models.StatusOffline:
		return badgeOfflineStyle.Render("offline")
	case models.StatusBlocked:
		return badgeProblemStyle.Render("queue blocked")
	case models.StatusConflict:
		return badgeProblemStyle.Render("needs attention")
	case models.StatusDegraded:
		return badgeProblemStyle.Render("degraded")
	case models.StatusDisabled:
		return badgeDisabledStyle.Render("off")
	default:
		return string(status)
	}
}

func (m mainLoopModel) viewCaptureKind() string {
	out := ""
	for i, kind := range m.captureKindOptions {
		cursor := " "
		if i == m.captureKindIdx {
			cursor = ">"
		}
		out += fmt.Sprintf("%s %d. %s\n", cursor, i+1, noteKindLabel(kind))
	}
	if m.captureErr != "" {
		out += "\n" + errorStyle.Render("Error: "+m.captureErr) + "\n"
	}

	return renderPage("CAPTURE: PICK A KIND", strings.TrimRight(out, "\n"), "1-4/enter: pick | up/down: move | esc: cancel")
}

func (m mainLoopModel) viewCaptureForm() string {
	out := "Kind     : " + noteKindLabel(m.captureKind) + "\n\n"
	out += "Title    : [ " + m.captureInputs[0].View() + " ]\n"
	out += "Tags     : [ " + m.captureInputs[1].View() + " ]\n"
	out += "Content:\n"
	out += m.captureArea.View() + "\n"

	if m.captureErr != "" {
		out += "\n" + errorStyle.Render("Error: "+m.captureErr) + "\n"
	}
	if m.captureSaving {
		out += "\nsaving...\n"
	}

	return renderPage("NEW NOTE", strings.TrimRight(out, "\n"), "tab: next field | ctrl+s: save | esc: cancel")
}

func (m mainLoopModel) viewEdit() string {
	out := "Title    : [ " + m.editInputs[0].View() + " ]\n"
	out += "Tags     : [ " + m.editInputs[1].View() + " ]\n"
	out += "Content:\n"
	out += m.editArea.View() + "\n"

	if m.errMsg != "" {
		out += "\n" + errorStyle.Render("Error: "+m.errMsg) + "\n"
	}
	if m.editSubmitting {
		out += "\nsaving...\n"
	}

	return renderPage("EDIT NOTE", strings.TrimRight(out, "\n"), "tab: next field | ctrl+s: save | esc: cancel")
}

func (m mainLoopModel) viewDetail(note models.Note) string {
	var b strings.Builder

	b.WriteString("Title    : " + note.Title + "\n")
	b.WriteString("Kind     : " + noteKindLabel(note.Kind) + "\n")
	b.WriteString("Tags     : " + orDash(strings.Join(note.Tags, ", ")) + "\n")
	b.WriteString(fmt.Sprintf("Version  : %d\n", note.Version))
	b.WriteString("Updated  : " + note.UpdatedAt.Local().Format("2006-01-02 15:04") + "\n")

	flags := noteFlags(note)
	if flags != "" {
		b.WriteString("Flags    : " + flags + "\n")
	}
	if note.DueDate != nil {
		b.WriteString("Due      : " + note.DueDate.Local().Format("2006-01-02") + "\n")
	}

	b.WriteString("\nContent:\n")
	if strings.TrimSpace(note.Content) != "" {
		b.WriteString(note.Content + "\n")
	} else {
		b.WriteString("(empty)\n")
	}

	return renderPage(
		"NOTE: "+fitText(note.Title, 40),
		strings.TrimRight(b.String(), "\n"),
		"e: edit | c: copy | ctrl+d: delete | esc: back",
	)
}

func (m mainLoopModel) viewConflicts() string {
	if len(m.conflicts) == 0 {
		return renderPage("CONFLICTS", "no conflicts. Everything merged cleanly.", "esc: back")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d conflict(s) need a decision\n\n", len(m.conflicts)))

	for i, conflict := range m.conflicts {
		cursor := " "
		if i == m.conflictIdx {
			cursor = ">"
		}

		b.WriteString(fmt.Sprintf(
			"%s %-3d│ %-30s │ fields: %s\n",
			cursor,
			i+1,
			fitText(noteListTitle(conflict.ServerNote), 30),
			orDash(strings.Join(conflict.ChangedFields, ", ")),
		))
	}

	if selected, ok := m.selectedConflict(); ok {
		b.WriteString("\nServer version " + fmt.Sprintf("%d", selected.CurrentVersion))
		b.WriteString(" vs your base " + fmt.Sprintf("%d", selected.BaseVersion) + "\n")
		b.WriteString("Server title : " + selected.ServerNote.Title + "\n")
		b.WriteString("Server text  : " + fitText(selected.ServerNote.Content, 60) + "\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.errMsg) + "\n")
	}
	if m.resolving {
		b.WriteString("\nresolving...\n")
	}

	return renderPage(
		"CONFLICTS",
		strings.TrimRight(b.String(), "\n"),
		"1: keep server | 2: keep mine | 3: dismiss | up/down: move | esc: back",
	)
}

func (m mainLoopModel) selectedConflict() (models.SyncConflict, bool) {
	if len(m.conflicts) == 0 || m.conflictIdx < 0 || m.conflictIdx >= len(m.conflicts) {
		return models.SyncConflict{}, false
	}
	return m.conflicts[m.conflictIdx], true
}

func (m mainLoopModel) viewDevices() string {
	if m.devicesLoading {
		return renderPage("DEVICES", "loading devices...", "esc: back")
	}

	var b strings.Builder
	if len(m.devices) == 0 {
		b.WriteString("no devices\n")
	} else {
		b.WriteString("     │ Label                │ Platform │ Last seen        │\n")
		b.WriteString("─────┼──────────────────────┼──────────┼──────────────────┤\n")
		for i, device := range m.devices {
			cursor := " "
			if i == m.deviceIdx {
				cursor = ">"
			}

			marker := ""
			if device.ID == m.currentDeviceID {
				marker = " (this device)"
			}

			b.WriteString(fmt.Sprintf(
				"%s %-3d│ %-20s │ %-8s │ %-16s │%s\n",
				cursor,
				i+1,
				fitText(orDash(device.Label), 20),
				fitText(orDash(device.Platform), 8),
				device.LastSeenAt.Local().Format("2006-01-02 15:04"),
				marker,
			))
		}
	}

	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.errMsg) + "\n")
	}
	if m.revoking {
		b.WriteString("\nrevoking...\n")
	}

	return renderPage(
		"DEVICES",
		strings.TrimRight(b.String(), "\n"),
		"ctrl+d: revoke | r: refresh | up/down: move | esc: back",
	)
}

func noteListTitle(note models.Note) string {
	title := note.Title
	if note.IsPinned {
		title = "* " + title
	}
	if note.IsCompleted {
		title = title + " [done]"
	}
	return title
}

func noteFlags(note models.Note) string {
	var flags []string
	if note.IsPinned {
		flags = append(flags, "pinned")
	}
	if note.IsCompleted {
		flags = append(flags, "completed")
	}
	if note.IsArchived {
		flags = append(flags, "archived")
	}
	if note.IsProcessed {
		flags = append(flags, "processed")
	}
	return strings.Join(flags, ", ")
}

func noteKindLabel(kind string) string {
	switch kind {
	case models.NoteKindCapture:
		return "Quick capture"
	case models.NoteKindTask:
		return "Task"
	case models.NoteKindIdea:
		return "Idea"
	case models.NoteKindRevision:
		return "Revision"
	default:
		return kind
	}
}
