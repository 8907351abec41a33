package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bananahana720/pocket-brain-sub000/internal/adapter"
	"github.com/bananahana720/pocket-brain-sub000/internal/engine"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

// statusRefreshInterval paces the background refresh of the note list and
// the sync badge. The engine mutates state from its own goroutines, so
// the TUI polls rather than subscribes.
const statusRefreshInterval = 2 * time.Second

type captureStage int

const (
	captureStageNone captureStage = iota
	captureStageKind
	captureStageForm
)

type mainLoopModel struct {
	ctx    context.Context
	engine *engine.SyncEngine
	server adapter.ServerAdapter

	items   []models.Note
	idx     int
	loading bool
	syncing bool
	status  string
	errMsg  string

	syncStatus   models.SyncStatus
	backpressure models.SyncBackpressure
	conflictN    int

	detail bool

	editing        bool
	editInputs     []textinput.Model
	editFocus      int
	editArea       textarea.Model
	editAreaFocus  bool
	editSubmitting bool
	editNote       models.Note

	captureStage       captureStage
	captureKindOptions []string
	captureKindIdx     int
	captureErr         string
	captureKind        string
	captureInputs      []textinput.Model
	captureFocus       int
	captureArea        textarea.Model
	captureAreaFocus   bool
	captureSaving      bool

	conflictsOpen bool
	conflicts     []models.SyncConflict
	conflictIdx   int
	resolving     bool

	devicesOpen     bool
	devices         []models.DeviceSession
	currentDeviceID string
	deviceIdx       int
	devicesLoading  bool
	revoking        bool

	logout bool
}

type notesLoadedMsg struct {
	items []models.Note
	err   error
}

type refreshTickMsg struct{}

type syncDoneMsg struct {
	err error
}

type deleteDoneMsg struct {
	err error
}

type saveDoneMsg struct {
	created bool
	err     error
}

type resolveDoneMsg struct {
	err error
}

type devicesLoadedMsg struct {
	resp models.DevicesResponse
	err  error
}

type revokeDoneMsg struct {
	resp models.RevokeDeviceResponse
	err  error
}

func newMainLoopModel(ctx context.Context, syncEngine *engine.SyncEngine, server adapter.ServerAdapter) mainLoopModel {
	return mainLoopModel{
		ctx:     ctx,
		engine:  syncEngine,
		server:  server,
		loading: true,
		captureKindOptions: []string{
			models.NoteKindCapture,
			models.NoteKindTask,
			models.NoteKindIdea,
			models.NoteKindRevision,
		},
	}
}

func (m mainLoopModel) Init() tea.Cmd {
	return tea.Batch(m.cmdLoadNotes(), m.cmdTick())
}

func (m mainLoopModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.items = msg.items
		if m.idx >= len(m.items) {
			m.idx = len(m.items) - 1
		}
		if m.idx < 0 {
			m.idx = 0
		}
		m.refreshEngineState()
		return m, nil

	case refreshTickMsg:
		m.refreshEngineState()
		return m, tea.Batch(m.cmdLoadNotes(), m.cmdTick())

	case syncDoneMsg:
		m.syncing = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.status = "sync finished"
		m.errMsg = ""
		return m, m.cmdLoadNotes()

	case deleteDoneMsg:
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.status = "note deleted"
		m.errMsg = ""
		m.loading = true
		return m, m.cmdLoadNotes()

	case saveDoneMsg:
		m.captureSaving = false
		m.editSubmitting = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			m.captureErr = m.errMsg
			return m, nil
		}
		if msg.created {
			m.status = "note captured"
			m.resetCaptureFlow()
		} else {
			m.status = "note updated"
			m.editing = false
		}
		m.errMsg = ""
		m.loading = true
		return m, m.cmdLoadNotes()

	case resolveDoneMsg:
		m.resolving = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.status = "conflict resolved"
		m.errMsg = ""
		m.refreshEngineState()
		if m.conflictIdx >= len(m.conflicts) {
			m.conflictIdx = len(m.conflicts) - 1
		}
		if m.conflictIdx < 0 {
			m.conflictIdx = 0
		}
		if len(m.conflicts) == 0 {
			m.conflictsOpen = false
		}
		return m, m.cmdLoadNotes()

	case devicesLoadedMsg:
		m.devicesLoading = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.devices = msg.resp.Devices
		m.currentDeviceID = msg.resp.CurrentDeviceID
		if m.deviceIdx >= len(m.devices) {
			m.deviceIdx = len(m.devices) - 1
		}
		if m.deviceIdx < 0 {
			m.deviceIdx = 0
		}
		return m, nil

	case revokeDoneMsg:
		m.revoking = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.status = "device revoked"
		m.errMsg = ""
		m.devicesLoading = true
		return m, m.cmdLoadDevices()
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.captureStage != captureStageNone {
			return m.updateCaptureFlow(msg)
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m, nil
	}

	if keyMsg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.captureStage != captureStageNone {
		return m.updateCaptureFlow(msg)
	}

	if m.editing {
		return m.updateEditing(msg)
	}

	if m.conflictsOpen {
		return m.updateConflicts(keyMsg)
	}

	if m.devicesOpen {
		return m.updateDevices(keyMsg)
	}

	if m.detail {
		note, ok := m.current()
		if !ok {
			m.detail = false
			return m, nil
		}

		switch keyMsg.String() {
		case "esc":
			m.detail = false
		case "e":
			m.detail = false
			m.startEdit(note)
			return m, nil
		case "ctrl+d":
			m.detail = false
			return m, m.cmdDelete(note.ID)
		case "c":
			text := note.Content
			if text == "" {
				text = note.Title
			}
			if err := clipboard.WriteAll(text); err != nil {
				m.errMsg = fmt.Sprintf("copy failed: %v", err)
				return m, nil
			}
			m.status = "copied"
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.idx > 0 {
			m.idx--
		}
	case "down", "j":
		if m.idx < len(m.items)-1 {
			m.idx++
		}
	case "a":
		m.startCaptureFlow()
		return m, nil
	case "s":
		if m.syncing {
			return m, nil
		}
		m.syncing = true
		m.status = "syncing..."
		m.errMsg = ""
		return m, m.cmdSync()
	case "v":
		m.refreshEngineState()
		m.conflictsOpen = true
		m.conflictIdx = 0
		return m, nil
	case "d":
		m.devicesOpen = true
		m.devicesLoading = true
		m.deviceIdx = 0
		return m, m.cmdLoadDevices()
	case "enter":
		if _, ok := m.current(); !ok {
			m.status = "no notes"
			return m, nil
		}
		m.detail = true
	case "e":
		note, ok := m.current()
		if !ok {
			m.status = "no notes"
			return m, nil
		}
		m.startEdit(note)
		return m, nil
	case "ctrl+d":
		note, ok := m.current()
		if !ok {
			m.status = "no notes"
			return m, nil
		}
		return m, m.cmdDelete(note.ID)
	case "l":
		m.logout = true
		return m, tea.Quit
	}

	return m, nil
}

// refreshEngineState snapshots the engine getters once per update so the
// view stays a pure function of the model.
func (m *mainLoopModel) refreshEngineState() {
	m.syncStatus = m.engine.Status()
	m.backpressure = m.engine.Backpressure()
	m.conflicts = m.engine.Conflicts()
	m.conflictN = len(m.conflicts)
}

func (m mainLoopModel) updateCaptureFlow(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.captureStage {
	case captureStageKind:
		return m.updateCaptureKind(msg)
	case captureStageForm:
		return m.updateCaptureForm(msg)
	default:
		return m, nil
	}
}

func (m mainLoopModel) updateCaptureKind(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.resetCaptureFlow()
		return m, nil
	case "up", "k":
		if m.captureKindIdx > 0 {
			m.captureKindIdx--
		}
	case "down", "j":
		if m.captureKindIdx < len(m.captureKindOptions)-1 {
			m.captureKindIdx++
		}
	case "1", "2", "3", "4":
		m.captureKindIdx = int(keyMsg.String()[0] - '1')
		m.selectCaptureKind()
		return m, nil
	case "enter":
		m.selectCaptureKind()
		return m, nil
	}

	return m, nil
}

func (m *mainLoopModel) selectCaptureKind() {
	m.captureKind = m.captureKindOptions[m.captureKindIdx]
	m.captureErr = ""
	m.captureStage = captureStageForm
	m.initCaptureForm()
}

func (m *mainLoopModel) initCaptureForm() {
	title := textinput.New()
	title.Placeholder = "title"
	title.Width = 48
	title.Focus()

	tags := textinput.New()
	tags.Placeholder = "tags, comma separated (optional)"
	tags.Width = 48

	body := textarea.New()
	body.Placeholder = "content"
	body.SetWidth(54)
	body.SetHeight(6)

	m.captureInputs = []textinput.Model{title, tags}
	m.captureFocus = 0
	m.captureArea = body
	m.captureAreaFocus = false
}

func (m mainLoopModel) updateCaptureForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			m.resetCaptureFlow()
			return m, nil
		case "tab":
			m.captureFocusNext()
			return m, nil
		case "shift+tab":
			m.captureFocusPrev()
			return m, nil
		case "ctrl+s":
			if m.captureSaving {
				return m, nil
			}

			title := strings.TrimSpace(m.captureInputs[0].Value())
			if title == "" {
				m.captureErr = "a title is required"
				return m, nil
			}

			note := models.Note{
				Title:   title,
				Content: strings.TrimSpace(m.captureArea.Value()),
				Tags:    splitTags(m.captureInputs[1].Value()),
				Kind:    m.captureKind,
			}

			m.captureErr = ""
			m.captureSaving = true
			return m, m.cmdCapture(note)
		}
	}

	var cmd tea.Cmd
	if m.captureAreaFocus {
		m.captureArea, cmd = m.captureArea.Update(msg)
	} else {
		m.captureInputs[m.captureFocus], cmd = m.captureInputs[m.captureFocus].Update(msg)
	}
	return m, cmd
}

// captureFocusNext cycles title -> tags -> content -> title.
func (m *mainLoopModel) captureFocusNext() {
	if m.captureAreaFocus {
		m.captureAreaFocus = false
		m.captureArea.Blur()
		m.captureFocus = 0
		m.captureInputs[0].Focus()
		return
	}

	m.captureInputs[m.captureFocus].Blur()
	if m.captureFocus == len(m.captureInputs)-1 {
		m.captureAreaFocus = true
		m.captureArea.Focus()
		return
	}
	m.captureFocus++
	m.captureInputs[m.captureFocus].Focus()
}

func (m *mainLoopModel) captureFocusPrev() {
	if m.captureAreaFocus {
		m.captureAreaFocus = false
		m.captureArea.Blur()
		m.captureFocus = len(m.captureInputs) - 1
		m.captureInputs[m.captureFocus].Focus()
		return
	}

	m.captureInputs[m.captureFocus].Blur()
	if m.captureFocus == 0 {
		m.captureAreaFocus = true
		m.captureArea.Focus()
		return
	}
	m.captureFocus--
	m.captureInputs[m.captureFocus].Focus()
}

func (m *mainLoopModel) startCaptureFlow() {
	m.captureStage = captureStageKind
	m.captureKindIdx = 0
	m.captureErr = ""
	m.captureSaving = false
	m.captureInputs = nil
	m.captureFocus = 0
	m.captureAreaFocus = false
}

func (m *mainLoopModel) resetCaptureFlow() {
	m.captureStage = captureStageNone
	m.captureErr = ""
	m.captureSaving = false
	m.captureInputs = nil
	m.captureFocus = 0
	m.captureAreaFocus = false
}

func (m *mainLoopModel) startEdit(note models.Note) {
	title := textinput.New()
	title.Placeholder = "title"
	title.SetValue(note.Title)
	title.Width = 48
	title.Focus()

	tags := textinput.New()
	tags.Placeholder = "tags, comma separated"
	tags.SetValue(strings.Join(note.Tags, ", "))
	tags.Width = 48

	body := textarea.New()
	body.Placeholder = "content"
	body.SetValue(note.Content)
	body.SetWidth(54)
	body.SetHeight(6)

	m.editInputs = []textinput.Model{title, tags}
	m.editFocus = 0
	m.editArea = body
	m.editAreaFocus = false
	m.editSubmitting = false
	m.editNote = note
	m.editing = true
	m.errMsg = ""
}

func (m mainLoopModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			m.editing = false
			m.editSubmitting = false
			m.errMsg = ""
			return m, nil
		case "tab":
			m.editFocusNext()
			return m, nil
		case "shift+tab":
			m.editFocusPrev()
			return m, nil
		case "ctrl+s":
			if m.editSubmitting {
				return m, nil
			}

			title := strings.TrimSpace(m.editInputs[0].Value())
			if title == "" {
				m.errMsg = "a title is required"
				return m, nil
			}

			note := m.editNote
			note.Title = title
			note.Tags = splitTags(m.editInputs[1].Value())
			note.Content = strings.TrimSpace(m.editArea.Value())

			m.errMsg = ""
			m.editSubmitting = true
			return m, m.cmdUpdate(note)
		}
	}

	var cmd tea.Cmd
	if m.editAreaFocus {
		m.editArea, cmd = m.editArea.Update(msg)
	} else {
		m.editInputs[m.editFocus], cmd = m.editInputs[m.editFocus].Update(msg)
	}
	return m, cmd
}

func (m *mainLoopModel) editFocusNext() {
	if m.editAreaFocus {
		m.editAreaFocus = false
		m.editArea.Blur()
		m.editFocus = 0
		m.editInputs[0].Focus()
		return
	}

	m.editInputs[m.editFocus].Blur()
	if m.editFocus == len(m.editInputs)-1 {
		m.editAreaFocus = true
		m.editArea.Focus()
		return
	}
	m.editFocus++
	m.editInputs[m.editFocus].Focus()
}

func (m *mainLoopModel) editFocusPrev() {
	if m.editAreaFocus {
		m.editAreaFocus = false
		m.editArea.Blur()
		m.editFocus = len(m.editInputs) - 1
		m.editInputs[m.editFocus].Focus()
		return
	}

	m.editInputs[m.editFocus].Blur()
	if m.editFocus == 0 {
		m.editAreaFocus = true
		m.editArea.Focus()
		return
	}
	m.editFocus--
	m.editInputs[m.editFocus].Focus()
}

func (m mainLoopModel) updateConflicts(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMsg.String() {
	case "esc", "v":
		m.conflictsOpen = false
		return m, nil
	case "up", "k":
		if m.conflictIdx > 0 {
			m.conflictIdx--
		}
	case "down", "j":
		if m.conflictIdx < len(m.conflicts)-1 {
			m.conflictIdx++
		}
	case "1":
		return m.dispatchResolve(engine.ResolutionKeepServer)
	case "2":
		return m.dispatchResolve(engine.ResolutionKeepLocal)
	case "3", "x":
		return m.dispatchResolve(engine.ResolutionDismiss)
	}

	return m, nil
}

func (m mainLoopModel) dispatchResolve(resolution engine.Resolution) (tea.Model, tea.Cmd) {
	if m.resolving {
		return m, nil
	}
	if m.conflictIdx < 0 || m.conflictIdx >= len(m.conflicts) {
		return m, nil
	}

	m.resolving = true
	m.errMsg = ""
	return m, m.cmdResolve(m.conflicts[m.conflictIdx].RequestID, resolution)
}

func (m mainLoopModel) updateDevices(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMsg.String() {
	case "esc", "d":
		m.devicesOpen = false
		return m, nil
	case "up", "k":
		if m.deviceIdx > 0 {
			m.deviceIdx--
		}
	case "down", "j":
		if m.deviceIdx < len(m.devices)-1 {
			m.deviceIdx++
		}
	case "r":
		m.devicesLoading = true
		return m, m.cmdLoadDevices()
	case "ctrl+d":
		if m.revoking {
			return m, nil
		}
		if m.deviceIdx < 0 || m.deviceIdx >= len(m.devices) {
			return m, nil
		}
		device := m.devices[m.deviceIdx]
		if device.ID == m.currentDeviceID {
			m.errMsg = "cannot revoke this device while signed in on it"
			return m, nil
		}
		m.revoking = true
		m.errMsg = ""
		return m, m.cmdRevoke(device.ID)
	}

	return m, nil
}

func (m mainLoopModel) current() (models.Note, bool) {
	if len(m.items) == 0 || m.idx < 0 || m.idx >= len(m.items) {
		return models.Note{}, false
	}
	return m.items[m.idx], true
}

func (m mainLoopModel) cmdTick() tea.Cmd {
	return tea.Tick(statusRefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m mainLoopModel) cmdLoadNotes() tea.Cmd {
	ctx := m.ctx
	eng := m.engine

	return func() tea.Msg {
		items, err := eng.Notes(ctx)
		return notesLoadedMsg{items: items, err: err}
	}
}

func (m mainLoopModel) cmdSync() tea.Cmd {
	ctx := m.ctx
	eng := m.engine

	return func() tea.Msg {
		return syncDoneMsg{err: eng.SyncNow(ctx)}
	}
}

func (m mainLoopModel) cmdCapture(note models.Note) tea.Cmd {
	ctx := m.ctx
	eng := m.engine

	return func() tea.Msg {
		_, err := eng.Capture(ctx, note)
		return saveDoneMsg{created: true, err: err}
	}
}

func (m mainLoopModel) cmdUpdate(note models.Note) tea.Cmd {
	ctx := m.ctx
	eng := m.engine

	return func() tea.Msg {
		_, err := eng.Update(ctx, note)
		return saveDoneMsg{created: false, err: err}
	}
}

func (m mainLoopModel) cmdDelete(noteID string) tea.Cmd {
	ctx := m.ctx
	eng := m.engine

	return func() tea.Msg {
		return deleteDoneMsg{err: eng.Delete(ctx, noteID)}
	}
}

func (m mainLoopModel) cmdResolve(requestID string, resolution engine.Resolution) tea.Cmd {
	ctx := m.ctx
	eng := m.engine

	return func() tea.Msg {
		return resolveDoneMsg{err: eng.ResolveConflict(ctx, requestID, resolution)}
	}
}

func (m mainLoopModel) cmdLoadDevices() tea.Cmd {
	ctx := m.ctx
	server := m.server

	return func() tea.Msg {
		resp, err := server.Devices(ctx)
		return devicesLoadedMsg{resp: resp, err: err}
	}
}

func (m mainLoopModel) cmdRevoke(deviceID string) tea.Cmd {
	ctx := m.ctx
	server := m.server

	return func() tea.Msg {
		resp, err := server.RevokeDevice(ctx, deviceID)
		return revokeDoneMsg{resp: resp, err: err}
	}
}

func splitTags(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
