package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/jwulff/groqscribe/internal/api"
	"github.com/jwulff/groqscribe/internal/credential"
	"github.com/jwulff/groqscribe/internal/pipeline"
	"github.com/jwulff/groqscribe/internal/ui"
	"github.com/rs/zerolog"

	tea "github.com/charmbracelet/bubbletea"
)

// inputMode tracks which text input, if any, owns the keyboard.
type inputMode int

const (
	inputNone inputMode = iota
	inputKey
	inputPath
	inputPrompt
)

// Options configures New.
type Options struct {
	Backend       Backend
	Store         credential.Store
	Log           zerolog.Logger
	DefaultModel  string
	DefaultPrompt string
}

// Model is the root bubbletea model for the groqscribe TUI. Update is the
// single writer of all session state.
type Model struct {
	backend Backend
	store   credential.Store
	log     zerolog.Logger

	phase Phase
	// prevPhase is restored when the in-flight request fails.
	prevPhase Phase

	// Session data
	selection     *pipeline.AudioSelection
	transcription string
	analysis      *pipeline.AnalysisResult
	settings      pipeline.AnalysisSettings
	defaultPrompt string
	catalog       []string

	// Correlation
	epoch        uint64
	seq          uint64
	verifying    *Ticket
	selecting    *Ticket
	transcribing *Ticket
	analyzing    *Ticket

	// UI state
	mode        inputMode
	keyInput    textinput.Model
	pathInput   textinput.Model
	promptInput textinput.Model
	spinner     spinner.Model
	width       int
	height      int

	errorMessage string
	notice       string
}

// New creates a Model waiting for the stored credential check.
func New(opts Options) Model {
	key := textinput.New()
	key.Prompt = "API key: "
	key.Placeholder = "gsk_..."
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '•'
	key.Focus()

	path := textinput.New()
	path.Prompt = "Audio file: "
	path.Placeholder = "~/Music/song.mp3"

	prompt := textinput.New()
	prompt.Prompt = "Instruction: "

	return Model{
		backend: opts.Backend,
		store:   opts.Store,
		log:     opts.Log,
		phase:   PhaseUnauthenticated,
		settings: pipeline.AnalysisSettings{
			Model:       opts.DefaultModel,
			Instruction: opts.DefaultPrompt,
		},
		defaultPrompt: opts.DefaultPrompt,
		catalog:       []string{},
		mode:          inputKey,
		keyInput:      key,
		pathInput:     path,
		promptInput:   prompt,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ui.SpinnerStyle)),
	}
}

// Phase returns the current session phase.
func (m Model) Phase() Phase { return m.phase }

// ErrorMessage returns the message shown for the last failure, if any.
func (m Model) ErrorMessage() string { return m.errorMessage }

// Init checks the store for a credential.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadCredentialCmd(m.store), textinput.Blink, m.spinner.Tick)
}

func loadCredentialCmd(store credential.Store) tea.Cmd {
	return func() tea.Msg {
		token, ok := store.Read()
		return CredentialLoadedMsg{Token: token, OK: ok && token != ""}
	}
}

func verifyCmd(b Backend, t Ticket, key string) tea.Cmd {
	return func() tea.Msg {
		err := b.Verify(context.Background(), key)
		return VerifiedMsg{Ticket: t, Key: key, Err: err}
	}
}

func loadModelsCmd(b Backend, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		models, err := b.LoadModels(context.Background())
		if models == nil {
			models = []string{}
		}
		return ModelsLoadedMsg{Epoch: epoch, Models: models, Err: err}
	}
}

// selectFileCmd inspects path off the event loop.
func selectFileCmd(t Ticket, path string) tea.Cmd {
	return func() tea.Msg {
		sel, err := pipeline.SelectAudio(path)
		return FileSelectedMsg{Ticket: t, Selection: sel, Err: err}
	}
}

func transcribeCmd(b Backend, t Ticket, sel pipeline.AudioSelection) tea.Cmd {
	return func() tea.Msg {
		text, err := b.Transcribe(context.Background(), sel)
		return TranscribeDoneMsg{Ticket: t, Text: text, Err: err}
	}
}

func analyzeCmd(b Backend, t Ticket, req pipeline.AnalysisRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := b.Analyze(context.Background(), req)
		return AnalyzeDoneMsg{Ticket: t, Result: res, Err: err}
	}
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case CredentialLoadedMsg:
		if m.phase != PhaseUnauthenticated || !msg.OK {
			return m, nil
		}
		m.log.Info().Msg("using stored credential")
		return m.authenticated()

	case VerifiedMsg:
		return m.handleVerified(msg)

	case ModelsLoadedMsg:
		return m.handleModelsLoaded(msg)

	case FileSelectedMsg:
		return m.handleFileSelected(msg)

	case TranscribeDoneMsg:
		return m.handleTranscribeDone(msg)

	case AnalyzeDoneMsg:
		return m.handleAnalyzeDone(msg)
	}

	// Cursor blinks and other input-internal messages.
	return m.updateInput(msg)
}

func (m Model) verify(key string) (Model, tea.Cmd) {
	if m.phase != PhaseUnauthenticated || m.verifying != nil {
		return m, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		m.errorMessage = api.MsgMissingKey
		return m, nil
	}
	t := m.nextTicket("")
	m.verifying = &t
	m.errorMessage = ""
	return m, verifyCmd(m.backend, t, key)
}

func (m Model) handleVerified(msg VerifiedMsg) (Model, tea.Cmd) {
	if m.verifying == nil || *m.verifying != msg.Ticket {
		m.logStale("verify", msg.Ticket)
		return m, nil
	}
	m.verifying = nil
	if msg.Err != nil {
		m.errorMessage = api.Message(msg.Err)
		m.log.Warn().Str("kind", kindName(msg.Err)).Msg("credential rejected")
		return m, nil
	}
	m.store.Save(msg.Key)
	m.log.Info().Msg("credential verified")
	return m.authenticated()
}

// authenticated moves to AwaitingFile and fetches the model catalog.
func (m Model) authenticated() (Model, tea.Cmd) {
	m.phase = PhaseAwaitingFile
	m.prevPhase = PhaseAwaitingFile
	m.mode = inputNone
	m.keyInput.Blur()
	m.keyInput.Reset()
	m.errorMessage = ""
	return m, loadModelsCmd(m.backend, m.epoch)
}

func (m Model) handleModelsLoaded(msg ModelsLoadedMsg) (Model, tea.Cmd) {
	if msg.Epoch != m.epoch || m.phase == PhaseUnauthenticated {
		m.logStale("models", Ticket{Epoch: msg.Epoch})
		return m, nil
	}
	if msg.Err != nil {
		m.catalog = []string{}
		m.notice = "Model list unavailable, using " + m.settings.Model + "."
		m.log.Warn().Err(msg.Err).Msg("model catalog unavailable")
		return m, nil
	}
	m.catalog = msg.Models
	if len(m.catalog) > 0 {
		m.settings.Model = m.catalog[0]
	}
	m.log.Info().Int("count", len(m.catalog)).Str("default", m.settings.Model).Msg("model catalog loaded")
	return m, nil
}

func (m Model) selectFile(path string) (Model, tea.Cmd) {
	if m.phase == PhaseUnauthenticated {
		return m, nil
	}
	// A newer pick supersedes one still being inspected.
	t := m.nextTicket("")
	m.selecting = &t
	return m, selectFileCmd(t, path)
}

func (m Model) handleFileSelected(msg FileSelectedMsg) (Model, tea.Cmd) {
	if m.selecting == nil || *m.selecting != msg.Ticket || m.phase == PhaseUnauthenticated {
		m.logStale("select", msg.Ticket)
		return m, nil
	}
	m.selecting = nil
	if msg.Err != nil {
		m.errorMessage = api.Message(msg.Err)
		m.log.Info().Str("kind", kindName(msg.Err)).Msg("file rejected")
		return m, nil
	}
	if !msg.Selection.IsAudio() {
		m.errorMessage = pipeline.MsgNotAudio
		return m, nil
	}

	m.release()
	sel := msg.Selection
	m.selection = &sel
	m.transcription = ""
	m.analysis = nil
	// Anything still in flight now belongs to the old selection.
	m.transcribing = nil
	m.analyzing = nil
	m.phase = PhaseFileSelected
	m.prevPhase = PhaseFileSelected
	m.errorMessage = ""
	m.notice = ""
	m.log.Info().
		Str("selection", sel.ID).
		Str("name", sel.Name).
		Str("media_type", sel.MediaType).
		Int64("size", sel.Size).
		Msg("file selected")
	return m, nil
}

// release drops the current selection. Its playback URL points at the file
// itself, so there is nothing else to free.
func (m *Model) release() {
	if m.selection == nil {
		return
	}
	m.log.Debug().Str("selection", m.selection.ID).Msg("selection released")
	m.selection = nil
}

func (m Model) transcribe() (Model, tea.Cmd) {
	if m.transcribing != nil || m.selection == nil {
		return m, nil
	}
	switch m.phase {
	case PhaseFileSelected, PhaseTranscribed, PhaseAnalyzed:
	default:
		return m, nil
	}
	if !m.selection.IsAudio() {
		m.errorMessage = pipeline.MsgNotAudio
		return m, nil
	}

	t := m.nextTicket(m.selection.ID)
	m.transcribing = &t
	m.prevPhase = m.phase
	m.phase = PhaseTranscribing
	m.errorMessage = ""
	m.notice = ""
	m.log.Info().Str("selection", t.Selection).Uint64("seq", t.Seq).Msg("transcription started")
	return m, transcribeCmd(m.backend, t, *m.selection)
}

func (m Model) handleTranscribeDone(msg TranscribeDoneMsg) (Model, tea.Cmd) {
	if m.transcribing == nil || *m.transcribing != msg.Ticket {
		m.logStale("transcribe", msg.Ticket)
		return m, nil
	}
	m.transcribing = nil
	if msg.Err != nil {
		m.phase = m.prevPhase
		m.errorMessage = api.Message(msg.Err)
		m.notice = rejectedKeyNotice(msg.Err)
		m.log.Warn().Str("kind", kindName(msg.Err)).Err(msg.Err).Msg("transcription failed")
		return m, nil
	}
	m.transcription = msg.Text
	m.analysis = nil
	m.phase = PhaseTranscribed
	m.log.Info().Int("chars", len(msg.Text)).Msg("transcription complete")
	return m, nil
}

func (m Model) analyze() (Model, tea.Cmd) {
	if m.analyzing != nil {
		return m, nil
	}
	if m.phase != PhaseTranscribed && m.phase != PhaseAnalyzed {
		return m, nil
	}
	if strings.TrimSpace(m.transcription) == "" {
		m.notice = pipeline.MsgNothingToAnalyze
		return m, nil
	}

	var selID string
	if m.selection != nil {
		selID = m.selection.ID
	}
	t := m.nextTicket(selID)
	m.analyzing = &t
	m.prevPhase = m.phase
	m.phase = PhaseAnalyzing
	m.errorMessage = ""
	m.notice = ""

	req := pipeline.AnalysisRequest{
		Transcription: m.transcription,
		Model:         m.settings.Model,
		Instruction:   m.settings.Instruction,
	}
	m.log.Info().Str("model", req.Model).Uint64("seq", t.Seq).Msg("analysis started")
	return m, analyzeCmd(m.backend, t, req)
}

func (m Model) handleAnalyzeDone(msg AnalyzeDoneMsg) (Model, tea.Cmd) {
	if m.analyzing == nil || *m.analyzing != msg.Ticket {
		m.logStale("analyze", msg.Ticket)
		return m, nil
	}
	m.analyzing = nil
	if msg.Err != nil {
		m.phase = m.prevPhase
		m.errorMessage = api.Message(msg.Err)
		m.notice = rejectedKeyNotice(msg.Err)
		m.log.Warn().Str("kind", kindName(msg.Err)).Err(msg.Err).Msg("analysis failed")
		return m, nil
	}
	res := msg.Result
	m.analysis = &res
	m.phase = PhaseAnalyzed
	m.log.Info().Int("themes", len(res.Themes)).Msg("analysis complete")
	return m, nil
}

// logout clears the credential and all session data except the analysis
// settings. Bumping the epoch turns every outstanding completion stale.
func (m Model) logout() (Model, tea.Cmd) {
	if m.phase == PhaseUnauthenticated {
		return m, nil
	}
	m.store.Clear()
	m.epoch++
	m.release()
	m.transcription = ""
	m.analysis = nil
	m.catalog = []string{}
	m.verifying = nil
	m.selecting = nil
	m.transcribing = nil
	m.analyzing = nil
	m.phase = PhaseUnauthenticated
	m.prevPhase = PhaseUnauthenticated
	m.errorMessage = ""
	m.notice = ""

	m.pathInput.Blur()
	m.promptInput.Blur()
	m.keyInput.Reset()
	m.mode = inputKey
	m.log.Info().Uint64("epoch", m.epoch).Msg("logged out")
	cmd := m.keyInput.Focus()
	return m, cmd
}

// cycleModel moves the selected model by step through the catalog.
func (m Model) cycleModel(step int) Model {
	n := len(m.catalog)
	if n == 0 {
		return m
	}
	i := indexOf(m.catalog, m.settings.Model)
	if i < 0 {
		i = 0
	} else {
		i = ((i+step)%n + n) % n
	}
	m.settings.Model = m.catalog[i]
	return m
}

func (m Model) commitPrompt(value string) Model {
	value = strings.TrimSpace(value)
	if value == "" {
		value = m.defaultPrompt
	}
	m.settings.Instruction = value
	return m
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == KeyCtrlC {
		return m, tea.Quit
	}
	if m.mode != inputNone {
		return m.handleInputKey(msg)
	}

	switch msg.String() {
	case KeyQuit:
		return m, tea.Quit

	case KeyOpenFile:
		if m.phase == PhaseUnauthenticated {
			return m, nil
		}
		m.mode = inputPath
		m.pathInput.Reset()
		cmd := m.pathInput.Focus()
		return m, cmd

	case KeyTranscribe:
		return m.transcribe()

	case KeyAnalyze:
		return m.analyze()

	case KeySettings:
		m.settings.Visible = !m.settings.Visible
		return m, nil

	case KeyNextModel:
		return m.cycleModel(1), nil

	case KeyPrevModel:
		return m.cycleModel(-1), nil

	case KeyEditPrompt:
		if m.phase == PhaseUnauthenticated {
			return m, nil
		}
		m.mode = inputPrompt
		m.settings.Visible = true
		m.promptInput.SetValue(m.settings.Instruction)
		m.promptInput.CursorEnd()
		cmd := m.promptInput.Focus()
		return m, cmd

	case KeyChangeCreds:
		return m.logout()
	}

	return m, nil
}

// handleInputKey routes keys to the focused text input.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEnter:
		switch m.mode {
		case inputKey:
			return m.verify(m.keyInput.Value())
		case inputPath:
			path := m.pathInput.Value()
			m.pathInput.Blur()
			m.mode = inputNone
			return m.selectFile(path)
		case inputPrompt:
			m = m.commitPrompt(m.promptInput.Value())
			m.promptInput.Blur()
			m.mode = inputNone
			return m, nil
		}

	case KeyEsc:
		switch m.mode {
		case inputKey:
			m.keyInput.Reset()
		case inputPath:
			m.pathInput.Blur()
			m.mode = inputNone
		case inputPrompt:
			m.promptInput.Blur()
			m.mode = inputNone
		}
		return m, nil
	}

	return m.updateInput(msg)
}

func (m Model) updateInput(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case inputKey:
		m.keyInput, cmd = m.keyInput.Update(msg)
	case inputPath:
		m.pathInput, cmd = m.pathInput.Update(msg)
	case inputPrompt:
		m.promptInput, cmd = m.promptInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) nextTicket(selection string) Ticket {
	m.seq++
	return Ticket{Epoch: m.epoch, Selection: selection, Seq: m.seq}
}

func (m Model) logStale(op string, t Ticket) {
	m.log.Info().
		Err(api.Stale(op)).
		Uint64("epoch", t.Epoch).
		Str("selection", t.Selection).
		Uint64("seq", t.Seq).
		Msg("discarding stale response")
}

// rejectedKeyNotice points at the credential change key when a request made
// with the stored key was refused.
func rejectedKeyNotice(err error) string {
	if api.IsKind(err, api.KindAuthRejected) {
		return "Press " + KeyChangeCreds + " to enter a different API key."
	}
	return ""
}

func kindName(err error) string {
	if k, ok := api.KindOf(err); ok {
		return k.String()
	}
	return "unclassified"
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
