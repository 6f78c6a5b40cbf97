// Package tui provides an interactive chat interface over the answer
// pipeline, built on Bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/finsight-cli/internal/core/domain"
	"github.com/custodia-labs/finsight-cli/internal/core/ports/driving"
)

// chatTurn is one question with its (possibly still streaming) answer.
type chatTurn struct {
	question  string
	reasoning strings.Builder
	answer    strings.Builder
	citations []domain.Citation
	err       error
	done      bool
}

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *Styles

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	turns  []*chatTurn
	stream *driving.AskStream

	// showReasoning toggles rendering of the model's deliberation.
	showReasoning bool

	streaming  bool
	indexing   bool
	collection string
	err        error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the chat application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	input := textinput.New()
	input.Placeholder = "Ask about the reports (Latvian or English)..."
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		styles:   DefaultStyles(),
		input:    input,
		spinner:  sp,
		indexing: ports.Index != nil,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		a.spinner.Tick,
		a.ensureIndex(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		chatHeight := msg.Height - 4 // title, status, input
		if chatHeight < 1 {
			chatHeight = 1
		}
		if !a.ready {
			a.viewport = viewport.New(msg.Width, chatHeight)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = chatHeight
		}
		a.refreshViewport()
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return a, tea.Quit
		case "ctrl+r":
			a.showReasoning = !a.showReasoning
			a.refreshViewport()
			return a, nil
		case "enter":
			return a, a.submit()
		}

	case indexReadyMsg:
		a.indexing = false
		if msg.err != nil {
			a.err = msg.err
		} else {
			a.collection = msg.stats.Collection
		}
		return a, nil

	case streamStartedMsg:
		if msg.err != nil {
			a.failCurrentTurn(msg.err)
			return a, nil
		}
		a.stream = msg.stream
		return a, readStream(msg.stream)

	case streamTokenMsg:
		turn := a.currentTurn()
		if turn != nil {
			switch msg.token.Kind {
			case domain.TokenReasoning:
				turn.reasoning.WriteString(msg.token.Text)
			case domain.TokenAnswer:
				turn.answer.WriteString(msg.token.Text)
			}
			a.refreshViewport()
		}
		return a, readStream(a.stream)

	case streamDoneMsg:
		a.finishCurrentTurn(msg.result)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// submit starts answering the typed question, unless one is in flight.
func (a *App) submit() tea.Cmd {
	question := strings.TrimSpace(a.input.Value())
	if question == "" || a.streaming || a.indexing {
		return nil
	}

	a.turns = append(a.turns, &chatTurn{question: question})
	a.input.Reset()
	a.streaming = true
	a.refreshViewport()
	return a.startAsk(question)
}

// currentTurn returns the turn being streamed into, if any.
func (a *App) currentTurn() *chatTurn {
	if len(a.turns) == 0 {
		return nil
	}
	turn := a.turns[len(a.turns)-1]
	if turn.done {
		return nil
	}
	return turn
}

// failCurrentTurn ends the in-flight turn with an error.
func (a *App) failCurrentTurn(err error) {
	if turn := a.currentTurn(); turn != nil {
		turn.err = err
		turn.done = true
	}
	a.streaming = false
	a.stream = nil
	a.refreshViewport()
}

// finishCurrentTurn resolves the in-flight turn with the pipeline result.
// The terminal record is authoritative: refusal normalization may have
// replaced the streamed text.
func (a *App) finishCurrentTurn(result driving.AskResult) {
	turn := a.currentTurn()
	if turn != nil {
		if result.Err != nil {
			turn.err = result.Err
		} else {
			turn.answer.Reset()
			turn.answer.WriteString(result.Record.Answer)
			turn.reasoning.Reset()
			turn.reasoning.WriteString(result.Record.Reasoning)
			turn.citations = result.Record.Citations
		}
		turn.done = true
	}
	a.streaming = false
	a.stream = nil
	a.refreshViewport()
}

// refreshViewport re-renders the conversation and follows the tail.
func (a *App) refreshViewport() {
	if !a.ready {
		return
	}
	a.viewport.SetContent(a.renderTurns())
	a.viewport.GotoBottom()
}

// renderTurns lays out the whole conversation.
func (a *App) renderTurns() string {
	var sb strings.Builder
	for _, turn := range a.turns {
		sb.WriteString(a.styles.Question.Render("> " + turn.question))
		sb.WriteString("\n\n")

		if a.showReasoning && turn.reasoning.Len() > 0 {
			sb.WriteString(a.styles.Reasoning.Render(turn.reasoning.String()))
			sb.WriteString("\n\n")
		}

		if turn.err != nil {
			sb.WriteString(a.styles.Error.Render("error: " + turn.err.Error()))
			sb.WriteString("\n")
		} else if turn.answer.Len() > 0 {
			sb.WriteString(a.styles.Answer.Render(turn.answer.String()))
			sb.WriteString("\n")
		}

		if turn.done && len(turn.citations) > 0 {
			sb.WriteString("\n")
			for i, c := range turn.citations {
				line := fmt.Sprintf("  [%d] %s, page %s (score %s)", i+1, c.FileName, c.PageNo, c.Score)
				sb.WriteString(a.styles.Source.Render(line))
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Starting..."
	}

	var status string
	switch {
	case a.indexing:
		status = a.spinner.View() + " Preparing index..."
	case a.streaming:
		status = a.spinner.View() + " Thinking... (ctrl+r toggles reasoning)"
	case a.err != nil:
		status = a.styles.Error.Render("error: " + a.err.Error())
	default:
		status = fmt.Sprintf("Collection %s | enter asks | ctrl+r reasoning | esc quits", a.collection)
	}

	return a.styles.Title.Render("finsight chat") + "\n" +
		a.viewport.View() + "\n" +
		a.styles.Status.Render(status) + "\n" +
		a.input.View()
}

// ensureIndex opens or builds the collection before the first question.
func (a *App) ensureIndex() tea.Cmd {
	return func() tea.Msg {
		if a.ports.Index == nil {
			return indexReadyMsg{}
		}
		stats, err := a.ports.Index.EnsureIndex(a.ctx)
		return indexReadyMsg{stats: stats, err: err}
	}
}

// startAsk opens the answer stream for one question.
func (a *App) startAsk(question string) tea.Cmd {
	return func() tea.Msg {
		stream, err := a.ports.Ask.Ask(a.ctx, question)
		return streamStartedMsg{stream: stream, err: err}
	}
}

// readStream pulls the next token, or the terminal result once the token
// channel closes.
func readStream(stream *driving.AskStream) tea.Cmd {
	if stream == nil {
		return nil
	}
	return func() tea.Msg {
		if tok, ok := <-stream.Tokens; ok {
			return streamTokenMsg{token: tok}
		}
		return streamDoneMsg{result: <-stream.Result}
	}
}
