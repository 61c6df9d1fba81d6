package wizards

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/interpretive-systems/codecraft/internal/ai"
	"github.com/interpretive-systems/codecraft/internal/editor"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
)

// Configurable is an assistant client whose settings can change at runtime.
type Configurable interface {
	Config() ai.Config
	UpdateConfig(p ai.Patch)
	Ping(ctx context.Context) bool
}

// AIConfigResultMsg reports the connectivity check after saving.
type AIConfigResultMsg struct {
	Online bool
}

const (
	stepEndpoint = iota
	stepModel
	stepTemperature
	stepConfirm
)

// AIConfigWizard edits the endpoint, model and temperature of the
// assistant, then checks that the service answers.
type AIConfigWizard struct {
	client  Configurable
	step    int
	inputs  [3]textinput.Model
	patch   ai.Patch
	running bool
	online  bool
	err     string
	done    bool
}

func NewAIConfigWizard(c Configurable) *AIConfigWizard {
	return &AIConfigWizard{client: c}
}

func (w *AIConfigWizard) Init(*editor.Editor, string) tea.Cmd {
	cfg := w.client.Config()
	values := [3]string{cfg.Endpoint, cfg.Model, strconv.FormatFloat(cfg.Temperature, 'f', -1, 64)}
	prompts := [3]string{"Endpoint: ", "Model: ", "Temperature: "}
	for i := range w.inputs {
		ti := textinput.New()
		ti.Prompt = prompts[i]
		ti.CharLimit = 0
		ti.SetValue(values[i])
		ti.CursorEnd()
		w.inputs[i] = ti
	}
	w.step = stepEndpoint
	w.patch = ai.Patch{}
	w.running = false
	w.online = false
	w.err = ""
	w.done = false
	return w.inputs[0].Focus()
}

func (w *AIConfigWizard) HandleKey(msg tea.KeyMsg) (Action, tea.Cmd) {
	if w.done {
		return ActionClose, nil
	}
	if w.running {
		return ActionContinue, nil
	}
	switch msg.String() {
	case "esc":
		return ActionClose, nil
	case "shift+tab":
		if w.step > stepEndpoint {
			w.inputs[min(w.step, stepTemperature)].Blur()
			w.step--
			return ActionContinue, w.inputs[w.step].Focus()
		}
		return ActionContinue, nil
	case "enter":
		return w.next()
	}
	if w.step == stepConfirm {
		return ActionContinue, nil
	}
	var cmd tea.Cmd
	w.inputs[w.step], cmd = w.inputs[w.step].Update(msg)
	return ActionContinue, cmd
}

func (w *AIConfigWizard) next() (Action, tea.Cmd) {
	if w.step < stepConfirm {
		if err := w.validate(); err != nil {
			w.err = err.Error()
			return ActionContinue, nil
		}
		w.err = ""
		w.inputs[w.step].Blur()
		w.step++
		if w.step < stepConfirm {
			return ActionContinue, w.inputs[w.step].Focus()
		}
		return ActionContinue, nil
	}
	endpoint := strings.TrimSpace(w.inputs[stepEndpoint].Value())
	model := strings.TrimSpace(w.inputs[stepModel].Value())
	temp, _ := strconv.ParseFloat(strings.TrimSpace(w.inputs[stepTemperature].Value()), 64)
	w.patch = ai.Patch{Endpoint: &endpoint, Model: &model, Temperature: &temp}
	if err := w.client.Config().Apply(w.patch).Validate(); err != nil {
		w.err = err.Error()
		return ActionContinue, nil
	}
	w.client.UpdateConfig(w.patch)
	w.running = true
	client := w.client
	return ActionContinue, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return AIConfigResultMsg{Online: client.Ping(ctx)}
	}
}

func (w *AIConfigWizard) validate() error {
	v := strings.TrimSpace(w.inputs[w.step].Value())
	switch w.step {
	case stepEndpoint:
		return ai.Config{Endpoint: v, Model: "m", MaxTokens: 1}.Validate()
	case stepModel:
		if v == "" {
			return fmt.Errorf("model is required")
		}
	case stepTemperature:
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("temperature %q is not a number", v)
		}
		if t < 0 || t > 2 {
			return fmt.Errorf("temperature %.2f out of range [0,2]", t)
		}
	}
	return nil
}

func (w *AIConfigWizard) Update(msg tea.Msg) tea.Cmd {
	if r, ok := msg.(AIConfigResultMsg); ok && w.running {
		w.running = false
		w.online = r.Online
		w.done = true
	}
	return nil
}

func (w *AIConfigWizard) RenderOverlay(width int) []string {
	lines := []string{
		strings.Repeat("─", width),
		titleStyle.Render("Assistant settings") +
			faintStyle.Render("  (enter: next, shift+tab: back, esc: cancel)"),
	}
	for i := range w.inputs {
		cur := "  "
		if i == w.step {
			cur = "> "
		}
		lines = append(lines, ansi.Pad(cur+w.inputs[i].View(), width))
	}
	switch {
	case w.running:
		lines = append(lines, busyStyle.Render("Saving and checking the connection…"))
	case w.done && w.online:
		lines = append(lines, busyStyle.Render("Saved. Assistant is reachable. (any key: close)"))
	case w.done:
		lines = append(lines, errStyle.Render("Saved, but the assistant did not answer. (any key: close)"))
	case w.step == stepConfirm:
		lines = append(lines, titleStyle.Render("Save these settings? (enter: save, shift+tab: back)"))
	}
	if w.err != "" {
		lines = append(lines, errorLine(w.err))
	}
	return lines
}

func (w *AIConfigWizard) IsComplete() bool { return w.done }

func (w *AIConfigWizard) Error() string { return w.err }
