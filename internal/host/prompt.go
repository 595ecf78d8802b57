package host

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/franz/sumotube/internal/util"
)

// Prompter asks questions with a one-line text input. On a terminal each
// question runs its own program on the tty; piped input is read a line at a
// time and typed into the same input.
type Prompter struct {
	in    io.Reader
	lines *bufio.Reader
	out   io.Writer
}

// NewPrompter creates a prompter. Nil arguments use stdin and stderr.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	p := &Prompter{in: in, out: out}
	if f, ok := in.(*os.File); !ok || !util.IsTerminal(f.Fd()) {
		p.lines = bufio.NewReader(in)
	}
	return p
}

type promptModel struct {
	input     textinput.Model
	submitted bool
}

func newPromptModel(label, placeholder string) promptModel {
	ti := textinput.New()
	ti.Prompt = label
	ti.Placeholder = placeholder
	ti.CharLimit = 4096
	ti.Focus()
	return promptModel{input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return nil
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.submitted {
		return m.input.Prompt + m.input.Value() + "\n"
	}
	return m.input.View()
}

// Answer returns the trimmed input and whether it was submitted
func (m promptModel) Answer() (string, bool) {
	return strings.TrimSpace(m.input.Value()), m.submitted
}

// Ask shows question and returns the trimmed answer. ok is false when the
// prompt is cancelled or the input has ended.
func (p *Prompter) Ask(question string) (string, bool) {
	return p.ask(question, "")
}

func (p *Prompter) ask(label, placeholder string) (string, bool) {
	opts := []tea.ProgramOption{tea.WithOutput(p.out)}
	if p.lines != nil {
		line, err := p.lines.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", false
		}
		keys := strings.TrimRight(line, "\r\n") + "\r"
		opts = append(opts, tea.WithInput(strings.NewReader(keys)), tea.WithoutSignalHandler())
	} else {
		opts = append(opts, tea.WithInput(p.in))
	}

	final, err := tea.NewProgram(newPromptModel(label, placeholder), opts...).Run()
	if err != nil {
		util.DebugLog("Prompt %q failed: %v", label, err)
		return "", false
	}
	m, ok := final.(promptModel)
	if !ok {
		return "", false
	}
	return m.Answer()
}

// PickFolder asks for a folder. An empty answer takes defaultPath; ok is
// false when the prompt is cancelled or there is nothing to take.
func (p *Prompter) PickFolder(defaultPath string) (string, bool) {
	for {
		answer, ok := p.ask("Folder: ", defaultPath)
		if !ok {
			return "", false
		}
		if answer == "" {
			if defaultPath == "" {
				return "", false
			}
			answer = defaultPath
		}

		path := ExpandHome(answer)
		fi, err := os.Stat(path)
		if err == nil && fi.IsDir() {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
			return path, true
		}
		fmt.Fprintf(p.out, "Not a folder: %s\n", path)
		util.DebugLog("PickFolder rejected %s: %v", path, err)
	}
}

// PickImageFile asks for an image file, re-asking until a valid image is
// given. ok is false when the prompt is cancelled or left empty.
func (p *Prompter) PickImageFile() (string, bool) {
	for {
		answer, ok := p.Ask("Image file (jpg, png, webp): ")
		if !ok || answer == "" {
			return "", false
		}

		path := ExpandHome(answer)
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if _, err := ValidateImage(path); err != nil {
			fmt.Fprintf(p.out, "Not a usable image: %v\n", err)
			continue
		}
		return path, true
	}
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
