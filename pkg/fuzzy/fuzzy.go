// Package fuzzy provides interactive selection for picking a project board,
// backed by the fzf library with a numbered-prompt fallback for terminals
// where fzf cannot run.
package fuzzy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	fzf "github.com/junegunn/fzf/src"
)

// Option represents a selectable option
type Option struct {
	Value       string
	Description string
}

// Runner defines the interface for running fzf
type Runner interface {
	Run(opts *fzf.Options) (int, error)
}

// defaultRunner implements Runner using the real fzf library
type defaultRunner struct{}

func (defaultRunner) Run(opts *fzf.Options) (int, error) {
	return fzf.Run(opts)
}

// Finder presents options and returns the selected value
type Finder struct {
	prompt  string
	options []Option
	runner  Runner
}

// New creates a new finder with the given prompt
func New(prompt string) *Finder {
	return &Finder{
		prompt: prompt,
		runner: defaultRunner{},
	}
}

// NewWithRunner creates a finder with a custom runner (for testing)
func NewWithRunner(prompt string, runner Runner) *Finder {
	return &Finder{
		prompt: prompt,
		runner: runner,
	}
}

// AddOption adds an option to the finder
func (f *Finder) AddOption(value, description string) {
	f.options = append(f.options, Option{
		Value:       value,
		Description: description,
	})
}

// Select starts the fuzzy selection and returns the chosen option's value
func (f *Finder) Select() (string, error) {
	if len(f.options) == 0 {
		return "", fmt.Errorf("no options available")
	}

	tmpFile, err := os.CreateTemp("", "prsync-options-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmpFile.Name())
	}()

	for _, option := range f.options {
		line := option.Value
		if option.Description != "" {
			line = fmt.Sprintf("%s  │  %s", option.Value, option.Description)
		}
		if _, err := fmt.Fprintln(tmpFile, line); err != nil {
			return "", fmt.Errorf("failed to write option to file: %w", err)
		}
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temporary file: %w", err)
	}

	args := []string{
		"--prompt=" + f.prompt + " ",
		"--height=10",
		"--no-multi",
		"--cycle",
		"--clear",
		"--no-mouse",
	}

	opts, err := fzf.ParseOptions(true, args)
	if err != nil {
		return "", fmt.Errorf("failed to parse fzf options: %w", err)
	}

	// fzf reads candidates from stdin and writes the selection to stdout
	originalStdin := os.Stdin
	defer func() { os.Stdin = originalStdin }()

	input, err := os.Open(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("failed to open temporary file for reading: %w", err)
	}
	defer func() {
		_ = input.Close()
	}()
	os.Stdin = input

	originalStdout := os.Stdout
	defer func() { os.Stdout = originalStdout }()

	r, w, err := os.Pipe()
	if err != nil {
		return "", fmt.Errorf("failed to create pipe: %w", err)
	}
	defer func() {
		_ = r.Close()
	}()
	os.Stdout = w

	exitCode, err := f.runner.Run(opts)

	_ = w.Close()
	os.Stdout = originalStdout

	if err != nil {
		return f.fallbackSelect()
	}
	if exitCode != fzf.ExitOk {
		return "", fmt.Errorf("selection cancelled")
	}

	result, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read fzf result: %w", err)
	}

	selected := strings.TrimSpace(string(result))
	if selected == "" {
		return "", fmt.Errorf("no selection made")
	}

	// The line format is "value  │  description"
	value := strings.TrimSpace(strings.Split(selected, "  │  ")[0])
	for _, option := range f.options {
		if option.Value == value {
			return option.Value, nil
		}
	}
	return value, nil
}

// fallbackSelect offers a numbered prompt when fzf cannot run
func (f *Finder) fallbackSelect() (string, error) {
	fmt.Println(f.prompt)
	fmt.Println(strings.Repeat("-", len(f.prompt)))

	for i, option := range f.options {
		fmt.Printf("%d. %s", i+1, option.Value)
		if option.Description != "" {
			fmt.Printf(" - %s", option.Description)
		}
		fmt.Println()
	}

	fmt.Printf("\nSelect option (1-%d): ", len(f.options))

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	selection, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return "", fmt.Errorf("invalid selection: %s", strings.TrimSpace(input))
	}
	if selection < 1 || selection > len(f.options) {
		return "", fmt.Errorf("selection out of range: %d", selection)
	}

	return f.options[selection-1].Value, nil
}
