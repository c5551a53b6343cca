// Package prompter reads interactive input for talentctl.
package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Input is read by PromptString; tests may replace it
var Input io.Reader = os.Stdin

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	fmt.Print(label)
	input, err := bufio.NewReader(Input).ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// PromptPassword reads a password without echo when stdin is a terminal
func PromptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return PromptString(label)
	}

	fmt.Print(label)
	bytepw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(bytepw), nil
}

// PromptSelect prompts user to select from options and returns the choice
func PromptSelect(label string, options []string) (string, error) {
	fmt.Println(label)
	for i, opt := range options {
		fmt.Printf("%d) %s\n", i+1, opt)
	}

	answer, err := PromptString("Select option: ")
	if err != nil {
		return "", err
	}
	var n int
	if _, err := fmt.Sscanf(answer, "%d", &n); err != nil || n < 1 || n > len(options) {
		return "", fmt.Errorf("invalid selection %q", answer)
	}
	return options[n-1], nil
}
