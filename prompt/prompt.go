/*
Package prompt asks the operator to choose on the terminal.
*/
package prompt

import (
	"io"

	"github.com/manifoldco/promptui"
)

const pageSize = 10

// Terminal prompts with an arrow-key menu.
type Terminal struct {
	// Stdin and Stdout default to the process streams when nil.
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

// Select shows items under label and returns the index of the chosen one.
func (t *Terminal) Select(label string, items []string) (int, error) {
	s := promptui.Select{
		Label:  label,
		Items:  items,
		Size:   pageSize,
		Stdin:  t.Stdin,
		Stdout: t.Stdout,
	}

	i, _, err := s.Run()
	if err != nil {
		return 0, err
	}
	return i, nil
}
