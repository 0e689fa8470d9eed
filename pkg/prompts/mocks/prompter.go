// Code generated manually for testing. Update as needed.

package mocks

import (
	"github.com/luxfi/restorepoint/pkg/prompts"
	"github.com/stretchr/testify/mock"
)

var _ prompts.Prompter = (*Prompter)(nil)

// Prompter is a scripted operator for lifecycle tests.
type Prompter struct {
	mock.Mock
}

func (m *Prompter) CaptureStringAllowEmpty(promptStr string) (string, error) {
	args := m.Called(promptStr)
	return args.String(0), args.Error(1)
}

func (m *Prompter) CaptureYesNo(promptStr string) (bool, error) {
	args := m.Called(promptStr)
	return args.Bool(0), args.Error(1)
}
