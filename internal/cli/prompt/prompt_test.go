package prompt

import (
	"errors"
	"fmt"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
)

func TestIsAborted(t *testing.T) {
	assert.True(t, IsAborted(promptui.ErrInterrupt))
	assert.True(t, IsAborted(promptui.ErrEOF))
	assert.True(t, IsAborted(ErrAborted))
	assert.True(t, IsAborted(fmt.Errorf("select mesh: %w", ErrAborted)))
	assert.False(t, IsAborted(promptui.ErrAbort))
	assert.False(t, IsAborted(errors.New("boom")))
	assert.False(t, IsAborted(nil))
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, wrapError(nil))
	assert.Equal(t, ErrAborted, wrapError(promptui.ErrInterrupt))

	other := errors.New("terminal gone")
	assert.Equal(t, other, wrapError(other))
}

func TestConfirmWithForce(t *testing.T) {
	ok, err := ConfirmWithForce("Download everything?", true)
	assert.NoError(t, err)
	assert.True(t, ok)
}
