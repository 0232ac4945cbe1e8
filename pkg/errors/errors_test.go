package errors

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	e := New(ErrCodeTemplate, "Template next is invalid", "", "")
	assert.Equal(t, "[TEMPLATE_ERROR] Template next is invalid", e.Error())

	w := Wrap(fmt.Errorf("disk full"), ErrCodeStore, "Failed to write", "", "")
	assert.Equal(t, "[STORE_ERROR] Failed to write: disk full", w.Error())
}

func TestIsCodeFollowsChain(t *testing.T) {
	inner := NotFound("gNB link configuration")
	outer := Wrap(pkgerrors.Wrap(inner, "load"), ErrCodeStore, "Failed to load", "", "")

	assert.True(t, IsCode(outer, ErrCodeStore))
	assert.True(t, IsCode(outer, ErrCodeNotFound))
	assert.False(t, IsCode(outer, ErrCodeTemplate))
	assert.False(t, IsCode(nil, ErrCodeStore))
	assert.False(t, IsCode(errors.New("plain"), ErrCodeStore))
}

func TestAsAndIs(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := Wrap(sentinel, ErrCodeSystemError, "boom", "", "")

	assert.True(t, Is(err, sentinel))

	var coded *Error
	assert.True(t, As(fmt.Errorf("context: %w", err), &coded))
	assert.Equal(t, ErrCodeSystemError, coded.Code)
}

func TestHelpersCarryCodes(t *testing.T) {
	assert.Equal(t, ErrCodeFormat, FormatError("mac address", "zz", "bad").Code)
	assert.Equal(t, ErrCodeRange, RangeError("port id", "99", "too big").Code)
	assert.Equal(t, ErrCodeTemplate, TemplateError("next", "bad").Code)
	assert.Equal(t, ErrCodeConfigNotFound, ConfigNotFound("/etc/x.yaml").Code)
}
