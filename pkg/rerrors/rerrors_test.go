package rerrors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeSpriteNotFound, "sprite xyz not found")
	require.NotNil(t, err)
	assert.Equal(t, CodeSpriteNotFound, err.Code)
	assert.Equal(t, "sprite xyz not found", err.Message)
	assert.Nil(t, err.Underlying)
	assert.NotEmpty(t, err.Stack)
	assert.False(t, err.Retryable)
}

func TestWrapPreservesUnderlying(t *testing.T) {
	underlying := errors.New("original error")
	err := Wrap(underlying, CodeFailedReadingPath, "failed to read")
	require.NotNil(t, err)
	assert.Same(t, underlying, err.Underlying)
	assert.Equal(t, CodeFailedReadingPath, err.Code)
	assert.Contains(t, err.Error(), "original error")
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "test"))
}

func TestWithContext(t *testing.T) {
	err := New(CodeFailedDrawing, "draw failed")
	err.WithContext("object", "rect-1").WithContext("attempt", 1)
	assert.Equal(t, "rect-1", err.Context["object"])
	assert.Equal(t, 1, err.Context["attempt"])
	assert.Contains(t, err.Error(), "object")
}

func TestWithRetryable(t *testing.T) {
	err := New(CodeChannelSend, "send failed").WithRetryable(true)
	assert.True(t, err.Retryable)
}

func TestUnwrap(t *testing.T) {
	underlying := errors.New("underlying")
	err := Wrap(underlying, CodeInternal, "wrapped")
	assert.Same(t, underlying, err.Unwrap())
	assert.True(t, errors.Is(err, underlying))
}

func TestIsCode(t *testing.T) {
	err := New(CodeSpriteNotFound, "not found")
	assert.True(t, IsCode(err, CodeSpriteNotFound))
	assert.False(t, IsCode(err, CodeInternal))
	assert.False(t, IsCode(nil, CodeSpriteNotFound))

	stdErr := errors.New("standard")
	assert.False(t, IsCode(stdErr, CodeInternal))
}

func TestGetCode(t *testing.T) {
	err := New(CodeDisplayKeyNotFound, "missing")
	assert.Equal(t, CodeDisplayKeyNotFound, GetCode(err))
	assert.Equal(t, ErrorCode(""), GetCode(nil))
	assert.Equal(t, CodeInternal, GetCode(errors.New("standard")))
}

func TestDisplayKeyNotFound(t *testing.T) {
	err := DisplayKeyNotFound("main")
	assert.Equal(t, CodeDisplayKeyNotFound, err.Code)
	assert.Equal(t, "main", err.Context["screen"])
}

func TestDrawableHandleNotFound(t *testing.T) {
	err := DrawableHandleNotFound("main", 7)
	assert.Equal(t, CodeDrawableHandleNotFound, err.Code)
	assert.True(t, strings.Contains(err.Error(), "7"))
}

func TestSpriteFrameNotFound(t *testing.T) {
	err := SpriteFrameNotFound("explosion", 3)
	assert.Equal(t, CodeSpriteFrameNotFound, err.Code)
	assert.Equal(t, uint16(3), err.Context["frame"])
}

func TestWrongDrawableType(t *testing.T) {
	err := WrongDrawableType("SinglePointed", "MultiPointed")
	assert.Equal(t, CodeWrongDrawableType, err.Code)
	assert.Contains(t, err.Error(), "SinglePointed")
	assert.Contains(t, err.Error(), "MultiPointed")
}

func TestDidNotReceiveIDResponse(t *testing.T) {
	err := DidNotReceiveIDResponse()
	assert.Equal(t, CodeDidNotReceiveIDResponse, err.Code)
}

func TestReceiveUnexpectedResponse(t *testing.T) {
	err := ReceiveUnexpectedResponse("SubscriptionId", "Ack")
	assert.Equal(t, CodeReceiveUnexpectedResponse, err.Code)
	assert.Equal(t, "SubscriptionId", err.Context["expected"])
	assert.Equal(t, "Ack", err.Context["received"])
}

func TestBuilderErrors(t *testing.T) {
	assert.Equal(t, CodeNoDrawableAdded, NoDrawableAdded().Code)
	assert.Equal(t, CodeNoLayerAdded, NoLayerAdded().Code)
	assert.Equal(t, CodeNoScreenAdded, NoScreenAdded().Code)
	assert.Equal(t, CodeNoLifetimeAdded, NoLifetimeAdded().Code)
}
