package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := MissingSheet("Jan Final by Product")
	wrapped := Wrapf(base, "failed to read %s", "January")

	assert.Equal(t, CodeMissingSheet, GetCode(wrapped))
	assert.True(t, HasCode(wrapped, CodeMissingSheet))
	assert.Equal(t, `failed to read January: missing expected sheet "Jan Final by Product"`, wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrap(stderrors.New("disk full"), "save failed")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("period Mar")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Wrap(InvalidInput("bad"), "query")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(MissingColumn("s", "c")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("boom")))
}
