package util

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ConditionalString(t *testing.T) {
	assert.Equal(t, "yes", ConditionalString(true, "yes", "no"))
	assert.Equal(t, "no", ConditionalString(false, "yes", "no"))
}

func Test_SetLogLevel_RecognizedLevels(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"warn":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"info":    logrus.InfoLevel,
		"bogus":   logrus.InfoLevel,
	}
	for level, want := range cases {
		logger := logrus.New()
		SetLogLevel(logger, level)
		assert.Equal(t, want, logger.GetLevel(), level)
	}
}

func Test_NewLogger_UsesJSONFormatter(t *testing.T) {
	// Arrange / Act
	logger := NewLogger("debug")

	// Assert
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	_, ok := logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}

func Test_WriteJSON_WritesBodyAndStatus(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()

	// Act
	WriteJSON(w, 201, map[string]string{"a": "b"})

	// Assert
	assert.Equal(t, 201, w.Code)
	assert.Equal(t, "application/x-amz-json-1.1", w.Header().Get("Content-Type"))
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	assert.Equal(t, "b", decoded["a"])
}

func Test_WriteWireError_WritesTypeAndMessage(t *testing.T) {
	// Arrange
	w := httptest.NewRecorder()

	// Act
	WriteWireError(w, 400, "ResourceNotFoundError", "User pool p1 does not exist.")

	// Assert
	assert.Equal(t, 400, w.Code)
	var decoded WireError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	assert.Equal(t, "ResourceNotFoundError", decoded.Type)
	assert.Equal(t, "User pool p1 does not exist.", decoded.Message)
}
