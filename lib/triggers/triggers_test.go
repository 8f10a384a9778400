package triggers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Triggers_PreSignUp_Disabled_ReturnsZeroValue(t *testing.T) {
	// Arrange
	trig := New(NewInvoker(nil, &mockLambdaAPI{}, nil))

	// Act
	result, err := trig.PreSignUp(context.Background(), "pool1", "client1", "PreSignUp_SignUp", "alice", nil, nil, nil)

	// Assert
	require.NoError(t, err)
	assert.False(t, result.AutoConfirmUser)
}

func Test_Triggers_PreSignUp_Enabled_AppliesResponse(t *testing.T) {
	// Arrange
	mock := &mockLambdaAPI{TestSuccess: true, Response: map[string]interface{}{
		"autoConfirmUser": true,
		"autoVerifyEmail": true,
	}}
	trig := New(NewInvoker(map[Name]string{PreSignUp: "fn"}, mock, nil))

	// Act
	result, err := trig.PreSignUp(context.Background(), "pool1", "client1", "PreSignUp_SignUp", "alice", map[string]string{"email": "a@x.com"}, nil, nil)

	// Assert
	require.NoError(t, err)
	assert.True(t, result.AutoConfirmUser)
	assert.True(t, result.AutoVerifyEmail)
	assert.False(t, result.AutoVerifyPhone)
}

func Test_Triggers_UserMigration_Disabled_ReturnsNotOK(t *testing.T) {
	// Arrange
	trig := New(NewInvoker(nil, &mockLambdaAPI{}, nil))

	// Act
	user, ok, err := trig.UserMigration(context.Background(), "pool1", "client1", "alice", "pw", nil, nil)

	// Assert
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, user)
}

func Test_Triggers_UserMigration_Enabled_BuildsUser(t *testing.T) {
	// Arrange
	mock := &mockLambdaAPI{TestSuccess: true, Response: map[string]interface{}{
		"userAttributes":  map[string]interface{}{"email": "a@x.com"},
		"finalUserStatus": "CONFIRMED",
	}}
	trig := New(NewInvoker(map[Name]string{UserMigration: "fn"}, mock, nil))

	// Act
	user, ok, err := trig.UserMigration(context.Background(), "pool1", "client1", "alice", "pw", nil, nil)

	// Assert
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
	v, found := user.Attribute("email")
	assert.True(t, found)
	assert.Equal(t, "a@x.com", v)
}

func Test_Triggers_CustomMessage_Disabled_FallsBack(t *testing.T) {
	// Arrange
	trig := New(NewInvoker(nil, &mockLambdaAPI{}, nil))

	// Act
	_, ok, err := trig.CustomMessage(context.Background(), "pool1", "client1", "CustomMessage_SignUp", "alice", nil, nil, "123456")

	// Assert
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_Triggers_Enabled_DelegatesToInvoker(t *testing.T) {
	// Arrange
	trig := New(NewInvoker(map[Name]string{CustomMessage: "fn"}, &mockLambdaAPI{}, nil))

	// Act / Assert
	assert.True(t, trig.Enabled(CustomMessage))
	assert.False(t, trig.Enabled(PreSignUp))
}
