package router

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"userpoold/lib/apierr"
	"userpoold/lib/clock"
	"userpoold/lib/cognito"
	"userpoold/lib/messages"
	"userpoold/lib/models"
	"userpoold/lib/store"
	"userpoold/lib/tokens"
	"userpoold/lib/triggers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequentialOTP returns deterministic, incrementing six digit codes, so
// tests can assert against an exact confirmation code instead of capturing
// it out of band.
type sequentialOTP struct{ next int }

func (o *sequentialOTP) Generate() (string, error) {
	o.next++
	return fmtSixDigit(o.next), nil
}

func fmtSixDigit(n int) string {
	digits := [6]byte{'0', '0', '0', '0', '0', '0'}
	for i := 5; i >= 0 && n > 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[:])
}

// capturingSink records every delivered message instead of sending it
// anywhere, so tests can recover the confirmation/MFA code without
// reaching into store internals.
type capturingSink struct {
	messages []string
}

func (s *capturingSink) Deliver(_ context.Context, _ messages.DeliveryDetails, _ string, message string) error {
	s.messages = append(s.messages, message)
	return nil
}

type harness struct {
	router *Router
	svcs   *Services
	sink   *capturingSink
	otp    *sequentialOTP
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	factory := store.NewFactory(store.FileBackend{Dir: dir}, nil)
	clk := &clock.Fixed{At: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cognitoSvc := cognito.New(factory, clk, nil)
	trig := triggers.New(triggers.NewInvoker(nil, nil, nil))
	sink := &capturingSink{}
	msgs := messages.New(trig, sink)
	key, err := tokens.NewKeyMaterial()
	require.NoError(t, err)
	tok := tokens.New(key, trig, clk, "http://localhost:9229")
	genOtp := &sequentialOTP{}

	svcs := &Services{
		Cognito:  cognitoSvc,
		Triggers: trig,
		Messages: msgs,
		Tokens:   tok,
		OTP:      genOtp,
		Clock:    clk,
	}
	return &harness{router: New(svcs), svcs: svcs, sink: sink, otp: genOtp}
}

func (h *harness) route(t *testing.T, op string, req interface{}) (json.RawMessage, error) {
	t.Helper()
	rc := &Context{Ctx: context.Background(), Logger: nil, RequestId: "test"}
	var body json.RawMessage
	if req != nil {
		data, err := json.Marshal(req)
		require.NoError(t, err)
		body = data
	}
	resp, err := h.router.Route(rc, op, body)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	return data, nil
}

func (h *harness) createPoolAndClient(t *testing.T, autoVerify []string) (poolId, clientId string) {
	t.Helper()
	raw, err := h.route(t, "CreateUserPool", createUserPoolRequest{
		PoolName:               "test-pool",
		AutoVerifiedAttributes: autoVerify,
	})
	require.NoError(t, err)
	var poolResp userPoolResponse
	require.NoError(t, json.Unmarshal(raw, &poolResp))

	raw, err = h.route(t, "CreateUserPoolClient", createUserPoolClientRequest{
		UserPoolId: poolResp.UserPool.Id,
		ClientName: "web",
	})
	require.NoError(t, err)
	var clientResp appClientResponse
	require.NoError(t, json.Unmarshal(raw, &clientResp))
	return poolResp.UserPool.Id, clientResp.UserPoolClient.ClientId
}

func Test_EndToEnd_DuplicateSignUp_ReturnsUsernameExists(t *testing.T) {
	// Arrange
	h := newHarness(t)
	_, clientId := h.createPoolAndClient(t, []string{"email"})
	req := signUpRequest{
		ClientId:       clientId,
		Username:       "alice",
		Password:       "Passw0rd!",
		UserAttributes: []models.AttributeType{{Name: "email", Value: "alice@example.com"}},
	}

	// Act
	_, err := h.route(t, "SignUp", req)
	require.NoError(t, err)
	_, err = h.route(t, "SignUp", req)

	// Assert
	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "UsernameExistsError", apiErr.Type)
}

func Test_EndToEnd_SignUpConfirmSignIn(t *testing.T) {
	// Arrange
	h := newHarness(t)
	_, clientId := h.createPoolAndClient(t, []string{"email"})

	// Act: sign up
	_, err := h.route(t, "SignUp", signUpRequest{
		ClientId:       clientId,
		Username:       "alice",
		Password:       "Passw0rd!",
		UserAttributes: []models.AttributeType{{Name: "email", Value: "alice@example.com"}},
	})
	require.NoError(t, err)
	require.Len(t, h.sink.messages, 1)

	// Act: confirm using the deterministic code the fake generator produced
	_, err = h.route(t, "ConfirmSignUp", confirmSignUpRequest{
		ClientId:         clientId,
		Username:         "alice",
		ConfirmationCode: "000001",
	})
	require.NoError(t, err)

	// Act: sign in
	raw, err := h.route(t, "InitiateAuth", initiateAuthRequest{
		ClientId: clientId,
		AuthFlow: "USER_PASSWORD_AUTH",
		AuthParameters: map[string]string{
			"USERNAME": "alice",
			"PASSWORD": "Passw0rd!",
		},
	})

	// Assert
	require.NoError(t, err)
	var authResp initiateAuthResponse
	require.NoError(t, json.Unmarshal(raw, &authResp))
	require.NotNil(t, authResp.AuthenticationResult)
	assert.NotEmpty(t, authResp.AuthenticationResult.AccessToken)
	assert.NotEmpty(t, authResp.AuthenticationResult.RefreshToken)
}

func Test_EndToEnd_ConfirmSignUp_WrongCode_ReturnsCodeMismatch(t *testing.T) {
	// Arrange
	h := newHarness(t)
	_, clientId := h.createPoolAndClient(t, []string{"email"})
	_, err := h.route(t, "SignUp", signUpRequest{
		ClientId:       clientId,
		Username:       "alice",
		Password:       "Passw0rd!",
		UserAttributes: []models.AttributeType{{Name: "email", Value: "alice@example.com"}},
	})
	require.NoError(t, err)

	// Act
	_, err = h.route(t, "ConfirmSignUp", confirmSignUpRequest{
		ClientId:         clientId,
		Username:         "alice",
		ConfirmationCode: "999999",
	})

	// Assert
	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "CodeMismatchError", apiErr.Type)
}

func Test_EndToEnd_ConfirmSignUp_Replay_ReturnsNotAuthorized(t *testing.T) {
	// Arrange
	h := newHarness(t)
	_, clientId := h.createPoolAndClient(t, []string{"email"})
	_, err := h.route(t, "SignUp", signUpRequest{
		ClientId:       clientId,
		Username:       "alice",
		Password:       "Passw0rd!",
		UserAttributes: []models.AttributeType{{Name: "email", Value: "alice@example.com"}},
	})
	require.NoError(t, err)
	_, err = h.route(t, "ConfirmSignUp", confirmSignUpRequest{
		ClientId:         clientId,
		Username:         "alice",
		ConfirmationCode: "000001",
	})
	require.NoError(t, err)

	// Act: confirm again with the same code, now that it has been cleared
	_, err = h.route(t, "ConfirmSignUp", confirmSignUpRequest{
		ClientId:         clientId,
		Username:         "alice",
		ConfirmationCode: "000001",
	})

	// Assert
	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NotAuthorizedError", apiErr.Type)
}

func Test_EndToEnd_RefreshTokenFlow(t *testing.T) {
	// Arrange
	h := newHarness(t)
	_, clientId := h.createPoolAndClient(t, []string{"email"})
	_, err := h.route(t, "SignUp", signUpRequest{
		ClientId:       clientId,
		Username:       "alice",
		Password:       "Passw0rd!",
		UserAttributes: []models.AttributeType{{Name: "email", Value: "alice@example.com"}},
	})
	require.NoError(t, err)
	_, err = h.route(t, "ConfirmSignUp", confirmSignUpRequest{
		ClientId:         clientId,
		Username:         "alice",
		ConfirmationCode: "000001",
	})
	require.NoError(t, err)
	raw, err := h.route(t, "InitiateAuth", initiateAuthRequest{
		ClientId: clientId,
		AuthFlow: "USER_PASSWORD_AUTH",
		AuthParameters: map[string]string{
			"USERNAME": "alice",
			"PASSWORD": "Passw0rd!",
		},
	})
	require.NoError(t, err)
	var authResp initiateAuthResponse
	require.NoError(t, json.Unmarshal(raw, &authResp))
	refreshToken := authResp.AuthenticationResult.RefreshToken

	// Act
	raw, err = h.route(t, "InitiateAuth", initiateAuthRequest{
		ClientId: clientId,
		AuthFlow: "REFRESH_TOKEN_AUTH",
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": refreshToken,
		},
	})

	// Assert
	require.NoError(t, err)
	var refreshResp initiateAuthResponse
	require.NoError(t, json.Unmarshal(raw, &refreshResp))
	require.NotNil(t, refreshResp.AuthenticationResult)
	assert.NotEmpty(t, refreshResp.AuthenticationResult.AccessToken)
	assert.Empty(t, refreshResp.AuthenticationResult.RefreshToken)
}

func Test_EndToEnd_DescribeUserPool_Missing_ReturnsResourceNotFound(t *testing.T) {
	// Arrange
	h := newHarness(t)

	// Act
	_, err := h.route(t, "DescribeUserPool", poolIdRequest{UserPoolId: "missing"})

	// Assert
	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "ResourceNotFoundError", apiErr.Type)
}

func Test_EndToEnd_UnknownOperation_ReturnsUnsupported(t *testing.T) {
	// Arrange
	h := newHarness(t)

	// Act
	_, err := h.route(t, "SomeUnknownOperation", nil)

	// Assert
	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "UnsupportedError", apiErr.Type)
}

func Test_EndToEnd_AdminCreateUser_ForceChangePasswordChallenge(t *testing.T) {
	// Arrange
	h := newHarness(t)
	poolId, clientId := h.createPoolAndClient(t, nil)
	raw, err := h.route(t, "AdminCreateUser", adminCreateUserRequest{
		UserPoolId:        poolId,
		Username:          "bob",
		TemporaryPassword: "Temp-12345",
	})
	require.NoError(t, err)
	var created adminCreateUserResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, models.StatusForceChangePassword, created.User.UserStatus)

	// Act
	raw, err = h.route(t, "InitiateAuth", initiateAuthRequest{
		ClientId: clientId,
		AuthFlow: "USER_PASSWORD_AUTH",
		AuthParameters: map[string]string{
			"USERNAME": "bob",
			"PASSWORD": "Temp-12345",
		},
	})

	// Assert
	require.NoError(t, err)
	var authResp initiateAuthResponse
	require.NoError(t, json.Unmarshal(raw, &authResp))
	assert.Equal(t, "NEW_PASSWORD_REQUIRED", authResp.ChallengeName)
	assert.NotEmpty(t, authResp.Session)
}
