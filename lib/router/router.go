package router

import (
	"encoding/json"

	"userpoold/lib/apierr"
	"userpoold/lib/clock"
	"userpoold/lib/cognito"
	"userpoold/lib/messages"
	"userpoold/lib/otp"
	"userpoold/lib/tokens"
	"userpoold/lib/triggers"
)

// Target is one operation handler: decode the typed request from body,
// act, and return the typed response (or a *apierr.Error).
type Target func(rc *Context, body json.RawMessage) (interface{}, error)

// Router holds the closed map of wire operation name to Target, assembled
// once at startup from the shared service graph.
type Router struct {
	targets map[string]Target
}

// Services is the collaborator graph every target is constructed against.
type Services struct {
	Cognito  *cognito.CognitoService
	Triggers *triggers.Triggers
	Messages *messages.Messages
	Tokens   *tokens.Generator
	OTP      otp.Generator
	Clock    clock.Clock
}

// New builds a Router with every supported operation wired against svcs.
func New(svcs *Services) *Router {
	r := &Router{targets: map[string]Target{}}

	r.targets["CreateUserPool"] = createUserPool(svcs)
	r.targets["DescribeUserPool"] = describeUserPool(svcs)
	r.targets["DeleteUserPool"] = deleteUserPool(svcs)
	r.targets["ListUserPools"] = listUserPools(svcs)
	r.targets["CreateUserPoolClient"] = createUserPoolClient(svcs)
	r.targets["DescribeUserPoolClient"] = describeUserPoolClient(svcs)
	r.targets["DeleteUserPoolClient"] = deleteUserPoolClient(svcs)
	r.targets["GetUserPoolMfaConfig"] = getUserPoolMfaConfig(svcs)

	r.targets["SignUp"] = signUp(svcs)
	r.targets["ConfirmSignUp"] = confirmSignUp(svcs)
	r.targets["AdminCreateUser"] = adminCreateUser(svcs)
	r.targets["AdminConfirmSignUp"] = adminConfirmSignUp(svcs)

	r.targets["InitiateAuth"] = initiateAuth(svcs)
	r.targets["AdminInitiateAuth"] = adminInitiateAuth(svcs)
	r.targets["RespondToAuthChallenge"] = respondToAuthChallenge(svcs)
	r.targets["RevokeToken"] = revokeToken(svcs)

	r.targets["ForgotPassword"] = forgotPassword(svcs)
	r.targets["ConfirmForgotPassword"] = confirmForgotPassword(svcs)
	r.targets["ChangePassword"] = changePassword(svcs)
	r.targets["AdminSetUserPassword"] = adminSetUserPassword(svcs)

	r.targets["UpdateUserAttributes"] = updateUserAttributes(svcs)
	r.targets["AdminUpdateUserAttributes"] = adminUpdateUserAttributes(svcs)
	r.targets["AdminDeleteUserAttributes"] = adminDeleteUserAttributes(svcs)
	r.targets["DeleteUserAttributes"] = deleteUserAttributes(svcs)
	r.targets["VerifyUserAttribute"] = verifyUserAttribute(svcs)
	r.targets["GetUserAttributeVerificationCode"] = getUserAttributeVerificationCode(svcs)

	r.targets["GetUser"] = getUser(svcs)
	r.targets["AdminGetUser"] = adminGetUser(svcs)
	r.targets["DeleteUser"] = deleteUser(svcs)
	r.targets["AdminDeleteUser"] = adminDeleteUser(svcs)
	r.targets["ListUsers"] = listUsers(svcs)
	r.targets["CreateGroup"] = createGroup(svcs)
	r.targets["ListGroups"] = listGroups(svcs)

	return r
}

// Route dispatches operationName against body, returning the JSON-ready
// response value or a wire-taxonomy error.
func (r *Router) Route(rc *Context, operationName string, body json.RawMessage) (interface{}, error) {
	target, ok := r.targets[operationName]
	if !ok {
		return nil, apierr.Unsupported("operation " + operationName + " is not implemented")
	}
	return target(rc, body)
}

func decodeRequest(body json.RawMessage, out interface{}) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apierr.InvalidParameter("malformed request body: " + err.Error())
	}
	return nil
}
