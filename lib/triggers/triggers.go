package triggers

import (
	"context"
	"encoding/json"

	"userpoold/lib/apierr"
	"userpoold/lib/models"

	"github.com/aws/aws-lambda-go/events"
)

// Triggers adapts the targets' ergonomic call shapes into the structured
// event envelopes external hooks expect, and unwraps their responses.
type Triggers struct {
	invoker *Invoker
}

// New builds a Triggers façade over invoker.
func New(invoker *Invoker) *Triggers {
	return &Triggers{invoker: invoker}
}

// Enabled reports whether name has a configured function.
func (t *Triggers) Enabled(name Name) bool { return t.invoker.Enabled(name) }

// PreSignUpResult is the trigger's decision about the new user.
type PreSignUpResult struct {
	AutoConfirmUser bool
	AutoVerifyEmail bool
	AutoVerifyPhone bool
}

// PreSignUp invokes the PreSignUp hook for a new user being created under
// source (e.g. "PreSignUp_SignUp", "PreSignUp_AdminCreateUser").
func (t *Triggers) PreSignUp(ctx context.Context, poolId, clientId, source, username string, attrs, validationData, clientMetadata map[string]string) (PreSignUpResult, error) {
	if !t.Enabled(PreSignUp) {
		return PreSignUpResult{}, nil
	}
	event := buildPreSignUp(source, poolId, clientId, username, attrs, validationData, clientMetadata)
	raw, err := t.invoker.Invoke(ctx, PreSignUp, event)
	if err != nil {
		return PreSignUpResult{}, err
	}
	var resp events.CognitoEventUserPoolsPreSignupResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return PreSignUpResult{}, apierr.InvalidLambdaResponse("PreSignUp response was not valid JSON")
	}
	return PreSignUpResult{
		AutoConfirmUser: resp.AutoConfirmUser,
		AutoVerifyEmail: resp.AutoVerifyEmail,
		AutoVerifyPhone: resp.AutoVerifyPhone,
	}, nil
}

// PostConfirmation invokes the PostConfirmation hook; its response carries
// no fields the flows act on.
func (t *Triggers) PostConfirmation(ctx context.Context, poolId, clientId, source, username string, attrs, clientMetadata map[string]string) error {
	if !t.Enabled(PostConfirmation) {
		return nil
	}
	event := buildPostConfirmation(source, poolId, clientId, username, attrs, clientMetadata)
	_, err := t.invoker.Invoke(ctx, PostConfirmation, event)
	return err
}

// PostAuthentication invokes the PostAuthentication hook.
func (t *Triggers) PostAuthentication(ctx context.Context, poolId, clientId, username string, attrs, clientMetadata map[string]string) error {
	if !t.Enabled(PostAuthentication) {
		return nil
	}
	event := buildPostAuthentication("PostAuthentication_Authentication", poolId, clientId, username, attrs, clientMetadata)
	_, err := t.invoker.Invoke(ctx, PostAuthentication, event)
	return err
}

// UserMigration invokes the UserMigration hook and, when the trigger
// returns user attributes, builds the User record it describes. ok is
// false when the trigger declined to migrate the user.
func (t *Triggers) UserMigration(ctx context.Context, poolId, clientId, username, password string, validationData, clientMetadata map[string]string) (user *models.User, ok bool, err error) {
	if !t.Enabled(UserMigration) {
		return nil, false, nil
	}
	event := buildUserMigration("UserMigration_Authentication", poolId, clientId, username, password, validationData, clientMetadata)
	raw, err := t.invoker.Invoke(ctx, UserMigration, event)
	if err != nil {
		return nil, false, err
	}
	var resp events.CognitoEventUserPoolsMigrateUserResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false, apierr.InvalidLambdaResponse("UserMigration response was not valid JSON")
	}
	if len(resp.UserAttributes) == 0 {
		return nil, false, nil
	}

	status := models.StatusConfirmed
	if resp.FinalUserStatus != "" {
		status = models.UserStatus(resp.FinalUserStatus)
	}
	attrs := make([]models.AttributeType, 0, len(resp.UserAttributes)+1)
	for name, value := range resp.UserAttributes {
		attrs = append(attrs, models.AttributeType{Name: name, Value: value})
	}
	return &models.User{
		Username:    username,
		Attributes:  attrs,
		Password:    password,
		UserStatus:  status,
		Enabled:     true,
	}, true, nil
}

// CustomMessageResult is the trigger's rendered message, before
// placeholder interpolation.
type CustomMessageResult struct {
	SMSMessage   string
	EmailMessage string
	EmailSubject string
}

// CustomMessage invokes the CustomMessage hook for source (e.g.
// "CustomMessage_SignUp"). Enabled reports ok=false when no function is
// configured, so callers fall back to a built-in template.
func (t *Triggers) CustomMessage(ctx context.Context, poolId, clientId, source, username string, attrs, clientMetadata map[string]string, code string) (result CustomMessageResult, ok bool, err error) {
	if !t.Enabled(CustomMessage) {
		return CustomMessageResult{}, false, nil
	}
	event := buildCustomMessage(source, poolId, clientId, username, attrs, clientMetadata, code)
	raw, err := t.invoker.Invoke(ctx, CustomMessage, event)
	if err != nil {
		return CustomMessageResult{}, false, err
	}
	var resp events.CognitoEventUserPoolsCustomMessageResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return CustomMessageResult{}, false, apierr.InvalidLambdaResponse("CustomMessage response was not valid JSON")
	}
	return CustomMessageResult{
		SMSMessage:   resp.SMSMessage,
		EmailMessage: resp.EmailMessage,
		EmailSubject: resp.EmailSubject,
	}, true, nil
}

// PreTokenGeneration invokes the PreTokenGeneration hook and returns the
// claims overrides for both token kinds.
func (t *Triggers) PreTokenGeneration(ctx context.Context, poolId, clientId, username string, attrs, clientMetadata map[string]string) (events.ClaimsAndScopeOverrideDetailsV2_0, bool, error) {
	if !t.Enabled(PreTokenGeneration) {
		return events.ClaimsAndScopeOverrideDetailsV2_0{}, false, nil
	}
	event := buildPreTokenGeneration("TokenGeneration_Authentication", poolId, clientId, username, attrs, clientMetadata)
	raw, err := t.invoker.Invoke(ctx, PreTokenGeneration, event)
	if err != nil {
		return events.ClaimsAndScopeOverrideDetailsV2_0{}, false, err
	}
	var resp events.CognitoEventUserPoolsPreTokenGenResponseV2_0
	if err := json.Unmarshal(raw, &resp); err != nil {
		return events.ClaimsAndScopeOverrideDetailsV2_0{}, false, apierr.InvalidLambdaResponse("PreTokenGeneration response was not valid JSON")
	}
	return resp.ClaimsAndScopeOverrideDetails, true, nil
}
