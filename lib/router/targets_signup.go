package router

import (
	"encoding/json"

	"userpoold/lib/apierr"
	"userpoold/lib/cognito"
	"userpoold/lib/models"
	"userpoold/lib/triggers"

	"github.com/google/uuid"
)

type signUpRequest struct {
	ClientId       string                 `json:"ClientId"`
	Username       string                 `json:"Username"`
	Password       string                 `json:"Password"`
	UserAttributes []models.AttributeType `json:"UserAttributes,omitempty"`
	ValidationData []models.AttributeType `json:"ValidationData,omitempty"`
	ClientMetadata map[string]string      `json:"ClientMetadata,omitempty"`
}

type signUpResponse struct {
	UserConfirmed       bool                 `json:"UserConfirmed"`
	UserSub             string               `json:"UserSub"`
	CodeDeliveryDetails *codeDeliveryDetails `json:"CodeDeliveryDetails,omitempty"`
}

func attrMapOf(attrs []models.AttributeType) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a.Value
	}
	return m
}

func signUp(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req signUpRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPoolForClientId(rc.Ctx, req.ClientId)
		if err != nil {
			return nil, err
		}
		if existing, err := pool.GetUserByUsername(rc.Ctx, req.Username); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, apierr.UsernameExists("An account with the given username already exists.")
		}
		return createAndConfirmUser(rc, svcs, pool, req.ClientId, req.Username, req.Password, req.UserAttributes, req.ValidationData, req.ClientMetadata, false)
	}
}

// createAndConfirmUser implements the shared body of SignUp and
// AdminCreateUser: construct the user, run PreSignUp, resolve the
// confirmation delivery channel, send the code, persist, and fire
// PostConfirmation when the user ends up auto-confirmed.
func createAndConfirmUser(rc *Context, svcs *Services, pool *cognito.UserPoolService, clientId, username, password string, userAttrs, validationData []models.AttributeType, clientMetadata map[string]string, admin bool) (signUpResponse, error) {
	now := svcs.Clock.Now()
	sub := uuid.New().String()
	attrs := append([]models.AttributeType{{Name: "sub", Value: sub}}, userAttrs...)

	user := &models.User{
		Username:             username,
		Attributes:           attrs,
		Password:             password,
		Enabled:              true,
		RefreshTokens:        []string{},
		UserCreateDate:       now,
		UserLastModifiedDate: now,
	}
	if admin {
		user.UserStatus = models.StatusForceChangePassword
	} else {
		user.UserStatus = models.StatusUnconfirmed
	}

	source := "PreSignUp_SignUp"
	if admin {
		source = "PreSignUp_AdminCreateUser"
	}
	if svcs.Triggers.Enabled(triggers.PreSignUp) {
		result, err := svcs.Triggers.PreSignUp(rc.Ctx, pool.Pool().Id, clientId, source, username, attrMapOf(user.Attributes), attrMapOf(validationData), clientMetadata)
		if err != nil {
			return signUpResponse{}, err
		}
		if result.AutoConfirmUser {
			user.UserStatus = models.StatusConfirmed
		}
		if result.AutoVerifyEmail {
			if _, ok := user.Attribute("email"); ok {
				user.SetAttribute("email_verified", "true")
			}
		}
		if result.AutoVerifyPhone {
			if _, ok := user.Attribute("phone_number"); ok {
				user.SetAttribute("phone_number_verified", "true")
			}
		}
	}

	var delivery *codeDeliveryDetails
	attrName, skip, err := determineDeliveryChannel(pool.Pool(), user)
	if err != nil {
		return signUpResponse{}, err
	}
	if !skip {
		code, err := svcs.OTP.Generate()
		if err != nil {
			return signUpResponse{}, err
		}
		user.ConfirmationCode = code
		msgDetails, wireDetails := deliveryDetailsFor(attrName, user)
		if err := svcs.Messages.Deliver(rc.Ctx, "SignUp", clientId, pool.Pool().Id, user, code, clientMetadata, msgDetails); err != nil {
			return signUpResponse{}, err
		}
		delivery = &wireDetails
	}

	if err := pool.SaveUser(rc.Ctx, user); err != nil {
		return signUpResponse{}, err
	}

	if user.UserStatus == models.StatusConfirmed && svcs.Triggers.Enabled(triggers.PostConfirmation) {
		attrsMap := attrMapOf(user.Attributes)
		attrsMap["cognito:user_status"] = "CONFIRMED"
		if err := svcs.Triggers.PostConfirmation(rc.Ctx, pool.Pool().Id, clientId, "PostConfirmation_ConfirmSignUp", username, attrsMap, clientMetadata); err != nil {
			return signUpResponse{}, err
		}
	}

	return signUpResponse{
		UserConfirmed:       user.UserStatus == models.StatusConfirmed,
		UserSub:             sub,
		CodeDeliveryDetails: delivery,
	}, nil
}

type confirmSignUpRequest struct {
	ClientId         string `json:"ClientId"`
	Username         string `json:"Username"`
	ConfirmationCode string `json:"ConfirmationCode"`
	ClientMetadata   map[string]string `json:"ClientMetadata,omitempty"`
}

func confirmSignUp(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req confirmSignUpRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPoolForClientId(rc.Ctx, req.ClientId)
		if err != nil {
			return nil, err
		}
		user, err := pool.GetUserByUsername(rc.Ctx, req.Username)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apierr.UserNotFound("User does not exist.")
		}
		if user.ConfirmationCode == "" {
			return nil, apierr.NotAuthorized("User cannot be confirmed. Current status is not UNCONFIRMED.")
		}
		if user.ConfirmationCode != req.ConfirmationCode {
			return nil, apierr.CodeMismatch("Invalid verification code provided, please try again.")
		}

		user.UserStatus = models.StatusConfirmed
		user.ConfirmationCode = ""
		user.UserLastModifiedDate = svcs.Clock.Now()
		if _, ok := user.Attribute("email"); ok {
			user.SetAttribute("email_verified", "true")
		}
		if _, ok := user.Attribute("phone_number"); ok {
			user.SetAttribute("phone_number_verified", "true")
		}
		if err := pool.SaveUser(rc.Ctx, user); err != nil {
			return nil, err
		}

		if svcs.Triggers.Enabled(triggers.PostConfirmation) {
			attrsMap := attrMapOf(user.Attributes)
			attrsMap["cognito:user_status"] = "CONFIRMED"
			if err := svcs.Triggers.PostConfirmation(rc.Ctx, pool.Pool().Id, req.ClientId, "PostConfirmation_ConfirmSignUp", req.Username, attrsMap, req.ClientMetadata); err != nil {
				return nil, err
			}
		}
		return struct{}{}, nil
	}
}

type adminRequest struct {
	UserPoolId string `json:"UserPoolId"`
	Username   string `json:"Username"`
}

type adminCreateUserRequest struct {
	UserPoolId       string                 `json:"UserPoolId"`
	Username         string                 `json:"Username"`
	TemporaryPassword string                `json:"TemporaryPassword,omitempty"`
	UserAttributes   []models.AttributeType `json:"UserAttributes,omitempty"`
	ValidationData   []models.AttributeType `json:"ValidationData,omitempty"`
	ClientMetadata   map[string]string      `json:"ClientMetadata,omitempty"`
}

type adminCreateUserResponse struct {
	User *models.User `json:"User"`
}

func adminCreateUser(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req adminCreateUserRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPool(rc.Ctx, req.UserPoolId)
		if err != nil {
			return nil, err
		}
		if existing, err := pool.GetUserByUsername(rc.Ctx, req.Username); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, apierr.UsernameExists("An account with the given username already exists.")
		}

		password := req.TemporaryPassword
		if password == "" {
			code, err := svcs.OTP.Generate()
			if err != nil {
				return nil, err
			}
			password = "Temp-" + code
		}

		if _, err := createAndConfirmUser(rc, svcs, pool, "", req.Username, password, req.UserAttributes, req.ValidationData, req.ClientMetadata, true); err != nil {
			return nil, err
		}
		user, err := pool.GetUserByUsername(rc.Ctx, req.Username)
		if err != nil {
			return nil, err
		}
		return adminCreateUserResponse{User: user}, nil
	}
}

func adminConfirmSignUp(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req adminRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPool(rc.Ctx, req.UserPoolId)
		if err != nil {
			return nil, err
		}
		user, err := pool.GetUserByUsername(rc.Ctx, req.Username)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apierr.UserNotFound("User does not exist.")
		}
		user.UserStatus = models.StatusConfirmed
		user.ConfirmationCode = ""
		user.UserLastModifiedDate = svcs.Clock.Now()
		if err := pool.SaveUser(rc.Ctx, user); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
}
