package router

import (
	"encoding/json"

	"userpoold/lib/apierr"
	"userpoold/lib/models"
)

type forgotPasswordRequest struct {
	ClientId       string            `json:"ClientId"`
	Username       string            `json:"Username"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
}

type forgotPasswordResponse struct {
	CodeDeliveryDetails *codeDeliveryDetails `json:"CodeDeliveryDetails,omitempty"`
}

func forgotPassword(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req forgotPasswordRequest
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

		attrName, skip, err := determineDeliveryChannel(pool.Pool(), user)
		if err != nil {
			return nil, err
		}
		var delivery *codeDeliveryDetails
		if !skip {
			code, err := svcs.OTP.Generate()
			if err != nil {
				return nil, err
			}
			user.ConfirmationCode = code
			user.UserStatus = models.StatusResetRequired
			msgDetails, wireDetails := deliveryDetailsFor(attrName, user)
			if err := svcs.Messages.Deliver(rc.Ctx, "ForgotPassword", req.ClientId, pool.Pool().Id, user, code, req.ClientMetadata, msgDetails); err != nil {
				return nil, err
			}
			delivery = &wireDetails
			user.UserLastModifiedDate = svcs.Clock.Now()
			if err := pool.SaveUser(rc.Ctx, user); err != nil {
				return nil, err
			}
		}
		return forgotPasswordResponse{CodeDeliveryDetails: delivery}, nil
	}
}

type confirmForgotPasswordRequest struct {
	ClientId         string `json:"ClientId"`
	Username         string `json:"Username"`
	ConfirmationCode string `json:"ConfirmationCode"`
	Password         string `json:"Password"`
}

func confirmForgotPassword(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req confirmForgotPasswordRequest
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
		if user.ConfirmationCode == "" || user.ConfirmationCode != req.ConfirmationCode {
			return nil, apierr.CodeMismatch("Invalid verification code provided, please try again.")
		}

		user.Password = req.Password
		user.ConfirmationCode = ""
		user.UserStatus = models.StatusConfirmed
		user.UserLastModifiedDate = svcs.Clock.Now()
		if err := pool.SaveUser(rc.Ctx, user); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
}

type changePasswordRequest struct {
	AccessToken      string `json:"AccessToken"`
	PreviousPassword string `json:"PreviousPassword"`
	ProposedPassword string `json:"ProposedPassword"`
}

func changePassword(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req changePasswordRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		username, poolId, err := svcs.Tokens.Authenticate(req.AccessToken)
		if err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPool(rc.Ctx, poolId)
		if err != nil {
			return nil, err
		}
		user, err := pool.GetUserByUsername(rc.Ctx, username)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apierr.UserNotFound("User does not exist.")
		}
		if user.Password != req.PreviousPassword {
			return nil, apierr.InvalidPassword("Incorrect username or password.")
		}
		user.Password = req.ProposedPassword
		user.UserLastModifiedDate = svcs.Clock.Now()
		if err := pool.SaveUser(rc.Ctx, user); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
}

type adminSetUserPasswordRequest struct {
	UserPoolId string `json:"UserPoolId"`
	Username   string `json:"Username"`
	Password   string `json:"Password"`
	Permanent  bool   `json:"Permanent"`
}

func adminSetUserPassword(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req adminSetUserPasswordRequest
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
		user.Password = req.Password
		if req.Permanent {
			if user.UserStatus == models.StatusForceChangePassword || user.UserStatus == models.StatusResetRequired {
				user.UserStatus = models.StatusConfirmed
			}
		} else {
			user.UserStatus = models.StatusForceChangePassword
		}
		user.UserLastModifiedDate = svcs.Clock.Now()
		if err := pool.SaveUser(rc.Ctx, user); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
}
