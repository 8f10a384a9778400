package router

import (
	"encoding/json"
	"fmt"

	"userpoold/lib/apierr"
	"userpoold/lib/cognito"
	"userpoold/lib/models"
	"userpoold/lib/triggers"

	"github.com/google/uuid"
)

type initiateAuthRequest struct {
	ClientId       string            `json:"ClientId"`
	AuthFlow       string            `json:"AuthFlow"`
	AuthParameters map[string]string `json:"AuthParameters,omitempty"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
}

type authenticationResult struct {
	AccessToken  string `json:"AccessToken,omitempty"`
	IdToken      string `json:"IdToken,omitempty"`
	RefreshToken string `json:"RefreshToken,omitempty"`
}

type initiateAuthResponse struct {
	ChallengeName         string                 `json:"ChallengeName,omitempty"`
	Session               string                 `json:"Session,omitempty"`
	ChallengeParameters   map[string]string      `json:"ChallengeParameters,omitempty"`
	AuthenticationResult  *authenticationResult  `json:"AuthenticationResult,omitempty"`
}

func initiateAuth(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req initiateAuthRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPoolForClientId(rc.Ctx, req.ClientId)
		if err != nil {
			return nil, err
		}
		switch req.AuthFlow {
		case "USER_PASSWORD_AUTH":
			return userPasswordAuth(rc, svcs, pool, req.ClientId, req.AuthParameters, req.ClientMetadata)
		case "REFRESH_TOKEN", "REFRESH_TOKEN_AUTH":
			return refreshTokenAuth(rc, svcs, pool, req.ClientId, req.AuthParameters)
		default:
			return nil, apierr.Unsupported(fmt.Sprintf("AuthFlow %s is not supported", req.AuthFlow))
		}
	}
}

func userPasswordAuth(rc *Context, svcs *Services, pool *cognito.UserPoolService, clientId string, params, clientMetadata map[string]string) (initiateAuthResponse, error) {
	username := params["USERNAME"]
	password := params["PASSWORD"]

	user, err := pool.GetUserByUsername(rc.Ctx, username)
	if err != nil {
		return initiateAuthResponse{}, err
	}
	if user == nil && svcs.Triggers.Enabled(triggers.UserMigration) {
		migrated, ok, err := svcs.Triggers.UserMigration(rc.Ctx, pool.Pool().Id, clientId, username, password, clientMetadata, nil)
		if err != nil {
			return initiateAuthResponse{}, err
		}
		if ok {
			now := svcs.Clock.Now()
			migrated.UserCreateDate = now
			migrated.UserLastModifiedDate = now
			if migrated.RefreshTokens == nil {
				migrated.RefreshTokens = []string{}
			}
			if err := pool.SaveUser(rc.Ctx, migrated); err != nil {
				return initiateAuthResponse{}, err
			}
			user = migrated
		}
	}
	if user == nil {
		return initiateAuthResponse{}, apierr.NotAuthorized("Incorrect username or password.")
	}
	if user.UserStatus == models.StatusResetRequired {
		return initiateAuthResponse{}, apierr.PasswordResetRequired("Password reset required for the user")
	}
	if user.UserStatus == models.StatusForceChangePassword {
		return initiateAuthResponse{
			ChallengeName: "NEW_PASSWORD_REQUIRED",
			Session:       uuid.New().String(),
			ChallengeParameters: map[string]string{
				"USER_ID_FOR_SRP":    username,
				"requiredAttributes": "[]",
				"userAttributes":     jsonOf(user.AttributesAsMap()),
			},
		}, nil
	}
	if user.Password != password {
		return initiateAuthResponse{}, apierr.InvalidPassword("Incorrect username or password.")
	}

	pool_ := pool.Pool()
	needsMFA := pool_.MfaConfiguration == models.MFAOn || (pool_.MfaConfiguration == models.MFAOptional && len(user.MFAOptions) > 0)
	if needsMFA {
		return beginSMSChallenge(rc, svcs, pool, clientId, user, clientMetadata)
	}

	result, err := svcs.Tokens.Issue(rc.Ctx, pool_.Id, clientId, user, nil)
	if err != nil {
		return initiateAuthResponse{}, err
	}
	if err := pool.StoreRefreshToken(rc.Ctx, result.RefreshToken, user); err != nil {
		return initiateAuthResponse{}, err
	}
	if svcs.Triggers.Enabled(triggers.PostAuthentication) {
		if err := svcs.Triggers.PostAuthentication(rc.Ctx, pool_.Id, clientId, username, user.AttributesAsMap(), nil); err != nil {
			return initiateAuthResponse{}, err
		}
	}
	return initiateAuthResponse{
		ChallengeName:        "PASSWORD_VERIFIER",
		AuthenticationResult: &authenticationResult{AccessToken: result.AccessToken, IdToken: result.IdToken, RefreshToken: result.RefreshToken},
	}, nil
}

func beginSMSChallenge(rc *Context, svcs *Services, pool *cognito.UserPoolService, clientId string, user *models.User, clientMetadata map[string]string) (initiateAuthResponse, error) {
	var smsOption *models.MFAOptionType
	for i := range user.MFAOptions {
		if user.MFAOptions[i].DeliveryMedium == "SMS" && user.MFAOptions[i].AttributeName == "phone_number" {
			smsOption = &user.MFAOptions[i]
			break
		}
	}
	if smsOption == nil {
		return initiateAuthResponse{}, apierr.NotAuthorized("User has no SMS MFA option configured.")
	}
	code, err := svcs.OTP.Generate()
	if err != nil {
		return initiateAuthResponse{}, err
	}
	user.MFACode = code
	msgDetails, wireDetails := deliveryDetailsFor("phone_number", user)
	if err := svcs.Messages.Deliver(rc.Ctx, "Authentication", clientId, pool.Pool().Id, user, code, clientMetadata, msgDetails); err != nil {
		return initiateAuthResponse{}, err
	}
	if err := pool.SaveUser(rc.Ctx, user); err != nil {
		return initiateAuthResponse{}, err
	}
	return initiateAuthResponse{
		ChallengeName: "SMS_MFA",
		Session:       uuid.New().String(),
		ChallengeParameters: map[string]string{
			"CODE_DELIVERY_DELIVERY_MEDIUM": wireDetails.DeliveryMedium,
			"CODE_DELIVERY_DESTINATION":     wireDetails.Destination,
		},
	}, nil
}

func refreshTokenAuth(rc *Context, svcs *Services, pool *cognito.UserPoolService, clientId string, params map[string]string) (initiateAuthResponse, error) {
	refreshToken := params["REFRESH_TOKEN"]
	if refreshToken == "" {
		return initiateAuthResponse{}, apierr.InvalidParameter("REFRESH_TOKEN is required")
	}
	user, err := pool.GetUserByRefreshToken(rc.Ctx, refreshToken)
	if err != nil {
		return initiateAuthResponse{}, err
	}
	if user == nil {
		return initiateAuthResponse{}, apierr.NotAuthorized("Refresh Token has been revoked")
	}
	accessToken, idToken, err := svcs.Tokens.Refresh(rc.Ctx, pool.Pool().Id, clientId, user)
	if err != nil {
		return initiateAuthResponse{}, err
	}
	return initiateAuthResponse{
		AuthenticationResult: &authenticationResult{AccessToken: accessToken, IdToken: idToken},
	}, nil
}

func jsonOf(v interface{}) string {
	data, _ := json.Marshal(v)
	return string(data)
}

type adminInitiateAuthRequest struct {
	UserPoolId     string            `json:"UserPoolId"`
	ClientId       string            `json:"ClientId"`
	AuthFlow       string            `json:"AuthFlow"`
	AuthParameters map[string]string `json:"AuthParameters,omitempty"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
}

func adminInitiateAuth(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req adminInitiateAuthRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPool(rc.Ctx, req.UserPoolId)
		if err != nil {
			return nil, err
		}
		switch req.AuthFlow {
		case "ADMIN_USER_PASSWORD_AUTH", "ADMIN_NO_SRP_AUTH", "USER_PASSWORD_AUTH":
			return userPasswordAuth(rc, svcs, pool, req.ClientId, req.AuthParameters, req.ClientMetadata)
		case "REFRESH_TOKEN", "REFRESH_TOKEN_AUTH":
			return refreshTokenAuth(rc, svcs, pool, req.ClientId, req.AuthParameters)
		default:
			return nil, apierr.Unsupported(fmt.Sprintf("AuthFlow %s is not supported", req.AuthFlow))
		}
	}
}

type respondToAuthChallengeRequest struct {
	ClientId            string            `json:"ClientId"`
	ChallengeName       string            `json:"ChallengeName"`
	Session             string            `json:"Session,omitempty"`
	ChallengeResponses  map[string]string `json:"ChallengeResponses,omitempty"`
	ClientMetadata      map[string]string `json:"ClientMetadata,omitempty"`
}

func respondToAuthChallenge(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req respondToAuthChallengeRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPoolForClientId(rc.Ctx, req.ClientId)
		if err != nil {
			return nil, err
		}
		username := req.ChallengeResponses["USERNAME"]
		user, err := pool.GetUserByUsername(rc.Ctx, username)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apierr.NotAuthorized("Incorrect username or password.")
		}

		switch req.ChallengeName {
		case "SMS_MFA":
			code := req.ChallengeResponses["SMS_MFA_CODE"]
			if user.MFACode == "" || user.MFACode != code {
				return nil, apierr.CodeMismatch("Invalid code received for user")
			}
			user.MFACode = ""
		case "NEW_PASSWORD_REQUIRED":
			newPassword := req.ChallengeResponses["NEW_PASSWORD"]
			user.Password = newPassword
			user.UserStatus = models.StatusConfirmed
		default:
			return nil, apierr.Unsupported(fmt.Sprintf("ChallengeName %s is not supported", req.ChallengeName))
		}

		user.UserLastModifiedDate = svcs.Clock.Now()
		result, err := svcs.Tokens.Issue(rc.Ctx, pool.Pool().Id, req.ClientId, user, nil)
		if err != nil {
			return nil, err
		}
		if err := pool.StoreRefreshToken(rc.Ctx, result.RefreshToken, user); err != nil {
			return nil, err
		}
		if svcs.Triggers.Enabled(triggers.PostAuthentication) {
			if err := svcs.Triggers.PostAuthentication(rc.Ctx, pool.Pool().Id, req.ClientId, username, user.AttributesAsMap(), nil); err != nil {
				return nil, err
			}
		}
		return initiateAuthResponse{
			ChallengeName:        "PASSWORD_VERIFIER",
			AuthenticationResult: &authenticationResult{AccessToken: result.AccessToken, IdToken: result.IdToken, RefreshToken: result.RefreshToken},
		}, nil
	}
}

type revokeTokenRequest struct {
	ClientId string `json:"ClientId"`
	Token    string `json:"Token"`
}

func revokeToken(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req revokeTokenRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPoolForClientId(rc.Ctx, req.ClientId)
		if err != nil {
			return nil, err
		}
		user, err := pool.GetUserByRefreshToken(rc.Ctx, req.Token)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return struct{}{}, nil
		}
		kept := user.RefreshTokens[:0]
		for _, t := range user.RefreshTokens {
			if t != req.Token {
				kept = append(kept, t)
			}
		}
		user.RefreshTokens = kept
		if err := pool.SaveUser(rc.Ctx, user); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
}
