package router

import (
	"encoding/json"

	"userpoold/lib/apierr"
	"userpoold/lib/cognito"
	"userpoold/lib/models"
)

type updateUserAttributesRequest struct {
	AccessToken    string                 `json:"AccessToken"`
	UserAttributes []models.AttributeType `json:"UserAttributes"`
	ClientMetadata map[string]string      `json:"ClientMetadata,omitempty"`
}

type updateUserAttributesResponse struct {
	CodeDeliveryDetailsList []codeDeliveryDetails `json:"CodeDeliveryDetailsList,omitempty"`
}

func updateUserAttributes(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req updateUserAttributesRequest
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
		return applyUserAttributeUpdate(rc, svcs, pool, username, req.UserAttributes, req.ClientMetadata)
	}
}

type adminUpdateUserAttributesRequest struct {
	UserPoolId     string                 `json:"UserPoolId"`
	Username       string                 `json:"Username"`
	UserAttributes []models.AttributeType `json:"UserAttributes"`
	ClientMetadata map[string]string      `json:"ClientMetadata,omitempty"`
}

func adminUpdateUserAttributes(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req adminUpdateUserAttributesRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPool(rc.Ctx, req.UserPoolId)
		if err != nil {
			return nil, err
		}
		_, err = applyUserAttributeUpdate(rc, svcs, pool, req.Username, req.UserAttributes, req.ClientMetadata)
		if err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
}

// applyUserAttributeUpdate validates and persists attrs on username, sending
// a verification code for each newly-dirtied verifiable attribute the pool
// auto-verifies.
func applyUserAttributeUpdate(rc *Context, svcs *Services, pool *cognito.UserPoolService, username string, attrs []models.AttributeType, clientMetadata map[string]string) (updateUserAttributesResponse, error) {
	user, err := pool.GetUserByUsername(rc.Ctx, username)
	if err != nil {
		return updateUserAttributesResponse{}, err
	}
	if user == nil {
		return updateUserAttributesResponse{}, apierr.UserNotFound("User does not exist.")
	}
	if err := validatePermittedAttributeChanges(pool.Pool(), attrs); err != nil {
		return updateUserAttributesResponse{}, err
	}
	if err := applyAttributeChanges(user, attrs); err != nil {
		return updateUserAttributesResponse{}, err
	}
	user.UserLastModifiedDate = svcs.Clock.Now()

	var deliveries []codeDeliveryDetails
	for _, a := range attrs {
		if a.Name != "email" && a.Name != "phone_number" {
			continue
		}
		if !pool.Pool().HasAutoVerifiedAttribute(a.Name) {
			continue
		}
		code, err := svcs.OTP.Generate()
		if err != nil {
			return updateUserAttributesResponse{}, err
		}
		user.AttributeVerificationCode = code
		msgDetails, wireDetails := deliveryDetailsFor(a.Name, user)
		if err := svcs.Messages.Deliver(rc.Ctx, "UpdateUserAttribute", "", pool.Pool().Id, user, code, clientMetadata, msgDetails); err != nil {
			return updateUserAttributesResponse{}, err
		}
		deliveries = append(deliveries, wireDetails)
	}

	if err := pool.SaveUser(rc.Ctx, user); err != nil {
		return updateUserAttributesResponse{}, err
	}
	return updateUserAttributesResponse{CodeDeliveryDetailsList: deliveries}, nil
}

type deleteUserAttributesRequest struct {
	AccessToken        string   `json:"AccessToken"`
	UserAttributeNames []string `json:"UserAttributeNames"`
}

func deleteUserAttributes(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req deleteUserAttributesRequest
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
		return deleteNamedAttributes(rc, svcs, pool, username, req.UserAttributeNames)
	}
}

type adminDeleteUserAttributesRequest struct {
	UserPoolId         string   `json:"UserPoolId"`
	Username           string   `json:"Username"`
	UserAttributeNames []string `json:"UserAttributeNames"`
}

func adminDeleteUserAttributes(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req adminDeleteUserAttributesRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPool(rc.Ctx, req.UserPoolId)
		if err != nil {
			return nil, err
		}
		return deleteNamedAttributes(rc, svcs, pool, req.Username, req.UserAttributeNames)
	}
}

func deleteNamedAttributes(rc *Context, svcs *Services, pool *cognito.UserPoolService, username string, names []string) (interface{}, error) {
	user, err := pool.GetUserByUsername(rc.Ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apierr.UserNotFound("User does not exist.")
	}
	for _, name := range names {
		schema := pool.Pool().SchemaFor(name)
		if schema == nil {
			return nil, apierr.InvalidParameter("Attribute does not exist in the schema: " + name)
		}
		if !schema.Mutable {
			return nil, apierr.InvalidParameter("Attribute cannot be updated: " + name)
		}
		user.DeleteAttribute(name)
	}
	user.UserLastModifiedDate = svcs.Clock.Now()
	if err := pool.SaveUser(rc.Ctx, user); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

type verifyUserAttributeRequest struct {
	AccessToken string `json:"AccessToken"`
	AttributeName string `json:"AttributeName"`
	Code        string `json:"Code"`
}

func verifyUserAttribute(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req verifyUserAttributeRequest
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
		if user.AttributeVerificationCode == "" || user.AttributeVerificationCode != req.Code {
			return nil, apierr.CodeMismatch("Invalid verification code provided, please try again.")
		}
		user.AttributeVerificationCode = ""
		user.SetAttribute(req.AttributeName+"_verified", "true")
		user.UserLastModifiedDate = svcs.Clock.Now()
		if err := pool.SaveUser(rc.Ctx, user); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
}

type getUserAttributeVerificationCodeRequest struct {
	AccessToken   string `json:"AccessToken"`
	AttributeName string `json:"AttributeName"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
}

type getUserAttributeVerificationCodeResponse struct {
	CodeDeliveryDetails codeDeliveryDetails `json:"CodeDeliveryDetails"`
}

func getUserAttributeVerificationCode(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req getUserAttributeVerificationCodeRequest
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
		if _, ok := user.Attribute(req.AttributeName); !ok {
			return nil, apierr.InvalidParameter("User has no attribute matching " + req.AttributeName)
		}
		code, err := svcs.OTP.Generate()
		if err != nil {
			return nil, err
		}
		user.AttributeVerificationCode = code
		msgDetails, wireDetails := deliveryDetailsFor(req.AttributeName, user)
		if err := svcs.Messages.Deliver(rc.Ctx, "VerifyUserAttribute", "", poolId, user, code, req.ClientMetadata, msgDetails); err != nil {
			return nil, err
		}
		if err := pool.SaveUser(rc.Ctx, user); err != nil {
			return nil, err
		}
		return getUserAttributeVerificationCodeResponse{CodeDeliveryDetails: wireDetails}, nil
	}
}
