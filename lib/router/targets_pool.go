package router

import (
	"encoding/json"

	"userpoold/lib/models"
)

type createUserPoolRequest struct {
	PoolName               string                       `json:"PoolName"`
	UsernameAttributes     []string                     `json:"UsernameAttributes,omitempty"`
	AutoVerifiedAttributes []string                     `json:"AutoVerifiedAttributes,omitempty"`
	MfaConfiguration       string                       `json:"MfaConfiguration,omitempty"`
	Schema                 []models.SchemaAttributeType `json:"Schema,omitempty"`
	SmsVerificationMessage string                       `json:"SmsVerificationMessage,omitempty"`
	LambdaConfig           map[string]string            `json:"LambdaConfig,omitempty"`
}

type userPoolResponse struct {
	UserPool *models.UserPool `json:"UserPool"`
}

func createUserPool(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req createUserPoolRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.CreateUserPool(rc.Ctx, models.UserPool{
			Name:                   req.PoolName,
			UsernameAttributes:     req.UsernameAttributes,
			AutoVerifiedAttributes: req.AutoVerifiedAttributes,
			MfaConfiguration:       models.MFAConfiguration(req.MfaConfiguration),
			SchemaAttributes:       req.Schema,
			SmsVerificationMessage: req.SmsVerificationMessage,
			LambdaConfig:           req.LambdaConfig,
		})
		if err != nil {
			return nil, err
		}
		return userPoolResponse{UserPool: pool}, nil
	}
}

type poolIdRequest struct {
	UserPoolId string `json:"UserPoolId"`
}

func describeUserPool(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req poolIdRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPool(rc.Ctx, req.UserPoolId)
		if err != nil {
			return nil, err
		}
		return userPoolResponse{UserPool: pool.Pool()}, nil
	}
}

func deleteUserPool(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req poolIdRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPool(rc.Ctx, req.UserPoolId)
		if err != nil {
			return nil, err
		}
		if err := svcs.Cognito.DeleteUserPool(rc.Ctx, pool.Pool()); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
}

type listUserPoolsResponse struct {
	UserPools []*models.UserPool `json:"UserPools"`
}

func listUserPools(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		pools, err := svcs.Cognito.ListUserPools(rc.Ctx)
		if err != nil {
			return nil, err
		}
		return listUserPoolsResponse{UserPools: pools}, nil
	}
}

type createUserPoolClientRequest struct {
	UserPoolId string `json:"UserPoolId"`
	ClientName string `json:"ClientName"`
}

type appClientResponse struct {
	UserPoolClient *models.AppClient `json:"UserPoolClient"`
}

func createUserPoolClient(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req createUserPoolClientRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPool(rc.Ctx, req.UserPoolId)
		if err != nil {
			return nil, err
		}
		client, err := pool.CreateAppClient(rc.Ctx, req.ClientName)
		if err != nil {
			return nil, err
		}
		return appClientResponse{UserPoolClient: client}, nil
	}
}

type clientIdRequest struct {
	UserPoolId string `json:"UserPoolId"`
	ClientId   string `json:"ClientId"`
}

func describeUserPoolClient(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req clientIdRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		client, err := svcs.Cognito.GetAppClient(rc.Ctx, req.ClientId)
		if err != nil {
			return nil, err
		}
		return appClientResponse{UserPoolClient: client}, nil
	}
}

func deleteUserPoolClient(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req clientIdRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		client, err := svcs.Cognito.GetAppClient(rc.Ctx, req.ClientId)
		if err != nil {
			return nil, err
		}
		if err := svcs.Cognito.DeleteAppClient(rc.Ctx, client); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
}

type mfaConfigResponse struct {
	MfaConfiguration string `json:"MfaConfiguration"`
}

func getUserPoolMfaConfig(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req poolIdRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPool(rc.Ctx, req.UserPoolId)
		if err != nil {
			return nil, err
		}
		return mfaConfigResponse{MfaConfiguration: string(pool.Pool().MfaConfiguration)}, nil
	}
}
