package router

import (
	"encoding/json"

	"userpoold/lib/apierr"
	"userpoold/lib/models"
)

type getUserRequest struct {
	AccessToken string `json:"AccessToken"`
}

type getUserResponse struct {
	Username       string                 `json:"Username"`
	UserAttributes []models.AttributeType `json:"UserAttributes"`
	MFAOptions     []models.MFAOptionType `json:"MFAOptions,omitempty"`
}

func getUser(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req getUserRequest
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
		return getUserResponse{Username: user.Username, UserAttributes: user.Attributes, MFAOptions: user.MFAOptions}, nil
	}
}

type adminGetUserResponse struct {
	Username             string                 `json:"Username"`
	UserAttributes       []models.AttributeType `json:"UserAttributes"`
	UserStatus           models.UserStatus      `json:"UserStatus"`
	Enabled              bool                   `json:"Enabled"`
	UserCreateDate       string                 `json:"UserCreateDate"`
	UserLastModifiedDate string                 `json:"UserLastModifiedDate"`
}

func adminGetUser(svcs *Services) Target {
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
		return adminGetUserResponse{
			Username:             user.Username,
			UserAttributes:       user.Attributes,
			UserStatus:           user.UserStatus,
			Enabled:              user.Enabled,
			UserCreateDate:       user.UserCreateDate.Format(timeLayout),
			UserLastModifiedDate: user.UserLastModifiedDate.Format(timeLayout),
		}, nil
	}
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

type deleteUserRequest struct {
	AccessToken string `json:"AccessToken"`
}

func deleteUser(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req deleteUserRequest
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
		if err := pool.DeleteUser(rc.Ctx, user); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
}

func adminDeleteUser(svcs *Services) Target {
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
		if err := pool.DeleteUser(rc.Ctx, user); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	}
}

type listUsersRequest struct {
	UserPoolId string `json:"UserPoolId"`
	Limit      int    `json:"Limit,omitempty"`
}

type listUsersResponse struct {
	Users []*models.User `json:"Users"`
}

func listUsers(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req listUsersRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPool(rc.Ctx, req.UserPoolId)
		if err != nil {
			return nil, err
		}
		users, err := pool.ListUsers(rc.Ctx)
		if err != nil {
			return nil, err
		}
		if req.Limit > 0 && len(users) > req.Limit {
			users = users[:req.Limit]
		}
		return listUsersResponse{Users: users}, nil
	}
}

type createGroupRequest struct {
	UserPoolId  string `json:"UserPoolId"`
	GroupName   string `json:"GroupName"`
	Description string `json:"Description,omitempty"`
	Precedence  int    `json:"Precedence,omitempty"`
	RoleArn     string `json:"RoleArn,omitempty"`
}

type groupResponse struct {
	Group *models.Group `json:"Group"`
}

func createGroup(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req createGroupRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPool(rc.Ctx, req.UserPoolId)
		if err != nil {
			return nil, err
		}
		now := svcs.Clock.Now()
		group := &models.Group{
			GroupName:        req.GroupName,
			Description:      req.Description,
			Precedence:       req.Precedence,
			RoleArn:          req.RoleArn,
			CreationDate:     now,
			LastModifiedDate: now,
		}
		if err := pool.SaveGroup(rc.Ctx, group); err != nil {
			return nil, err
		}
		return groupResponse{Group: group}, nil
	}
}

type listGroupsRequest struct {
	UserPoolId string `json:"UserPoolId"`
}

type listGroupsResponse struct {
	Groups []*models.Group `json:"Groups"`
}

func listGroups(svcs *Services) Target {
	return func(rc *Context, body json.RawMessage) (interface{}, error) {
		var req listGroupsRequest
		if err := decodeRequest(body, &req); err != nil {
			return nil, err
		}
		pool, err := svcs.Cognito.GetUserPool(rc.Ctx, req.UserPoolId)
		if err != nil {
			return nil, err
		}
		groups, err := pool.ListGroups(rc.Ctx)
		if err != nil {
			return nil, err
		}
		return listGroupsResponse{Groups: groups}, nil
	}
}
