// Package triggers invokes user-supplied Lambda-style hooks at well-defined
// points in the authentication flows and adapts their event envelopes to
// and from the wire shapes published for each Cognito trigger source.
package triggers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"userpoold/lib/apierr"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/sirupsen/logrus"
)

// Name identifies one of the supported trigger hooks.
type Name string

const (
	PreSignUp           Name = "PreSignUp"
	PostConfirmation    Name = "PostConfirmation"
	PostAuthentication  Name = "PostAuthentication"
	UserMigration       Name = "UserMigration"
	CustomMessage       Name = "CustomMessage"
	PreTokenGeneration  Name = "PreTokenGeneration"
)

const defaultTimeout = 15 * time.Second

// LambdaAPI is the subset of the Lambda service client the Invoker calls,
// narrowed to ease substituting a mock in tests.
type LambdaAPI interface {
	Invoke(ctx context.Context, params *lambdasvc.InvokeInput, optFns ...func(*lambdasvc.Options)) (*lambdasvc.InvokeOutput, error)
}

// Invoker synchronously calls the external function configured for a
// trigger name and unwraps its response envelope.
type Invoker struct {
	functions map[Name]string
	client    LambdaAPI
	logger    *logrus.Logger
	timeout   time.Duration
}

// NewInvoker builds an Invoker. functions maps trigger name to the
// function identifier passed to Lambda.Invoke; a trigger absent from the
// map is treated as disabled.
func NewInvoker(functions map[Name]string, client LambdaAPI, logger *logrus.Logger) *Invoker {
	return &Invoker{functions: functions, client: client, logger: logger, timeout: defaultTimeout}
}

// Enabled reports whether name has a configured function.
func (iv *Invoker) Enabled(name Name) bool {
	_, ok := iv.functions[name]
	return ok
}

// responseEnvelope is the {"response": ...} wrapper the invoked function
// is expected to return.
type responseEnvelope struct {
	Response json.RawMessage `json:"response"`
}

// Invoke marshals event, calls the function configured for name
// synchronously, and returns the raw "response" field of its payload.
func (iv *Invoker) Invoke(ctx context.Context, name Name, event interface{}) (json.RawMessage, error) {
	fn, ok := iv.functions[name]
	if !ok {
		return nil, apierr.Unsupported(fmt.Sprintf("trigger %s is not configured", name))
	}

	ctx, cancel := context.WithTimeout(ctx, iv.timeout)
	defer cancel()

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	if iv.logger != nil {
		iv.logger.WithFields(logrus.Fields{"trigger": string(name), "function": fn}).Debug("invoking trigger")
	}

	out, err := iv.client.Invoke(ctx, &lambdasvc.InvokeInput{
		FunctionName:   aws.String(fn),
		Payload:        payload,
		InvocationType: lambdatypes.InvocationTypeRequestResponse,
	})
	if err != nil {
		return nil, apierr.UnexpectedLambdaException(err.Error())
	}
	if out.FunctionError != nil {
		return nil, apierr.UserLambdaValidation(*out.FunctionError)
	}
	if out.StatusCode != 200 {
		return nil, apierr.UserLambdaValidation(fmt.Sprintf("trigger %s returned status %d", name, out.StatusCode))
	}

	var env responseEnvelope
	if err := json.Unmarshal(out.Payload, &env); err != nil {
		return nil, apierr.InvalidLambdaResponse(fmt.Sprintf("trigger %s returned unparseable payload", name))
	}
	return env.Response, nil
}
