// Package messages renders and dispatches the one-time codes sign-up,
// MFA, and password-reset flows send to a user's verified channel.
package messages

import (
	"context"
	"fmt"
	"strings"

	"userpoold/lib/models"
	"userpoold/lib/triggers"

	"github.com/sirupsen/logrus"
)

// DeliveryDetails names the channel a code is being sent to.
type DeliveryDetails struct {
	Medium        string
	Destination   string
	AttributeName string
}

// Sink is the pluggable channel a rendered message is handed to once
// built. The default Sink just logs it, matching the teacher's own
// decision to make external delivery an injected collaborator rather than
// a concrete SMS/email integration.
type Sink interface {
	Deliver(ctx context.Context, details DeliveryDetails, subject, message string) error
}

// LogSink writes the message to a structured logger instead of sending it
// anywhere, suitable for local development.
type LogSink struct {
	Logger *logrus.Logger
}

func (s LogSink) Deliver(_ context.Context, details DeliveryDetails, subject, message string) error {
	s.Logger.WithFields(logrus.Fields{
		"medium":      details.Medium,
		"destination": details.Destination,
		"subject":     subject,
	}).Info(message)
	return nil
}

// Messages renders delivery messages, consulting the CustomMessage trigger
// when configured, and hands them to a Sink.
type Messages struct {
	triggers *triggers.Triggers
	sink     Sink
}

// New builds a Messages dispatcher.
func New(trig *triggers.Triggers, sink Sink) *Messages {
	return &Messages{triggers: trig, sink: sink}
}

// Deliver renders and dispatches code to the channel described by details.
// source identifies the calling flow (e.g. "SignUp", "ForgotPassword"),
// used to build the CustomMessage trigger source "CustomMessage_<source>".
func (m *Messages) Deliver(ctx context.Context, source, clientId, poolId string, user *models.User, code string, clientMetadata map[string]string, details DeliveryDetails) error {
	result, ok, err := m.triggers.CustomMessage(ctx, poolId, clientId, "CustomMessage_"+source, user.Username, user.AttributesAsMap(), clientMetadata, code)
	if err != nil {
		return err
	}

	message := defaultTemplate(code)
	subject := defaultSubject()
	if ok {
		switch details.Medium {
		case "SMS":
			if result.SMSMessage != "" {
				message = result.SMSMessage
			}
		case "EMAIL":
			if result.EmailMessage != "" {
				message = result.EmailMessage
			}
			if result.EmailSubject != "" {
				subject = result.EmailSubject
			}
		}
	}

	message = interpolate(message, code, user.Username)
	return m.sink.Deliver(ctx, details, subject, message)
}

func interpolate(template, code, username string) string {
	out := strings.ReplaceAll(template, "{####}", code)
	out = strings.ReplaceAll(out, "{username}", username)
	return out
}

func defaultTemplate(code string) string {
	return fmt.Sprintf("Your verification code is %s", code)
}

func defaultSubject() string {
	return "Your verification code"
}
