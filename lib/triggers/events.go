package triggers

import "github.com/aws/aws-lambda-go/events"

// The original source flags this field's value as unknown; "0" is the
// only value observed in captured events.
const envelopeVersion = "0"

// region is never populated by a real deployment target here, so every
// synthesized envelope reports the same placeholder.
const envelopeRegion = "local"

func newHeader(source, poolId, username, clientId string) events.CognitoEventUserPoolsHeader {
	return events.CognitoEventUserPoolsHeader{
		Version:       envelopeVersion,
		TriggerSource: source,
		Region:        envelopeRegion,
		UserPoolID:    poolId,
		UserName:      username,
		CallerContext: events.CognitoEventUserPoolsCallerContext{
			AWSSDKVersion: "aws-sdk-go-v2",
			ClientID:      clientId,
		},
	}
}

func buildPreSignUp(source, poolId, clientId, username string, attrs, validationData, clientMetadata map[string]string) events.CognitoEventUserPoolsPreSignup {
	return events.CognitoEventUserPoolsPreSignup{
		CognitoEventUserPoolsHeader: newHeader(source, poolId, username, clientId),
		Request: events.CognitoEventUserPoolsPreSignupRequest{
			UserAttributes: attrs,
			ValidationData: validationData,
			ClientMetadata: clientMetadata,
		},
	}
}

func buildPostConfirmation(source, poolId, clientId, username string, attrs, clientMetadata map[string]string) events.CognitoEventUserPoolsPostConfirmation {
	return events.CognitoEventUserPoolsPostConfirmation{
		CognitoEventUserPoolsHeader: newHeader(source, poolId, username, clientId),
		Request: events.CognitoEventUserPoolsPostConfirmationRequest{
			UserAttributes: attrs,
			ClientMetadata: clientMetadata,
		},
	}
}

func buildPostAuthentication(source, poolId, clientId, username string, attrs, clientMetadata map[string]string) events.CognitoEventUserPoolsPostAuthentication {
	return events.CognitoEventUserPoolsPostAuthentication{
		CognitoEventUserPoolsHeader: newHeader(source, poolId, username, clientId),
		Request: events.CognitoEventUserPoolsPostAuthenticationRequest{
			UserAttributes: attrs,
			ClientMetadata: clientMetadata,
		},
	}
}

func buildUserMigration(source, poolId, clientId, username, password string, validationData, clientMetadata map[string]string) events.CognitoEventUserPoolsMigrateUser {
	return events.CognitoEventUserPoolsMigrateUser{
		CognitoEventUserPoolsHeader: newHeader(source, poolId, username, clientId),
		CognitoEventUserPoolsMigrateUserRequest: events.CognitoEventUserPoolsMigrateUserRequest{
			Password:       password,
			ValidationData: validationData,
			ClientMetadata: clientMetadata,
		},
	}
}

func buildCustomMessage(source, poolId, clientId, username string, attrs, clientMetadata map[string]string, code string) events.CognitoEventUserPoolsCustomMessage {
	userAttrs := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		userAttrs[k] = v
	}
	return events.CognitoEventUserPoolsCustomMessage{
		CognitoEventUserPoolsHeader: newHeader(source, poolId, username, clientId),
		Request: events.CognitoEventUserPoolsCustomMessageRequest{
			UserAttributes:    userAttrs,
			CodeParameter:     code,
			UsernameParameter: username,
			ClientMetadata:    clientMetadata,
		},
	}
}

func buildPreTokenGeneration(source, poolId, clientId, username string, attrs, clientMetadata map[string]string) events.CognitoEventUserPoolsPreTokenGenV2_0 {
	return events.CognitoEventUserPoolsPreTokenGenV2_0{
		CognitoEventUserPoolsHeader: newHeader(source, poolId, username, clientId),
		Request: events.CognitoEventUserPoolsPreTokenGenRequestV2_0{
			UserAttributes: attrs,
			ClientMetadata: clientMetadata,
		},
	}
}
