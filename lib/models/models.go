// Package models defines the user-pool domain: pools, app clients, users,
// and groups, along with the attribute lists and status enums the targets
// switch on.
package models

import "time"

// AttributeType is a single named attribute on a user, e.g. {Name: "email",
// Value: "a@x.com"}. It mirrors cognitoidentityprovider's wire shape so
// request/response marshaling needs no translation layer.
type AttributeType struct {
	Name  string `json:"Name"`
	Value string `json:"Value,omitempty"`
}

// SchemaAttributeType describes one attribute a pool's users may carry.
type SchemaAttributeType struct {
	Name     string `json:"Name"`
	Mutable  bool   `json:"Mutable"`
	Required bool   `json:"Required,omitempty"`
}

// MFAOptionType binds a delivery medium to the attribute it is sent to.
type MFAOptionType struct {
	DeliveryMedium string `json:"DeliveryMedium"`
	AttributeName  string `json:"AttributeName"`
}

// UserStatus enumerates the lifecycle states of a User.
type UserStatus string

const (
	StatusUnconfirmed         UserStatus = "UNCONFIRMED"
	StatusConfirmed           UserStatus = "CONFIRMED"
	StatusForceChangePassword UserStatus = "FORCE_CHANGE_PASSWORD"
	StatusResetRequired       UserStatus = "RESET_REQUIRED"
	StatusArchived            UserStatus = "ARCHIVED"
	StatusUnknown             UserStatus = "UNKNOWN"
)

// MFAConfiguration enumerates a pool's MFA requirement.
type MFAConfiguration string

const (
	MFAOff      MFAConfiguration = "OFF"
	MFAOptional MFAConfiguration = "OPTIONAL"
	MFAOn       MFAConfiguration = "ON"
)

// UserPool is the top-level tenant: its configuration and schema.
type UserPool struct {
	Id                      string                `json:"Id"`
	Name                    string                `json:"Name"`
	UsernameAttributes      []string              `json:"UsernameAttributes,omitempty"`
	AutoVerifiedAttributes  []string              `json:"AutoVerifiedAttributes,omitempty"`
	MfaConfiguration        MFAConfiguration      `json:"MfaConfiguration,omitempty"`
	SchemaAttributes        []SchemaAttributeType `json:"SchemaAttributes,omitempty"`
	SmsVerificationMessage  string                `json:"SmsVerificationMessage,omitempty"`
	SmsConfiguration        map[string]string     `json:"SmsConfiguration,omitempty"`
	LambdaConfig            map[string]string     `json:"LambdaConfig,omitempty"`
	CreationDate            time.Time             `json:"CreationDate"`
	LastModifiedDate        time.Time             `json:"LastModifiedDate"`
}

// HasUsernameAttribute reports whether attr (email / phone_number) may be
// used as an alias for the primary username at sign-in.
func (p *UserPool) HasUsernameAttribute(attr string) bool {
	for _, a := range p.UsernameAttributes {
		if a == attr {
			return true
		}
	}
	return false
}

// HasAutoVerifiedAttribute reports whether attr auto-receives a
// confirmation code on sign-up.
func (p *UserPool) HasAutoVerifiedAttribute(attr string) bool {
	for _, a := range p.AutoVerifiedAttributes {
		if a == attr {
			return true
		}
	}
	return false
}

// SchemaFor returns the schema entry for name, or nil if the pool does not
// declare it.
func (p *UserPool) SchemaFor(name string) *SchemaAttributeType {
	for i := range p.SchemaAttributes {
		if p.SchemaAttributes[i].Name == name {
			return &p.SchemaAttributes[i]
		}
	}
	return nil
}

// AppClient is a credential holder scoped to exactly one UserPool.
type AppClient struct {
	ClientId             string    `json:"ClientId"`
	ClientName           string    `json:"ClientName"`
	UserPoolId           string    `json:"UserPoolId"`
	RefreshTokenValidity int       `json:"RefreshTokenValidity"`
	CreationDate         time.Time `json:"CreationDate"`
	LastModifiedDate     time.Time `json:"LastModifiedDate"`
}

// User is a single principal scoped to one UserPool.
type User struct {
	Username                 string          `json:"Username"`
	Attributes               []AttributeType `json:"Attributes"`
	Password                 string          `json:"Password"`
	UserStatus               UserStatus      `json:"UserStatus"`
	Enabled                  bool            `json:"Enabled"`
	MFAOptions               []MFAOptionType `json:"MFAOptions,omitempty"`
	ConfirmationCode         string          `json:"ConfirmationCode,omitempty"`
	MFACode                  string          `json:"MFACode,omitempty"`
	AttributeVerificationCode string         `json:"AttributeVerificationCode,omitempty"`
	RefreshTokens            []string        `json:"RefreshTokens,omitempty"`
	UserCreateDate           time.Time       `json:"UserCreateDate"`
	UserLastModifiedDate     time.Time       `json:"UserLastModifiedDate"`
}

// Attribute returns the value of the named attribute and whether it is
// present.
func (u *User) Attribute(name string) (string, bool) {
	for _, a := range u.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttribute upserts an attribute, preserving insertion order for the
// remainder of the list.
func (u *User) SetAttribute(name, value string) {
	for i := range u.Attributes {
		if u.Attributes[i].Name == name {
			u.Attributes[i].Value = value
			return
		}
	}
	u.Attributes = append(u.Attributes, AttributeType{Name: name, Value: value})
}

// DeleteAttribute removes the named attribute if present.
func (u *User) DeleteAttribute(name string) {
	out := u.Attributes[:0]
	for _, a := range u.Attributes {
		if a.Name != name {
			out = append(out, a)
		}
	}
	u.Attributes = out
}

// Sub returns the user's immutable subject identifier.
func (u *User) Sub() string {
	v, _ := u.Attribute("sub")
	return v
}

// HasRefreshToken reports whether token is in the user's refresh token set.
func (u *User) HasRefreshToken(token string) bool {
	for _, t := range u.RefreshTokens {
		if t == token {
			return true
		}
	}
	return false
}

// AttributesAsMap flattens Attributes into a name->value map, the shape
// most trigger envelopes and challenge parameters expect.
func (u *User) AttributesAsMap() map[string]string {
	m := make(map[string]string, len(u.Attributes))
	for _, a := range u.Attributes {
		m[a.Name] = a.Value
	}
	return m
}

// Group is a named collection of users within one UserPool.
type Group struct {
	GroupName        string    `json:"GroupName"`
	Description      string    `json:"Description,omitempty"`
	Precedence       int       `json:"Precedence,omitempty"`
	RoleArn          string    `json:"RoleArn,omitempty"`
	CreationDate     time.Time `json:"CreationDate"`
	LastModifiedDate time.Time `json:"LastModifiedDate"`
}
