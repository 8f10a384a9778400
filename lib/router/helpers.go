package router

import (
	"fmt"

	"userpoold/lib/apierr"
	"userpoold/lib/messages"
	"userpoold/lib/models"
	"userpoold/lib/util"
)

type codeDeliveryDetails struct {
	Destination   string `json:"Destination"`
	DeliveryMedium string `json:"DeliveryMedium"`
	AttributeName  string `json:"AttributeName"`
}

func mediumFor(attrName string) string {
	return util.ConditionalString(attrName == "phone_number", "SMS", "EMAIL")
}

// deliveryDetailsFor builds the Messages delivery target and the wire
// CodeDeliveryDetails for attrName on user.
func deliveryDetailsFor(attrName string, user *models.User) (messages.DeliveryDetails, codeDeliveryDetails) {
	destination, _ := user.Attribute(attrName)
	medium := mediumFor(attrName)
	return messages.DeliveryDetails{Medium: medium, Destination: destination, AttributeName: attrName},
		codeDeliveryDetails{Destination: destination, DeliveryMedium: medium, AttributeName: attrName}
}

// determineDeliveryChannel resolves which attribute a confirmation code
// should be sent to, per the pool's AutoVerifiedAttributes. skip is true
// when no channel is configured and the caller should not send a code.
func determineDeliveryChannel(pool *models.UserPool, user *models.User) (attrName string, skip bool, err error) {
	hasPhone := pool.HasAutoVerifiedAttribute("phone_number")
	hasEmail := pool.HasAutoVerifiedAttribute("email")
	if !hasPhone && !hasEmail {
		return "", true, nil
	}
	_, userHasPhone := user.Attribute("phone_number")
	_, userHasEmail := user.Attribute("email")

	if hasPhone && hasEmail {
		if userHasPhone {
			return "phone_number", false, nil
		}
		if userHasEmail {
			return "email", false, nil
		}
		return "", false, apierr.InvalidParameter("User has no attribute matching desired auto verified attributes")
	}
	if hasPhone {
		if !userHasPhone {
			return "", false, apierr.InvalidParameter("User has no attribute matching desired auto verified attributes")
		}
		return "phone_number", false, nil
	}
	if !userHasEmail {
		return "", false, apierr.InvalidParameter("User has no attribute matching desired auto verified attributes")
	}
	return "email", false, nil
}

// validatePermittedAttributeChanges enforces that every attribute in attrs
// is declared in the pool's schema and mutable.
func validatePermittedAttributeChanges(pool *models.UserPool, attrs []models.AttributeType) error {
	for _, a := range attrs {
		schema := pool.SchemaFor(a.Name)
		if schema == nil {
			return apierr.InvalidParameter(fmt.Sprintf("Attribute does not exist in the schema: %s", a.Name))
		}
		if !schema.Mutable {
			return apierr.InvalidParameter(fmt.Sprintf("Attribute cannot be updated: %s", a.Name))
		}
	}
	return nil
}

// applyAttributeChanges upserts attrs onto user, defaulting
// email_verified/phone_number_verified to "false" whenever the base
// attribute is modified without an explicit verified flag, and rejecting a
// verified flag supplied without its base attribute.
func applyAttributeChanges(user *models.User, attrs []models.AttributeType) error {
	supplied := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		supplied[a.Name] = true
	}
	if supplied["email_verified"] && !supplied["email"] {
		if _, ok := user.Attribute("email"); !ok {
			return apierr.InvalidParameter("email_verified supplied without email")
		}
	}
	if supplied["phone_number_verified"] && !supplied["phone_number"] {
		if _, ok := user.Attribute("phone_number"); !ok {
			return apierr.InvalidParameter("phone_number_verified supplied without phone_number")
		}
	}

	for _, a := range attrs {
		user.SetAttribute(a.Name, a.Value)
	}
	if supplied["email"] && !supplied["email_verified"] {
		user.SetAttribute("email_verified", "false")
	}
	if supplied["phone_number"] && !supplied["phone_number_verified"] {
		user.SetAttribute("phone_number_verified", "false")
	}
	return nil
}
