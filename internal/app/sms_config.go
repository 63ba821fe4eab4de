package app

import "github.com/grocerylab/grocery-api/pkg/sms"

// GatewaySettings converts SMSConfig to the sms package representation.
func (c SMSConfig) GatewaySettings() sms.GatewaySettings {
	return sms.GatewaySettings{
		Enabled:  c.Enabled,
		Endpoint: c.Endpoint,
		APIKey:   c.APIKey,
		SenderID: c.SenderID,
		Timeout:  c.Timeout,
	}
}
