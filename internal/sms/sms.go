// Package sms sends text messages through Twilio.
package sms

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers one SMS. Test doubles record instead of sending.
type Sender interface {
	Send(to, body string) error
}

// TwilioSender sends through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender builds a sender from account credentials.
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}
}

func (s *TwilioSender) Send(to, body string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("internal/sms: twilio send to %s failed: %w", to, err)
	}
	return nil
}

// LogSender is the fallback when Twilio is not configured; it only logs.
// OTP codes still reach the server log in development setups.
type LogSender struct{}

func (LogSender) Send(to, body string) error {
	log.Printf("sms disabled; would send to %s: %s", to, body)
	return nil
}
