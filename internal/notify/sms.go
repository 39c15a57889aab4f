package notify

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

type SMSClient struct {
	accountSID string
	authToken  string
	fromNumber string
	httpClient *http.Client
}

type SMSOption func(*SMSClient)

func WithSMSHTTPClient(c *http.Client) SMSOption {
	return func(cl *SMSClient) {
		cl.httpClient = c
	}
}

func NewSMSClient(accountSID, authToken, fromNumber string, opts ...SMSOption) *SMSClient {
	c := &SMSClient{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the account SID, auth token, and sending
// number are all set.
func (c *SMSClient) Configured() bool {
	return c.accountSID != "" && c.authToken != "" && c.fromNumber != ""
}

// Send delivers an SMS through the Twilio Messages API.
func (c *SMSClient) Send(to, body string) error {
	if !c.Configured() {
		return fmt.Errorf("sms client not configured: missing credentials")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioBaseURL, c.accountSID)
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("twilio API error: status %d", resp.StatusCode)
	}

	return nil
}
