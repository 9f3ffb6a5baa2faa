package mailer

import (
	"fmt"
	"html"
	"time"
)

// OTPMessage renders the registration code email.
func OTPMessage(from, to, code string, ttl time.Duration) Message {
	mins := int(ttl.Round(time.Minute) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	return Message{
		From:    from,
		To:      to,
		Subject: "Hostel Management OTP Verification",
		Text: fmt.Sprintf("Your One-Time Password (OTP) for registration is: %s. It is valid for %d minutes.",
			code, mins),
		HTML: fmt.Sprintf("<p>Your One-Time Password (OTP) for registration is: <b>%s</b></p><p>It is valid for %d minutes.</p>",
			html.EscapeString(code), mins),
	}
}
