package models

// MailboxSettings are the signed-in user's mailbox preferences.
// DateFormat and TimeFormat use .NET style patterns such as "M/d/yyyy" and "h:mm tt".
type MailboxSettings struct {
	TimeZone   string
	DateFormat string
	TimeFormat string
}

// DateTimeFormat is the combined pattern used to render event times.
func (m MailboxSettings) DateTimeFormat() string {
	return m.DateFormat + " " + m.TimeFormat
}

// UserProfile is a snapshot of the signed-in user, fetched once after sign-in.
type UserProfile struct {
	DisplayName string
	Mailbox     MailboxSettings
}
