// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/dalemusser/projecthub/internal/app/system/htmlsanitize"
)

// InvitationEmailData holds data for the group invitation email.
type InvitationEmailData struct {
	SiteName   string
	GroupName  string
	ProjectRef string
	Message    string // already sanitized plain text
	AcceptURL  string
	ExpiresIn  string // e.g., "7 days"
}

// BuildInvitationEmail creates an invitation email with both HTML and text bodies.
func BuildInvitationEmail(data InvitationEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("You're invited to join %s on %s", data.GroupName, data.SiteName),
		TextBody: buildInvitationText(data),
		HTMLBody: buildInvitationHTML(data),
	}
}

func buildInvitationText(data InvitationEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("You have been invited to join the group %q on %s.\n", data.GroupName, data.SiteName))
	if data.ProjectRef != "" {
		buf.WriteString(fmt.Sprintf("Project: %s\n", data.ProjectRef))
	}
	buf.WriteString("\n")
	if data.Message != "" {
		buf.WriteString("Message from the group:\n")
		buf.WriteString(data.Message + "\n\n")
	}
	buf.WriteString("Accept the invitation here:\n")
	buf.WriteString(data.AcceptURL + "\n\n")
	buf.WriteString(fmt.Sprintf("This link expires in %s.\n\n", data.ExpiresIn))
	buf.WriteString("If you were not expecting this invitation, you can safely ignore this email.\n")
	return buf.String()
}

type invitationView struct {
	InvitationEmailData
	MessageHTML template.HTML
}

var invitationTmpl = template.Must(template.New("invitation").Parse(invitationHTMLTemplate))

func buildInvitationHTML(data InvitationEmailData) string {
	var buf bytes.Buffer
	_ = invitationTmpl.Execute(&buf, invitationView{
		InvitationEmailData: data,
		MessageHTML:         htmlsanitize.PlainTextToHTML(data.Message),
	})
	return buf.String()
}

const invitationHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Group Invitation</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #0f766e;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151; line-height: 1.5;">
                You have been invited to join <strong>{{.GroupName}}</strong>.
              </p>
              {{if .ProjectRef}}<p style="margin: 0 0 16px; font-size: 14px; color: #6b7280;">Project: {{.ProjectRef}}</p>{{end}}
              {{if .MessageHTML}}<blockquote style="margin: 0 0 24px; padding: 12px 16px; background-color: #f9fafb; border-left: 4px solid #0f766e; color: #374151;">{{.MessageHTML}}</blockquote>{{end}}
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.AcceptURL}}" style="display: inline-block; padding: 14px 32px; background-color: #0f766e; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">
                      Accept Invitation
                    </a>
                  </td>
                </tr>
              </table>
              <p style="margin: 24px 0 0; font-size: 13px; color: #9ca3af; text-align: center;">
                This link expires in {{.ExpiresIn}}.
              </p>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                If you were not expecting this invitation, you can safely ignore this email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
