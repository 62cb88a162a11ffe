package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// TemplateVerifyEmail renders the account verification message.
const TemplateVerifyEmail = "verify_email"

var verifyEmailTmpl = template.Must(template.New(TemplateVerifyEmail).Parse(`<html>
<body>
  <p>Hi {{.Username}},</p>
  <p>Please confirm your email address by clicking the link below:</p>
  <p><a href="{{.VerificationLink}}">Verify my email</a></p>
  <p>If you did not create this account, you can safely ignore this message.</p>
</body>
</html>
`))

// Render fills in the job's Subject, Text and HTML from its named template.
// Jobs without a template pass through untouched.
func Render(job *EmailJob) error {
	switch strings.ToLower(job.Template) {
	case "":
		return nil
	case TemplateVerifyEmail:
		var buf bytes.Buffer
		if err := verifyEmailTmpl.Execute(&buf, job.Data); err != nil {
			return err
		}
		job.Subject = "Email verification"
		job.HTML = buf.String()
		if link, ok := job.Data["VerificationLink"].(string); ok {
			job.Text = "Verify your email: " + link
		}
		return nil
	default:
		return fmt.Errorf("unknown email template %q", job.Template)
	}
}
