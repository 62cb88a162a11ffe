package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVerifyEmail(t *testing.T) {
	job := &EmailJob{
		To:       "alice@example.com",
		Template: TemplateVerifyEmail,
		Data: map[string]any{
			"Username":         "alice",
			"VerificationLink": "http://localhost:8080/api/auth/verify-email?token=abc",
		},
	}
	require.NoError(t, Render(job))

	assert.Equal(t, "Email verification", job.Subject)
	assert.Contains(t, job.HTML, "Hi alice")
	assert.Contains(t, job.HTML, "http://localhost:8080/api/auth/verify-email?token=abc")
	assert.Contains(t, job.Text, "token=abc")
}

func TestRenderPassthroughWithoutTemplate(t *testing.T) {
	job := &EmailJob{To: "alice@example.com", Subject: "hello", Text: "hi"}
	require.NoError(t, Render(job))
	assert.Equal(t, "hello", job.Subject)
	assert.Equal(t, "hi", job.Text)
}

func TestRenderUnknownTemplate(t *testing.T) {
	job := &EmailJob{To: "alice@example.com", Template: "nope"}
	assert.Error(t, Render(job))
}
