package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplatesRender(t *testing.T) {
	tm := NewTemplateManager()

	for _, name := range []string{TemplateWelcome, TemplateNewApplication, TemplateApplicationStatus, TemplateSubscriberWelcome, TemplateJobAlert} {
		out, err := tm.Render(name, TemplateData{"Name": "Ann", "JobTitle": "Go Developer"})
		require.NoError(t, err, name)
		assert.Contains(t, out, "<html>", name)
	}

	_, err := tm.Render("missing", nil)
	assert.Error(t, err)
}

func TestMailer_FlushDeliversQueued(t *testing.T) {
	provider := NewLogProvider(NewTemplateManager())
	m := NewMailer(provider, "https://jobs.example.com/", 10)

	m.Enqueue([]string{"ann@example.com"}, "Welcome", TemplateWelcome, TemplateData{"Name": "Ann"})
	m.Enqueue(nil, "ignored", TemplateWelcome, nil)
	m.Flush()

	sent := provider.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"ann@example.com"}, sent[0].To)
	assert.Contains(t, sent[0].HTMLBody, "https://jobs.example.com")
}

func TestMailer_StopDrainsWorkers(t *testing.T) {
	provider := NewLogProvider(NewTemplateManager())
	m := NewMailer(provider, "", 10)
	m.Start(context.Background(), 2)

	for i := 0; i < 5; i++ {
		m.Enqueue([]string{"a@example.com"}, "Hi", TemplateWelcome, nil)
	}
	m.Stop()

	assert.Len(t, provider.Sent(), 5)

	// после Stop письма не принимаются
	m.Enqueue([]string{"a@example.com"}, "Hi", TemplateWelcome, nil)
	assert.Len(t, provider.Sent(), 5)
}

func TestNilMailerIsNoop(t *testing.T) {
	var m *Mailer
	assert.NotPanics(t, func() {
		m.Enqueue([]string{"a@example.com"}, "Hi", TemplateWelcome, nil)
	})
}
