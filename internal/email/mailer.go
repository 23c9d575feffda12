package email

import (
	"context"
	"strings"
	"sync"

	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/metrics"
)

type message struct {
	to       []string
	subject  string
	template string
	data     TemplateData
}

// Mailer отправляет письма асинхронно через очередь, чтобы HTTP-запрос
// не ждал SMTP. Переполненная очередь отбрасывает письмо с предупреждением.
type Mailer struct {
	provider    Provider
	frontendURL string
	queue       chan message

	mu      sync.Mutex
	wg      sync.WaitGroup
	started bool
	stopped bool
}

func NewMailer(provider Provider, frontendURL string, buffer int) *Mailer {
	if buffer <= 0 {
		buffer = 100
	}
	return &Mailer{
		provider:    provider,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		queue:       make(chan message, buffer),
	}
}

// Start запускает воркеры. Завершаются по ctx или Stop.
func (m *Mailer) Start(ctx context.Context, workers int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true

	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker(ctx)
	}
}

func (m *Mailer) worker(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-m.queue:
			if !ok {
				return
			}
			m.deliver(msg)
		}
	}
}

func (m *Mailer) deliver(msg message) {
	if err := m.provider.SendTemplate(msg.to, msg.subject, msg.template, msg.data); err != nil {
		logger.WorkerLog("mailer", "send:"+msg.template, err, "to", strings.Join(msg.to, ","))
	}
}

// Enqueue ставит письмо в очередь. Nil Mailer ничего не делает.
func (m *Mailer) Enqueue(to []string, subject, templateName string, data TemplateData) {
	if m == nil || len(to) == 0 {
		return
	}
	if data == nil {
		data = TemplateData{}
	}
	if _, ok := data["FrontendURL"]; !ok {
		data["FrontendURL"] = m.frontendURL
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}

	select {
	case m.queue <- message{to: to, subject: subject, template: templateName, data: data}:
		metrics.EmailsQueued.WithLabelValues(templateName).Inc()
	default:
		logger.Warn("mail queue is full, dropping message", "template", templateName)
	}
}

// Flush синхронно отправляет всё, что лежит в очереди (для тестов и
// запуска без воркеров).
func (m *Mailer) Flush() {
	for {
		select {
		case msg := <-m.queue:
			m.deliver(msg)
		default:
			return
		}
	}
}

// Stop закрывает очередь и дожидается отправки оставшихся писем
func (m *Mailer) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	close(m.queue)
	started := m.started
	m.mu.Unlock()

	if started {
		m.wg.Wait()
		return
	}
	for msg := range m.queue {
		m.deliver(msg)
	}
}
