package email

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// TemplateManager реализует TemplateRenderer. Встроенные шаблоны можно
// перекрыть файлами <name>.html из каталога templates_dir.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}
	for name, body := range defaultTemplates {
		// встроенные шаблоны проверены тестом, ошибка здесь - баг
		if err := tm.AddTemplate(name, body); err != nil {
			panic(err)
		}
	}
	return tm
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Option("missingkey=zero").Parse(layoutHeader + templateStr + layoutFooter)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}

// LoadTemplates загружает *.html из директории. Отсутствующая директория - не ошибка.
func (tm *TemplateManager) LoadTemplates(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}

		templateName := strings.TrimSuffix(filepath.Base(path), ".html")
		if err := tm.AddTemplate(templateName, string(content)); err != nil {
			return fmt.Errorf("failed to add template %s: %w", templateName, err)
		}
		return nil
	})
}

func (tm *TemplateManager) TemplateNames() []string {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	names := make([]string, 0, len(tm.templates))
	for name := range tm.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const layoutHeader = `<!DOCTYPE html><html><body style="font-family:Arial,sans-serif;color:#222">`
const layoutFooter = `<hr><p style="font-size:12px;color:#888">Job Portal</p></body></html>`

var defaultTemplates = map[string]string{
	TemplateWelcome: `<h2>Welcome, {{.Name}}!</h2>
<p>Your {{.Role}} account has been created. You can sign in at <a href="{{.FrontendURL}}">{{.FrontendURL}}</a>.</p>`,

	TemplateNewApplication: `<h2>New application for "{{.JobTitle}}"</h2>
<p>{{.ApplicantName}} has applied to your job posting.</p>
<p><a href="{{.FrontendURL}}/dashboard/jobs/{{.JobID}}/applications">Review applications</a></p>`,

	TemplateApplicationStatus: `<h2>Your application was updated</h2>
<p>Hello {{.Name}}, the status of your application for "{{.JobTitle}}" is now <b>{{.Status}}</b>.</p>
{{if .Notes}}<p>{{.Notes}}</p>{{end}}`,

	TemplateSubscriberWelcome: `<h2>Thanks for subscribing{{if .Name}}, {{.Name}}{{end}}!</h2>
<p>We will send you new job openings as they are published.</p>
<p><a href="{{.FrontendURL}}/unsubscribe?token={{.Token}}">Unsubscribe</a></p>`,

	TemplateJobAlert: `<h2>New job: {{.JobTitle}}</h2>
<p>{{.CompanyName}}{{if .Location}} · {{.Location}}{{end}}</p>
<p><a href="{{.FrontendURL}}/jobs/{{.JobSlug}}">View the job</a></p>
<p style="font-size:12px"><a href="{{.FrontendURL}}/unsubscribe?token={{.Token}}">Unsubscribe</a></p>`,
}
