package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

const notificationTemplate = `<html><body>
<h2>{{.Title}}</h2>
<p>{{.Message}}</p>
{{if .URL}}<p><a href="{{.URL}}">Voir dans l'application</a></p>{{end}}
</body></html>`

const digestTemplate = `<html><body>
<h2>{{.Heading}}</h2>
<ul>
{{range .Items}}<li><strong>{{.Title}}</strong>{{if .Message}} : {{.Message}}{{end}}</li>
{{end}}</ul>
</body></html>`

// TemplateManager implements TemplateRenderer with an in-memory template set.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager returns a manager preloaded with the notification and
// digest mail templates.
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{templates: make(map[string]*template.Template)}
	// Built-in templates parse by construction.
	_ = tm.AddTemplate("notification", notificationTemplate)
	_ = tm.AddTemplate("digest", digestTemplate)
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
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}
