package v1

import (
	"embed"
	"html/template"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tracker/internal/models"
	"github.com/adanyl0v/go-tracker/internal/services"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"fieldErrors": func(verr *services.ValidationError, field string) []string {
		if verr == nil {
			return nil
		}
		return verr.Fields[field]
	},
	"nonFieldErrors": func(verr *services.ValidationError) []string {
		if verr == nil {
			return nil
		}
		return verr.NonField
	},
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(time.DateOnly)
	},
	"datetime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
	"id": func(id int64) string {
		return strconv.FormatInt(id, 10)
	},
	"statusLabel":  models.TaskStatusLabel,
	"taskStatuses": func() []string { return models.TaskStatuses },
}

// LoadTemplates parses the embedded page templates. Pages are looked
// up by file name, e.g. "projects.html".
func LoadTemplates() (*template.Template, error) {
	return template.New("").
		Funcs(templateFuncs).
		ParseFS(templatesFS, "templates/*.html")
}

// formValues holds submitted or prefilled form input by field name.
type formValues map[string]string

func (h *handlerImpl) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Form"]; !ok {
		data["Form"] = formValues{}
	}
	_, authenticated := c.Get(userIDCtxKey)
	data["Authenticated"] = authenticated
	c.HTML(status, name, data)
}
