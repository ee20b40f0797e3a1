package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"readiness-workers/pkg/registry"
)

// WorkerData feeds the scaffold templates.
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	Category     string
	Description  string
	Timeout      string
	ErrorCodes   []string
	InputFields  []Field
	OutputFields []Field
}

// Field is one struct field derived from a JSON schema property.
type Field struct {
	Name     string
	GoType   string
	JSONName string
	Required bool
}

// Tag renders the struct tag for f.
func (f Field) Tag() string {
	if f.Required {
		return fmt.Sprintf("`json:\"%s\" validate:\"required\"`", f.JSONName)
	}
	return fmt.Sprintf("`json:\"%s,omitempty\"`", f.JSONName)
}

// HasRequiredInput reports whether an empty Input fails validation.
func (d WorkerData) HasRequiredInput() bool {
	for _, f := range d.InputFields {
		if f.Required {
			return true
		}
	}
	return false
}

func newWorkerData(a registry.Activity) WorkerData {
	timeout := a.Timeout
	if timeout == "" {
		timeout = "10s"
	}
	return WorkerData{
		Name:         a.DisplayName,
		PackageName:  packageName(a.TaskType),
		TaskType:     a.TaskType,
		Category:     a.Category,
		Description:  a.Description,
		Timeout:      timeout,
		ErrorCodes:   a.ErrorCodes,
		InputFields:  schemaFields(a.InputSchema),
		OutputFields: schemaFields(a.OutputSchema),
	}
}

func packageName(taskType string) string {
	return strings.NewReplacer("-", "", ".", "", "_", "").Replace(strings.ToLower(taskType))
}

// schemaFields lists the schema's properties sorted by name.
func schemaFields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	required := make(map[string]bool)
	if req, ok := schema["required"].([]interface{}); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		details, _ := props[name].(map[string]interface{})
		fields = append(fields, Field{
			Name:     goFieldName(name),
			GoType:   goType(details),
			JSONName: name,
			Required: required[name],
		})
	}
	return fields
}

func goFieldName(prop string) string {
	if prop == "" {
		return prop
	}
	name := strings.ToUpper(prop[:1]) + prop[1:]
	switch {
	case strings.HasSuffix(name, "Ids"):
		return strings.TrimSuffix(name, "Ids") + "IDs"
	case strings.HasSuffix(name, "Id"):
		return strings.TrimSuffix(name, "Id") + "ID"
	}
	return name
}

func goType(details map[string]interface{}) string {
	switch details["type"] {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		items, _ := details["items"].(map[string]interface{})
		if elem := goType(items); elem != "interface{}" {
			return "[]" + elem
		}
		return "[]interface{}"
	default:
		return "interface{}"
	}
}

var scaffoldTemplates = map[string]string{
	"config.go":       configTemplate,
	"models.go":       modelsTemplate,
	"handler.go":      handlerTemplate,
	"handler_test.go": testTemplate,
}

// generate writes the scaffold for data into dir. Existing files are kept
// unless force is set.
func generate(dir string, data WorkerData, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	names := make([]string, 0, len(scaffoldTemplates))
	for name := range scaffoldTemplates {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil && !force {
			return written, fmt.Errorf("%s already exists, use --force to overwrite", path)
		}

		src, err := render(name, scaffoldTemplates[name], data)
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func render(name, text string, data WorkerData) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", name, err)
	}
	return src, nil
}

const configTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/config.go
package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	timeout, err := time.ParseDuration("{{ .Timeout }}")
	if err != nil {
		timeout = 10 * time.Second
	}
	return &Config{Timeout: timeout}
}
`

const modelsTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/models.go
package {{ .PackageName }}

type Input struct {
{{- range .InputFields }}
	{{ .Name }} {{ .GoType }} {{ .Tag }}
{{- end }}
}

type Output struct {
{{- range .OutputFields }}
	{{ .Name }} {{ .GoType }} ` + "`json:\"{{ .JSONName }}\"`" + `
{{- end }}
}
`

const handlerTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/metrics"
	"readiness-workers/internal/common/observability"
	"readiness-workers/internal/models"
	"readiness-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "{{ .TaskType }}"
)

// Handler {{ if .Description }}{{ .Description }}{{ else }}runs {{ .TaskType }} jobs{{ end }}.
type Handler struct {
	config *Config
	store  *store.Store
	obs    *observability.Observability
	errs   *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		store:  store.New(db),
		obs:    obs,
		errs:   errors.NewErrorHandler(log),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Int64("jobKey", job.Key))
	defer span.End()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)), start)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		span.RecordError(err)
		h.failJob(ctx, client, job, err, start)
		return
	}

	h.completeJob(ctx, client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := models.ValidateStruct(input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
{{- if .ErrorCodes }}

	// Declared error codes:{{ range .ErrorCodes }} {{ . }}{{ end }}
{{- end }}
	return &Output{}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
	h.errs.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const testTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"
	"time"

	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/observability"
	"readiness-workers/internal/store/storetest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock := storetest.MockDB(t)
	cfg := &Config{Timeout: 5 * time.Second}
	return NewHandler(cfg, db, observability.NewNoop(), logger.NewTestLogger(t)), mock
}

func TestExecute(t *testing.T) {
	h, mock := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{})
{{- if .HasRequiredInput }}
	require.Error(t, err)
{{- else }}
	require.NoError(t, err)
{{- end }}
	require.NoError(t, mock.ExpectationsWereMet())
}
`
