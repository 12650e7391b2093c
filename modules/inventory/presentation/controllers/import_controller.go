package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/importjob"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/infrastructure/excel"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/infrastructure/recovery"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/presentation/controllers/dtos"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/services"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/composables"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/sse"
)

// ImportController exposes the streaming import endpoint. One request
// carries the uploaded workbook and job parameters; the response is the
// framed event stream. Precondition failures answer with a single JSON error
// body before any streaming begins.
type ImportController struct {
	basePath      string
	importService *services.ImportService
	recoveryStore *recovery.Store
	maxUploadSize int64
	validate      *validator.Validate
}

type ImportControllerConfig struct {
	ImportService *services.ImportService
	RecoveryStore *recovery.Store
	MaxUploadSize int64
}

func NewImportController(config ImportControllerConfig) *ImportController {
	return &ImportController{
		basePath:      "/inventory/api",
		importService: config.ImportService,
		recoveryStore: config.RecoveryStore,
		maxUploadSize: config.MaxUploadSize,
		validate:      validator.New(),
	}
}

func (c *ImportController) Key() string {
	return c.basePath + "/import"
}

func (c *ImportController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/import", c.runImport).Methods(http.MethodPost)
}

func (c *ImportController) runImport(w http.ResponseWriter, r *http.Request) {
	logger := composables.UseLogger(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadSize)
	if err := r.ParseMultipartForm(c.maxUploadSize); err != nil {
		writeJSONError(w, http.StatusBadRequest, "IMPORT_BAD_UPLOAD", "cannot parse upload: "+err.Error())
		return
	}

	req := dtos.ImportRequest{
		Kind:  r.FormValue("kind"),
		Model: r.FormValue("model"),
		Scope: r.FormValue("scope"),
	}
	if err := c.validate.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "IMPORT_INVALID_PARAMS", err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "IMPORT_MISSING_FILE", "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	if err := excel.SniffWorkbook(file); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, "IMPORT_NOT_XLSX", "uploaded file is not an xlsx workbook")
		return
	}

	source, err := excel.NewRowSource(file)
	if err != nil {
		// Whole-job precondition failure: no rows were processed, answer
		// with a plain error body instead of a stream.
		writeJSONError(w, http.StatusUnprocessableEntity, "IMPORT_UNREADABLE_SOURCE", err.Error())
		return
	}
	defer func() { _ = source.Close() }()

	stream, err := sse.NewWriter(w)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "IMPORT_NO_STREAMING", err.Error())
		return
	}

	kind := importjob.Kind(req.Kind)
	fileIdentity := importjob.FileIdentity{
		Name:    header.Filename,
		Size:    header.Size,
		ModTime: parseModTime(r.FormValue("modTime")),
	}

	// Recovery writes must survive a severed connection: they use a context
	// detached from the request's cancellation.
	recoveryCtx := context.WithoutCancel(r.Context())
	recorder := recovery.NewRecorder(c.recoveryStore, req.Scope, logger)
	recorder.Start(recoveryCtx, kind, fileIdentity)

	caching := recovery.NewCachingSource(source, 0)

	emit := func(event importjob.Event) {
		if err := stream.Send(string(event.Type), event.Payload); err != nil {
			logger.WithError(err).Debug("import stream: client gone")
		}
		switch payload := event.Payload.(type) {
		case importjob.ProgressPayload:
			recorder.Progress(recoveryCtx, payload.Progress, payload.Stats)
			recorder.Log(recoveryCtx, "info", payload.Message)
		case importjob.WarningPayload:
			recorder.Log(recoveryCtx, "warning", payload.Message)
		case importjob.ErrorPayload:
			recorder.Log(recoveryCtx, "error", payload.Message)
		}
	}

	result, err := c.importService.Run(r.Context(), services.RunParams{
		Kind:  kind,
		Model: req.Model,
		File:  fileIdentity,
	}, caching, emit)

	// Cache whatever rows were read, even for interrupted jobs: the sample
	// is what verification and the recovery prompt work from.
	recorder.SourceSample(recoveryCtx, caching.Rows())

	switch {
	case err == nil:
		recorder.Complete(recoveryCtx, result)
	case errors.Is(err, context.Canceled):
		logger.Info("import stream cancelled by client")
	default:
		logger.WithError(err).Error("import failed")
	}
}
