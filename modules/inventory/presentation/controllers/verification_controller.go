package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/verification"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/infrastructure/recovery"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/presentation/controllers/dtos"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/services"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/composables"
)

// VerificationController reconciles the cached source sample against the
// store. Results return as a single JSON body; reconciliation is bounded and
// fast, no streaming needed.
type VerificationController struct {
	basePath            string
	verificationService *services.VerificationService
	recoveryStore       *recovery.Store
	validate            *validator.Validate
}

func NewVerificationController(
	verificationService *services.VerificationService,
	recoveryStore *recovery.Store,
) *VerificationController {
	return &VerificationController{
		basePath:            "/inventory/api/verify",
		verificationService: verificationService,
		recoveryStore:       recoveryStore,
		validate:            validator.New(),
	}
}

func (c *VerificationController) Key() string {
	return c.basePath
}

func (c *VerificationController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.verify).Methods(http.MethodPost)
	router.HandleFunc("/export", c.export).Methods(http.MethodGet)
}

func (c *VerificationController) verify(w http.ResponseWriter, r *http.Request) {
	var req dtos.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "VERIFY_BAD_BODY", "cannot parse request body")
		return
	}
	if err := c.validate.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "VERIFY_INVALID_PARAMS", err.Error())
		return
	}

	result, ok := c.runVerification(w, r, req.Scope, req.Kind)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *VerificationController) export(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	kind := r.URL.Query().Get("kind")
	format := r.URL.Query().Get("format")
	if scope == "" || kind == "" {
		writeJSONError(w, http.StatusBadRequest, "VERIFY_INVALID_PARAMS", "scope and kind are required")
		return
	}

	result, ok := c.runVerification(w, r, scope, kind)
	if !ok {
		return
	}

	switch format {
	case "", "json":
		data, err := result.ToJSON()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "VERIFY_EXPORT_ERROR", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="verification.json"`)
		_, _ = w.Write(data)
	case "csv":
		data, err := result.ToCSV()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "VERIFY_EXPORT_ERROR", err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="verification.csv"`)
		_, _ = w.Write(data)
	case "xlsx":
		data, err := c.verificationService.ExportXLSX(result)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "VERIFY_EXPORT_ERROR", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="verification.xlsx"`)
		_, _ = w.Write(data)
	default:
		writeJSONError(w, http.StatusBadRequest, "VERIFY_INVALID_FORMAT", fmt.Sprintf("unknown format %q", format))
	}
}

func (c *VerificationController) runVerification(
	w http.ResponseWriter,
	r *http.Request,
	scope, kind string,
) (*verification.Result, bool) {
	snapshot, err := c.recoveryStore.GetRecoverable(r.Context(), scope)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("verification: failed to read snapshot")
		writeJSONError(w, http.StatusInternalServerError, "VERIFY_SNAPSHOT_ERROR", "failed to read session snapshot")
		return nil, false
	}
	if snapshot == nil || len(snapshot.SampleRows) == 0 {
		writeJSONError(w, http.StatusNotFound, "VERIFY_NO_SOURCE", "no cached source rows for scope")
		return nil, false
	}

	result, err := c.verificationService.Verify(r.Context(), kind, snapshot.SampleRows)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("verification failed")
		writeJSONError(w, http.StatusInternalServerError, "VERIFY_ERROR", "verification failed")
		return nil, false
	}
	return result, true
}
