package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/infrastructure/recovery"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/presentation/controllers/dtos"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/composables"
)

// SessionsController serves the recovery layer: the UI polls it on mount and
// on tab-visibility changes to decide whether to surface a recovery prompt.
type SessionsController struct {
	basePath      string
	recoveryStore *recovery.Store
}

func NewSessionsController(recoveryStore *recovery.Store) *SessionsController {
	return &SessionsController{
		basePath:      "/inventory/api/sessions",
		recoveryStore: recoveryStore,
	}
}

func (c *SessionsController) Key() string {
	return c.basePath
}

func (c *SessionsController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/{scope}/recoverable", c.getRecoverable).Methods(http.MethodGet)
	router.HandleFunc("/{scope}/acknowledge", c.acknowledge).Methods(http.MethodPost)
	router.HandleFunc("/{scope}", c.discard).Methods(http.MethodDelete)
}

func (c *SessionsController) getRecoverable(w http.ResponseWriter, r *http.Request) {
	scope := mux.Vars(r)["scope"]
	snapshot, err := c.recoveryStore.GetRecoverable(r.Context(), scope)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to read recovery snapshot")
		writeJSONError(w, http.StatusInternalServerError, "SESSION_READ_ERROR", "failed to read session snapshot")
		return
	}
	if snapshot == nil {
		writeJSON(w, http.StatusOK, dtos.RecoverableResponse{Recoverable: false})
		return
	}
	writeJSON(w, http.StatusOK, dtos.RecoverableResponse{Recoverable: true, Snapshot: snapshot})
}

func (c *SessionsController) acknowledge(w http.ResponseWriter, r *http.Request) {
	scope := mux.Vars(r)["scope"]
	if err := c.recoveryStore.Acknowledge(r.Context(), scope); err != nil {
		writeJSONError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "no session snapshot for scope")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *SessionsController) discard(w http.ResponseWriter, r *http.Request) {
	scope := mux.Vars(r)["scope"]
	if err := c.recoveryStore.Discard(r.Context(), scope); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "SESSION_DISCARD_ERROR", "failed to discard session snapshot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
