package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"tonehub/internal/api"
	"tonehub/internal/download"
	"tonehub/internal/entitlement"
	"tonehub/internal/filter"
	"tonehub/internal/preview"
	"tonehub/internal/services"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := filter.Params{
		Query: query.Get("q"),
		Type:  filter.ParseMatch(query.Get("type")),
		Brand: filter.ParseMatch(query.Get("brand")),
	}
	s.writeJSON(w, http.StatusOK, s.deps.Library.Search(params))
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.deps.Library.Lookup(r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ItemResponse{Item: api.FromItem(item)})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.deps.Library.Stats())
}

func (s *Server) handlePacks(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.deps.Library.Packs(0))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Library.Reload(r.Context()); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.deps.Library.Stats())
}

func (s *Server) previewStatus(status string) api.PreviewStatus {
	session, ok := s.deps.Preview.Current()
	out := api.FromSession(session, ok, s.deps.Preview.Supported())
	out.Status = status
	return s.withFailure(out)
}

func (s *Server) handlePreviewStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.previewStatus(""))
}

func (s *Server) handlePreviewStart(w http.ResponseWriter, r *http.Request) {
	item, err := s.deps.Library.Lookup(r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.observed.clearFailure()
	status, err := s.deps.Preview.Start(services.WithItemID(r.Context(), item.ID), item)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	code := http.StatusAccepted
	if status != preview.StatusLoading {
		code = http.StatusOK
	}
	s.writeJSON(w, code, s.previewStatus(string(status)))
}

func (s *Server) handlePreviewStop(w http.ResponseWriter, _ *http.Request) {
	status := "idle"
	if s.deps.Preview.Stop() {
		status = "stopped"
	}
	s.writeJSON(w, http.StatusOK, s.previewStatus(status))
}

// handlePreviewDismiss clears the pending failure message.
func (s *Server) handlePreviewDismiss(w http.ResponseWriter, _ *http.Request) {
	status := "none"
	if s.observed.clearFailure() {
		status = "dismissed"
	}
	s.writeJSON(w, http.StatusOK, s.previewStatus(status))
}

func (s *Server) handleEntitlement(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.entitlementStatus())
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	err := s.deps.Gate.Verify(r.Context(), req.Key)
	if err != nil && !errors.Is(err, services.ErrTransient) {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeEntitlement(w, err)
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	var req api.PaymentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.PayerName) == "" {
		s.writeError(w, http.StatusUnprocessableEntity, "payerName is required", "validation")
		return
	}
	err := s.deps.Gate.ConfirmPayment(r.Context(), entitlement.Payment{PayerName: req.PayerName, OrderID: req.OrderID})
	s.writeEntitlement(w, err)
}

// writeEntitlement reports the gate after an unlock event. A persistence
// failure still unlocked the session, so it is a warning, not an error.
func (s *Server) writeEntitlement(w http.ResponseWriter, persistErr error) {
	out := s.entitlementStatus()
	out.Message = "Downloads unlocked."
	if persistErr != nil {
		out.Message = "Downloads unlocked for this session only; the unlock could not be saved."
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	item, err := s.deps.Library.Lookup(r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	res, err := s.deps.Downloads.Dispatch(r.Context(), item, s.deps.Gate.State())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	code := http.StatusOK
	if res.Action == download.ActionPromptEntitlement {
		code = http.StatusConflict
	}
	s.writeJSON(w, code, api.FromDownload(res))
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "bad_request")
		return false
	}
	return true
}
