package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AgentChief/accredis/extract"
	"github.com/AgentChief/accredis/services"
	"github.com/AgentChief/accredis/utils"
)

// multipart framing on top of the file itself
const uploadOverhead = 1 << 20

func (h *Handler) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req services.GenerateInput
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	doc, err := h.Documents.CreateFromGeneration(r.Context(), user, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, doc)
}

// UploadDocument handles multipart uploads with fields file, clinic_id, category, jurisdiction.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, extract.MaxUploadBytes+uploadOverhead)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			utils.RespondWithError(w, http.StatusBadRequest, "File too large")
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if header.Size > extract.MaxUploadBytes {
		utils.RespondWithError(w, http.StatusBadRequest, "File too large")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, extract.MaxUploadBytes+1))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	doc, err := h.Documents.CreateFromUpload(r.Context(), user, services.UploadInput{
		Filename:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Data:         data,
		Category:     r.FormValue("category"),
		Jurisdiction: r.FormValue("jurisdiction"),
		ClinicID:     r.FormValue("clinic_id"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Document uploaded successfully",
		"document_id": doc.ID.Hex(),
		"document":    doc,
	})
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	docs, err := h.Documents.List(r.Context(), user, services.ListDocumentsInput{
		ClinicID: q.Get("clinic_id"),
		Status:   q.Get("status"),
		Category: q.Get("category"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, docs)
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	doc, err := h.Documents.Get(r.Context(), user, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, doc)
}

// UpdateDocumentStatus accepts the new status as ?status= or as {"status": ...}.
func (h *Handler) UpdateDocumentStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" && r.Body != nil {
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		status = body.Status
	}
	if status == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "status is required")
		return
	}

	doc, err := h.Documents.SetStatus(r.Context(), user, mux.Vars(r)["id"], status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Document status updated",
		"status":         doc.Status,
		"signature_hash": doc.SignatureHash,
		"signed_by":      doc.SignedBy,
		"signed_at":      doc.SignedAt,
	})
}
