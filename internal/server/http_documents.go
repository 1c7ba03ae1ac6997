package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/shirkaty/portal/internal/blob"
	"github.com/shirkaty/portal/internal/events"
	"github.com/shirkaty/portal/internal/idgen"
	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/store"
)

// maxUploadBytes caps document uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// handleListDocuments handles GET /v1/documents.
func (s *PortalServer) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	filter := model.DocumentFilter{UserID: identity.UserID}
	if v := r.URL.Query().Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			filter.Status = append(filter.Status, model.DocumentStatus(st))
		}
	}

	documents, _, err := s.store.ListDocuments(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if documents == nil {
		documents = []*model.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": documents})
}

// handleRequestDocument handles POST /v1/documents: the user asks the back
// office to produce a document. The record starts pending with no file.
func (s *PortalServer) handleRequestDocument(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	var in struct {
		Name          string `json:"name"`
		Type          string `json:"type"`
		ReferenceDate string `json:"reference_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := idgen.Generate(idgen.PrefixDocument)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate id")
		return
	}
	doc := &model.Document{
		ID:        id,
		UserID:    identity.UserID,
		Name:      strings.TrimSpace(in.Name),
		Type:      strings.TrimSpace(in.Type),
		Status:    model.DocumentPending,
		CreatedAt: time.Now().UTC(),
	}
	if in.ReferenceDate != "" {
		ref, err := time.Parse("2006-01-02", in.ReferenceDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "reference_date must be YYYY-MM-DD")
			return
		}
		doc.ReferenceDate = ref
	}
	if err := model.ValidateDocumentRequest(doc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.CreateDocument(r.Context(), doc); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create document")
		return
	}

	s.publish(r.Context(), events.TopicDocumentCreated, events.DocumentCreated{Document: doc})
	writeJSON(w, http.StatusCreated, doc)
}

// handleUploadDocument handles POST /v1/documents/upload
// (multipart/form-data with name, type, and file). The file body is stored
// first, then the record is inserted. Every submission creates a fresh
// record with its own id; identical uploads are not deduplicated.
func (s *PortalServer) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	docType := strings.TrimSpace(r.FormValue("type"))

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}
	if len(data) > maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds 10 MiB")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "file is empty")
		return
	}

	id, err := idgen.Generate(idgen.PrefixDocument)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate id")
		return
	}
	if name == "" {
		name = header.Filename
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:            id,
		UserID:        identity.UserID,
		Name:          name,
		Type:          docType,
		ReferenceDate: now,
		Status:        model.DocumentCompleted,
		FileKey:       path.Join(identity.UserID, id, header.Filename),
		CreatedAt:     now,
	}
	if err := model.ValidateDocumentRequest(doc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.blobs.Put(r.Context(), doc.FileKey, data, contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	if err := s.store.CreateDocument(r.Context(), doc); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create document")
		return
	}

	s.publish(r.Context(), events.TopicDocumentCreated, events.DocumentCreated{Document: doc})
	writeJSON(w, http.StatusCreated, doc)
}

// getOwnedDocument fetches a document and checks the caller may see it.
func (s *PortalServer) getOwnedDocument(w http.ResponseWriter, r *http.Request) (*model.Document, bool) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return nil, false
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return nil, false
	}

	doc, err := s.store.GetDocument(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get document")
		return nil, false
	}
	if identity.Role != model.RoleAdmin && doc.UserID != identity.UserID {
		writeError(w, http.StatusNotFound, "document not found")
		return nil, false
	}
	return doc, true
}

// handleGetDocument handles GET /v1/documents/{id}.
func (s *PortalServer) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.getOwnedDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleDownloadDocument handles GET /v1/documents/{id}/file.
func (s *PortalServer) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.getOwnedDocument(w, r)
	if !ok {
		return
	}
	if doc.FileKey == "" {
		writeError(w, http.StatusConflict, "document has no file yet")
		return
	}

	data, err := s.blobs.Get(r.Context(), doc.FileKey)
	if errors.Is(err, blob.ErrNotFound) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch file")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(doc.FileKey)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
