package student

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"mentorship-service/common/httputil"
	"mentorship-service/internal/batch"
	"mentorship-service/internal/importer"
	"mentorship-service/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const duplicateStudentMessage = "A student with this ID already exists in this batch"

type Handler struct {
	service        Service
	validate       *validator.Validate
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewHandler(service Service, maxUploadBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		service:        service,
		validate:       validation.New(),
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes registers routes that do not depend on a batch.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/students/import/template", h.DownloadTemplate)
}

func (h *Handler) RegisterBatchRoutes(router chi.Router) {
	router.Get("/students", h.ListStudents)
	router.Post("/students", h.CreateStudent)
	router.Post("/students/bulk", h.BulkCreate)
	router.Post("/students/import", h.Import)
	router.Get("/students/{studentID}", h.GetStudent)
	router.Put("/students/{studentID}", h.UpdateStudent)
	router.Delete("/students/{studentID}", h.DeleteStudent)
	router.Get("/students/{studentID}/attendance", h.GetAttendance)
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	students, err := h.service.List(r.Context(), b.ID, r.URL.Query().Get("q"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, students)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	var req StudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation failed", validation.Fields(err))
		return
	}

	student, err := h.service.Create(r.Context(), b.ID, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "student created", "batch_id", b.ID, "student_id", student.ID)
	httputil.RespondWithJSON(w, http.StatusCreated, student)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	student, err := h.service.Get(r.Context(), b.ID, studentIDParam(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	var req StudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, "Validation failed", validation.Fields(err))
		return
	}

	student, err := h.service.Update(r.Context(), b.ID, studentIDParam(r), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	if err := h.service.Delete(r.Context(), b.ID, studentIDParam(r)); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	summary, err := h.service.Attendance(r.Context(), b.ID, studentIDParam(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, summary)
}

type bulkRequest struct {
	Students []importer.RawRow `json:"students"`
	DryRun   bool              `json:"dry_run"`
}

// BulkCreate accepts already-parsed rows, e.g. from a client-side spreadsheet reader.
func (h *Handler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	var req bulkRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Students) == 0 {
		httputil.RespondWithError(w, http.StatusBadRequest, "No students to import")
		return
	}

	result := h.service.ImportRows(r.Context(), b.ID, req.Students, req.DryRun)
	httputil.RespondWithJSON(w, importStatus(result), result)
}

// Import reads a multipart "file" field holding a .csv, .xlsx or .xls roster.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	b, _ := batch.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if !importer.Supported(header.Filename) {
		httputil.RespondWithError(w, http.StatusBadRequest, importer.ErrUnsupportedFormat.Error())
		return
	}

	dryRun, _ := strconv.ParseBool(r.FormValue("dry_run"))

	result, err := h.service.ImportFile(r.Context(), b.ID, header.Filename, file, dryRun)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "student import processed",
		"batch_id", b.ID,
		"filename", header.Filename,
		"valid", len(result.Students),
		"errors", len(result.Errors),
		"dry_run", dryRun,
	)
	httputil.RespondWithJSON(w, importStatus(result), result)
}

func (h *Handler) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := importer.Template()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithAttachment(w, importer.TemplateContentType, importer.TemplateFilename, data)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrStudentNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Student not found")
	case errors.Is(err, ErrDuplicateStudentID):
		httputil.RespondWithFieldErrors(w, http.StatusConflict, duplicateStudentMessage, map[string]string{"student_id": duplicateStudentMessage})
	case errors.Is(err, ErrInvalidFile):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "student request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// importStatus is 201 when rows were written and 200 for previews.
func importStatus(result *ImportResult) int {
	if result.Result != nil && result.Result.Successful > 0 {
		return http.StatusCreated
	}
	return http.StatusOK
}

func studentIDParam(r *http.Request) uuid.UUID {
	id, err := uuid.Parse(chi.URLParam(r, "studentID"))
	if err != nil {
		return uuid.Nil
	}
	return id
}
