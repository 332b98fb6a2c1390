package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
	"github.com/classiccarrry/classic-carrry-admin/internal/storefront"
)

// maxUploadMemory bounds the multipart form kept in memory; larger parts
// spill to temporary files.
const maxUploadMemory = 32 << 20

type orderStatusRequest struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

// UpdateOrderStatus sets the fulfilment status or the payment status of an
// order, whichever the body carries.
func (s *Server) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := s.mount(w, "orders")
	if !ok {
		return
	}
	var req orderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")

	var err error
	switch {
	case req.Status != "":
		err = c.SetOrderStatus(r.Context(), id, req.Status)
	case req.PaymentStatus != "":
		err = c.SetPaymentStatus(r.Context(), id, req.PaymentStatus)
	default:
		writeError(w, http.StatusBadRequest, "status or paymentStatus is required")
		return
	}
	if err != nil {
		writeFailure(w, err, "Failed to update order")
		return
	}
	writeJSON(w, http.StatusOK, c.List().Snapshot())
}

func (s *Server) UpdateContactStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := s.mount(w, "contacts")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := c.SetContactStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		writeFailure(w, err, "Failed to update contact status")
		return
	}
	writeJSON(w, http.StatusOK, c.List().Snapshot())
}

func (s *Server) ReplyToContact(w http.ResponseWriter, r *http.Request) {
	c, ok := s.mount(w, "contacts")
	if !ok {
		return
	}
	var req struct {
		ReplyMessage string `json:"replyMessage"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := c.Reply(r.Context(), chi.URLParam(r, "id"), req.ReplyMessage); err != nil {
		writeFailure(w, err, "Failed to send reply")
		return
	}
	writeJSON(w, http.StatusOK, c.List().Snapshot())
}

func (s *Server) GetContactStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Client.ContactStats(r.Context())
	if err != nil {
		writeFailure(w, err, "Failed to fetch contact stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// UploadImages relays a multipart upload to the storefront after the
// client-side checks. The answer carries the stored image URLs.
func (s *Server) UploadImages(w http.ResponseWriter, r *http.Request) {
	kind := models.UploadKind(chi.URLParam(r, "kind"))
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	files, err := readFiles(r.MultipartForm.File[kind.FieldName()])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	urls, err := s.Client.Upload(r.Context(), kind, files...)
	if err != nil {
		s.Logger.Warn("upload failed", zap.String("kind", string(kind)), zap.Error(err))
		msg := storefront.UserMessage(err, "Failed to upload image")
		s.Notifications.Error(msg)
		writeError(w, statusFor(err), msg)
		return
	}
	if kind == models.UploadProducts {
		s.Notifications.Success(fmt.Sprintf("%d image(s) uploaded successfully", len(urls)))
	} else {
		s.Notifications.Success("Image uploaded successfully")
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"urls": urls})
}

func readFiles(headers []*multipart.FileHeader) ([]storefront.File, error) {
	files := make([]storefront.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", fh.Filename, err)
		}
		files = append(files, storefront.File{Name: fh.Filename, Content: content})
	}
	return files, nil
}

func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	section, err := s.Settings.Get(models.SettingsSection(chi.URLParam(r, "section")))
	if err != nil {
		writeError(w, http.StatusNotFound, messageFor(err, "Unknown settings section"))
		return
	}
	writeJSON(w, http.StatusOK, section)
}

func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	section := models.SettingsSection(chi.URLParam(r, "section"))
	var body models.Resource
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := s.Settings.Update(r.Context(), section, body); err != nil {
		writeFailure(w, err, "Failed to update "+strings.ToLower(section.Label()))
		return
	}
	current, _ := s.Settings.Get(section)
	writeJSON(w, http.StatusOK, current)
}

func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.Dashboard.Summary(r.Context())
	if err != nil {
		s.Logger.Warn("dashboard failed", zap.Error(err))
		writeFailure(w, err, "Failed to fetch dashboard data")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) GetCustomerSummary(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	summary, err := s.Dashboard.Customer(r.Context(), email)
	if err != nil {
		writeFailure(w, err, "Failed to fetch customer orders")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
