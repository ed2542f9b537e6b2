package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/ssgl/ourtransfer/internal/email"
)

// EmailHandler notifies a recipient that a file was shared with them
type EmailHandler struct {
	sender email.Sender
}

func NewEmailHandler(sender email.Sender) *EmailHandler {
	return &EmailHandler{sender: sender}
}

// EmailRequest is the body of POST /api/send-email.
type EmailRequest struct {
	SenderEmail    string `json:"senderEmail"`
	SenderName     string `json:"senderName"`
	RecipientEmail string `json:"recipientEmail"`
	RecipientName  string `json:"recipientName"`
	FileName       string `json:"fileName"`
	DownloadLink   string `json:"downloadLink"`
	Message        string `json:"message"`
}

// EmailResponse confirms delivery to the caller
type EmailResponse struct {
	Message        string `json:"message"`
	RecipientEmail string `json:"recipientEmail"`
}

func (h *EmailHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	if h.sender == nil {
		writeError(w, r, http.StatusInternalServerError, "not_configured", "Error de configuración en servidor")
		return
	}

	var req EmailRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "Cuerpo de la solicitud inválido")
		return
	}
	if req.SenderEmail == "" || req.RecipientEmail == "" || req.DownloadLink == "" || req.FileName == "" {
		writeError(w, r, http.StatusBadRequest, "missing_fields", "Faltan campos requeridos")
		return
	}

	err := h.sender.Send(r.Context(), email.ShareNotification{
		SenderEmail:    req.SenderEmail,
		SenderName:     req.SenderName,
		RecipientEmail: req.RecipientEmail,
		RecipientName:  req.RecipientName,
		FileName:       req.FileName,
		DownloadLink:   req.DownloadLink,
		Message:        req.Message,
	})
	if err != nil {
		slog.Error("failed to send share notification", "recipient", req.RecipientEmail, "error", err)
		writeError(w, r, http.StatusInternalServerError, "send_failed", "Error al enviar el correo")
		return
	}

	slog.Info("share notification sent", "recipient", req.RecipientEmail, "file", req.FileName)
	render.JSON(w, r, EmailResponse{
		Message:        "Correo enviado exitosamente",
		RecipientEmail: req.RecipientEmail,
	})
}
