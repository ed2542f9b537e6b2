package email

import (
	"fmt"
	"html/template"
	"strings"
)

// ShareNotification is the content of a "you have received a file" mail
type ShareNotification struct {
	SenderEmail    string
	SenderName     string
	RecipientEmail string
	RecipientName  string
	FileName       string
	DownloadLink   string
	Message        string
}

// SenderDisplay is the name shown to the recipient, falling back to the
// sender's address.
func (n ShareNotification) SenderDisplay() string {
	if n.SenderName != "" {
		return n.SenderName
	}
	return n.SenderEmail
}

// Subject returns the mail subject line
func (n ShareNotification) Subject() string {
	return fmt.Sprintf("%s te ha enviado un archivo", n.SenderDisplay())
}

// html/template escapes every interpolated field, so user-supplied names
// and messages cannot inject markup.
var htmlBody = template.Must(template.New("share").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="UTF-8">
  <title>Te han enviado un archivo</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #0d1117;">
  <div style="max-width: 600px; margin: 0 auto; padding: 40px 20px; color: #c9d1d9;">
    <h1 style="color: #ffffff;">SSGL <span style="color: #0FBE5A;">OurTransfer</span></h1>
    <h2 style="color: #ffffff;">¡Tienes un archivo!</h2>
    <p><strong style="color: #0FBE5A;">{{.SenderDisplay}}</strong> te ha enviado un archivo.</p>
    <table style="width: 100%; border-collapse: collapse;">
      <tr><td style="color: #6e7681;">Archivo</td><td style="text-align: right; color: #ffffff;">{{.FileName}}</td></tr>
      <tr><td style="color: #6e7681;">De</td><td style="text-align: right;"><a href="mailto:{{.SenderEmail}}" style="color: #0FBE5A;">{{.SenderEmail}}</a></td></tr>
      <tr><td style="color: #6e7681;">Expira</td><td style="text-align: right; color: #f0883e;">En 24 horas</td></tr>
    </table>
{{- if .Message}}
    <div style="background: rgba(15, 190, 90, 0.1); border-left: 4px solid #0FBE5A; padding: 15px 20px;">
      <p style="font-style: italic; white-space: pre-wrap;">"{{.Message}}"</p>
    </div>
{{- end}}
    <p style="text-align: center; padding: 20px 0;">
      <a href="{{.DownloadLink}}" style="display: inline-block; background: linear-gradient(135deg, #0A9345 0%, #0FBE5A 100%); color: #ffffff; font-weight: 700; text-decoration: none; padding: 16px 48px; border-radius: 14px;">Descargar Archivo</a>
    </p>
    <p style="color: #6e7681; font-size: 12px;">O copia este enlace: <a href="{{.DownloadLink}}" style="color: #58a6ff;">{{.DownloadLink}}</a></p>
    <p style="color: #484f58; font-size: 11px;">Este correo fue enviado automáticamente. No responder a este correo.</p>
  </div>
</body>
</html>
`))

// RenderHTML renders the HTML body of the notification
func RenderHTML(n ShareNotification) (string, error) {
	var sb strings.Builder
	if err := htmlBody.Execute(&sb, n); err != nil {
		return "", fmt.Errorf("failed to render share notification: %w", err)
	}
	return sb.String(), nil
}

// RenderText renders the plaintext alternative
func RenderText(n ShareNotification) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s te ha enviado un archivo a través de SSGL OurTransfer.\n\n", n.SenderDisplay())
	fmt.Fprintf(&sb, "Archivo: %s\n", n.FileName)
	if n.Message != "" {
		fmt.Fprintf(&sb, "Mensaje: %s\n", n.Message)
	}
	fmt.Fprintf(&sb, "\nHaz clic en este enlace para descargarlo:\n%s\n\n", n.DownloadLink)
	sb.WriteString("Este enlace expira en 24 horas.\n\n---\nSSGL OurTransfer - Transferencia segura de archivos")
	return sb.String()
}
