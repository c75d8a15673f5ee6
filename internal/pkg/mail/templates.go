package mail

import (
	"bytes"
	"html/template"
)

// DeviceVerifyData fills the new-device confirmation mail. AllowURL and
// RevokeURL carry the single-use verification token.
type DeviceVerifyData struct {
	DeviceInfo string
	Date       string
	AllowURL   string
	RevokeURL  string
}

// EmergencyAlertData fills the emergency scan alert mail.
type EmergencyAlertData struct {
	Folio     string
	OwnerName string
	Date      string
	MapsURL   string // empty when no coordinates were supplied
	IP        string
	UserAgent string
}

var deviceVerifyTmpl = template.Must(template.New("device_verify").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; border: 1px solid #eaeaea; border-radius: 10px; overflow: hidden;">
  <div style="background-color: #ef4444; color: white; padding: 20px; text-align: center;">
    <h2 style="margin: 0;">Nuevo acceso detectado en RescueChip</h2>
  </div>
  <div style="padding: 30px; background-color: #ffffff;">
    <p style="font-size: 16px; color: #333;">Hola,</p>
    <p style="font-size: 16px; color: #333;">Hemos bloqueado temporalmente un intento de acceso a tu cuenta médica desde un dispositivo nuevo.</p>
    <div style="background-color: #f9fafb; padding: 15px; border-radius: 8px; margin: 20px 0;">
      <p style="margin: 5px 0; font-size: 14px; color: #555;"><strong>Dispositivo:</strong> {{.DeviceInfo}}</p>
      <p style="margin: 5px 0; font-size: 14px; color: #555;"><strong>Fecha:</strong> {{.Date}}</p>
    </div>
    <p style="font-size: 16px; color: #333; margin-bottom: 25px;">Por tu seguridad, RescueChip sólo permite un dispositivo activo a la vez. ¿Eres tú intentando acceder?</p>
    <a href="{{.AllowURL}}" style="display: block; background-color: #2563eb; color: white; text-align: center; padding: 14px; text-decoration: none; font-weight: bold; border-radius: 8px; margin-bottom: 15px;">Sí, soy yo — Permitir acceso</a>
    <a href="{{.RevokeURL}}" style="display: block; background-color: #fee2e2; color: #b91c1c; text-align: center; padding: 14px; text-decoration: none; font-weight: bold; border-radius: 8px;">No fui yo — Cerrar todas las sesiones</a>
    <p style="font-size: 12px; color: #999; margin-top: 30px; text-align: center;">Este enlace expira en 15 minutos. Si no solicitaste este acceso, recomendamos cerrar las sesiones de inmediato.</p>
  </div>
</div>`))

var emergencyAlertTmpl = template.Must(template.New("emergency_alert").Parse(`
<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 2px solid #e11d48; border-radius: 10px;">
  <h2 style="color: #e11d48; margin-top: 0; text-align: center;">⚠️ ALERTA DE EMERGENCIA ⚠️</h2>
  <h3 style="color: #333; text-align: center;">El RescueChip de {{.OwnerName}} fue escaneado</h3>
  <p style="font-size: 16px;">El dispositivo con folio <strong>{{.Folio}}</strong> fue escaneado.</p>
  <div style="background-color: #fef2f2; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <ul style="color: #991b1b; margin-bottom: 0;">
      <li><strong>Tipo de escaneo:</strong> Emergencia real</li>
      <li><strong>Fecha y hora:</strong> {{.Date}}</li>
      {{if .MapsURL}}<li><strong>Ubicación aproximada:</strong> <a href="{{.MapsURL}}">Ver en Google Maps</a></li>
      {{else}}<li><strong>Ubicación aproximada:</strong> no proporcionada</li>{{end}}
      <li><strong>IP que escaneó:</strong> {{.IP}}</li>
      <li><strong>Dispositivo que escaneó:</strong> {{.UserAgent}}</li>
    </ul>
  </div>
  <p style="color: #555; font-size: 14px; text-align: center;">Si NO se trata de una emergencia, contacta inmediatamente a soporte:</p>
  <p style="text-align: center;"><a href="mailto:contacto@rescue-chip.com" style="color: #e11d48; font-weight: bold;">contacto@rescue-chip.com</a></p>
</div>`))

// SendDeviceVerify sends the two-link new-device confirmation mail.
func (s *Sender) SendDeviceVerify(to string, data DeviceVerifyData) error {
	var buf bytes.Buffer
	if err := deviceVerifyTmpl.Execute(&buf, data); err != nil {
		return err
	}
	return s.Send(Message{
		To:      []string{to},
		Subject: "⚠️ ¿Eres tú? Nuevo acceso detectado en RescueChip",
		HTML:    buf.String(),
	})
}

// SendEmergencyAlert sends one aggregate alert mail to every deduplicated
// recipient address of an emergency scan.
func (s *Sender) SendEmergencyAlert(to []string, data EmergencyAlertData) error {
	var buf bytes.Buffer
	if err := emergencyAlertTmpl.Execute(&buf, data); err != nil {
		return err
	}
	return s.Send(Message{
		To:      to,
		Subject: "⚠️ ALERTA: Un RescueChip fue escaneado en una emergencia",
		HTML:    buf.String(),
	})
}
