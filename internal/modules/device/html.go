package device

import (
	"bytes"
	"html/template"
)

// The confirm endpoint is opened by humans clicking mail links, so its
// outcomes render as small standalone HTML pages instead of JSON.
var confirmPageTmpl = template.Must(template.New("confirm_page").Parse(`<!DOCTYPE html>
<html lang="es"><head><meta charset="utf-8"><title>RescueChip</title></head><body>
<div style="font-family:sans-serif; text-align:center; padding:50px; max-width:500px; margin:0 auto;">
  <h2 style="color:{{.Color}};">{{.Title}}</h2>
  <p style="font-size:16px; color:#4b5563;">{{.Body}}</p>
  {{if .Hint}}<p style="margin-top:30px; font-size:14px;">{{.Hint}}</p>{{end}}
</div>
</body></html>`))

type confirmPage struct {
	Color string
	Title string
	Body  template.HTML
	Hint  string
}

var (
	pageAllowed = confirmPage{
		Color: "#10b981",
		Title: "Dispositivo autorizado ✅",
		Body:  "Has permitido el acceso a este nuevo dispositivo. <b>Tus sesiones previas en otros dispositivos han sido cerradas por seguridad (1 activo a la vez).</b>",
		Hint:  "Ya puedes volver a la ventana de tu dispositivo e ingresar a tu cuenta.",
	}
	pageRevoked = confirmPage{
		Color: "#ef4444",
		Title: "Acceso bloqueado y sesión cerrada 🔒",
		Body:  "El intento de acceso fue bloqueado. Como medida preventiva, <b>hemos cerrado sesión en todos tus dispositivos.</b>",
		Hint:  "Si crees que alguien más obtuvo tu contraseña, actualízala en tu próximo inicio de sesión.",
	}
	pageInvalid = confirmPage{
		Color: "#ef4444",
		Title: "Enlace inválido o ya utilizado",
		Body:  "La solicitud de acceso ya no es válida o el enlace está corrupto.",
	}
	pageExpired = confirmPage{
		Color: "#ef4444",
		Title: "El enlace ha expirado",
		Body:  "Por seguridad, los enlaces de verificación expiran en 15 minutos. Inicia sesión nuevamente en tu dispositivo para solicitar otro.",
	}
	pageBadParams = confirmPage{
		Color: "#ef4444",
		Title: "Parámetros inválidos o incompletos",
		Body:  "El enlace no contiene una acción reconocida.",
	}
)

func renderConfirmPage(p confirmPage) []byte {
	var buf bytes.Buffer
	if err := confirmPageTmpl.Execute(&buf, p); err != nil {
		return []byte(p.Title)
	}
	return buf.Bytes()
}
