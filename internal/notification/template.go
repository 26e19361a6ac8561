package notification

import (
	"html/template"
	"strings"

	"github.com/lazobello/cvagent/internal/domain"
)

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eaeaea; border-radius: 10px;">
  <h2 style="color: #2c3e50;">¡Hola, {{.Name}}! 👋</h2>
  <p style="color: #34495e; font-size: 16px;">
    Gracias por contactarme a través de mi asistente virtual. He recibido tu solicitud y estos son los datos que registramos:
  </p>
  <ul style="background-color: #f8f9fa; padding: 15px 30px; border-radius: 5px; color: #2c3e50;">
    <li><b>Teléfono:</b> {{.Phone}}</li>
    <li><b>Correo:</b> {{.Email}}</li>
    <li><b>Preferencia de reunión:</b> {{.ContactDate}}</li>
    {{if .Message}}<li><b>Mensaje:</b> {{.Message}}</li>{{end}}
  </ul>
  <p style="color: #34495e; font-size: 16px;">
    Me pondré en contacto contigo lo antes posible para confirmar nuestra reunión.
  </p>
  <hr style="border: none; border-top: 1px solid #eaeaea; margin: 20px 0;" />
  <p style="color: #7f8c8d; font-size: 14px;">
    Saludos cordiales,<br>
    <strong>Enrique Lazo Bello</strong><br>
    <em>Senior Full Stack Developer</em>
  </p>
</div>
`))

func renderConfirmationHTML(payload domain.ContactNotification) (string, error) {
	var b strings.Builder
	if err := confirmationTemplate.Execute(&b, payload); err != nil {
		return "", err
	}
	return b.String(), nil
}
