package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/GokhanOfficial/CaloriX/internal/model"
)

const appURL = "https://calorix.app"

type emailStyle struct {
	Heading string
	From    string
	To      string
	Action  string
	Link    string
}

var emailStyles = map[model.NotificationType]emailStyle{
	model.NotifyWeighIn:       {Heading: "⚖️ Tartılma Zamanı!", From: "#10b981", To: "#059669", Action: "Kilonu Kaydet", Link: appURL},
	model.NotifyDailyLog:      {Heading: "📝 Kayıt Hatırlatması", From: "#f59e0b", To: "#d97706", Action: "Öğün Ekle", Link: appURL},
	model.NotifyWater:         {Heading: "💧 Su İçme Zamanı!", From: "#3b82f6", To: "#2563eb", Action: "Su Ekle", Link: appURL},
	model.NotifyGoalAchieved:  {Heading: "🎉 Tebrikler!", From: "#8b5cf6", To: "#7c3aed"},
	model.NotifyWeeklySummary: {Heading: "📊 Haftalık Özetiniz", From: "#ec4899", To: "#db2777", Action: "Detayları Gör", Link: appURL + "/analytics"},
}

var emailTemplate = template.Must(template.New("email").Parse(`<div style="font-family: system-ui, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: linear-gradient(135deg, {{.Style.From}} 0%, {{.Style.To}} 100%); padding: 30px; border-radius: 12px; text-align: center; color: white;">
    <h1 style="margin: 0 0 10px 0;">{{.Style.Heading}}</h1>
  </div>
  <div style="padding: 30px; background: #f9fafb; border-radius: 12px; margin-top: 20px;">
    <p style="font-size: 18px; color: #374151;">Merhaba {{.Name}},</p>
    <div style="font-size: 16px; color: #6b7280; line-height: 1.6;">{{.Body}}</div>
    {{- if .Style.Action}}
    <a href="{{.Style.Link}}" style="display: inline-block; background: {{.Style.From}}; color: white; padding: 12px 24px; border-radius: 8px; text-decoration: none; margin-top: 20px;">{{.Style.Action}}</a>
    {{- end}}
  </div>
</div>
`))

func renderEmail(msg Message, name string) (string, error) {
	style, ok := emailStyles[msg.Type]
	if !ok {
		style = emailStyles[model.NotifyDailyLog]
	}
	data := struct {
		Style emailStyle
		Name  string
		Body  any
	}{Style: style, Name: name, Body: msg.Body}
	if msg.Type == model.NotifyWeeklySummary {
		data.Body = template.HTML(msg.Body)
	}
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", msg.Type, err)
	}
	return buf.String(), nil
}
