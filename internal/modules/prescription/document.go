package prescription

import (
	"bytes"
	"html/template"
	"strconv"
	"time"
)

const documentDateLayout = "Jan 2, 2006"

// DocumentData is everything printed on a prescription document.
type DocumentData struct {
	PatientName string
	// PatientAge is zero when unknown.
	PatientAge int
	DoctorName string
	IssuedAt   time.Time
	Lines      []Line
}

var documentTemplate = template.Must(template.New("prescription").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format(documentDateLayout) },
	"age": func(a int) string {
		if a <= 0 {
			return "-"
		}
		return strconv.Itoa(a)
	},
}).Parse(`<html>
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
      body { font-family: Arial, sans-serif; padding: 20px; margin: 0 auto; max-width: 500px; border: 1px solid #ddd; border-radius: 10px; }
      .header { margin-bottom: 20px; }
      .rx { font-size: 40px; margin: 20px 0; }
      .line { margin-bottom: 12px; }
      .signature { margin-top: 60px; border-top: 1px solid #000; width: 200px; text-align: right; float: right; padding-top: 8px; }
    </style>
  </head>
  <body>
    <div class="header">
      <div><strong>Patient Name:</strong> {{.PatientName}}</div>
      <div><strong>Age:</strong> {{age .PatientAge}}</div>
      <div><strong>Date:</strong> {{date .IssuedAt}}</div>
    </div>
    <div class="rx">&#8478;</div>
    <div class="medications">
      {{- range .Lines}}
      <div class="line">
        <strong>{{.MedicineName}}</strong> - {{.Dosage}} until {{date .EndDate}}<br/>
        {{- if .Instructions}}
        <em>Instructions: {{.Instructions}}</em>
        {{- end}}
      </div>
      {{- end}}
    </div>
    <div class="signature">Dr. {{.DoctorName}}</div>
  </body>
</html>
`))

// RenderDocument produces the HTML prescription document. All values are
// escaped.
func RenderDocument(d DocumentData) ([]byte, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
