package model

// Settings mirrors the known keys of settings.json.  Other keys present in
// the file are preserved by the repository when it writes.
type Settings struct {
	WhatsAppNumber string `json:"whatsapp_number"`
	ReportPassword string `json:"reportPassword"`
}
