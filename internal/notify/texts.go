package notify

import (
	"golang.org/x/text/language"

	"qrquicker/internal/domain"
)

// Text is the title and body shown for a slot.
type Text struct {
	Title string
	Body  string
}

// Catalog resolves localized notification texts.
type Catalog struct {
	tags    []language.Tag
	matcher language.Matcher
	texts   map[language.Tag]map[domain.Slot]Text
}

// NewCatalog returns the built-in English and Indonesian texts. English is
// the fallback for unsupported locales.
func NewCatalog() *Catalog {
	texts := map[language.Tag]map[domain.Slot]Text{
		language.English: {
			domain.SlotSaving:        {Title: "Saving your QR code", Body: "This takes a few second"},
			domain.SlotSaveSuccess:   {Title: "Save QR code successfully", Body: "Tap to view in storage"},
			domain.SlotSaveFailure:   {Title: "Failed to save your QR code"},
			domain.SlotDecodeFailure: {Title: "Failed to detect the QR code"},
		},
		language.Indonesian: {
			domain.SlotSaving:        {Title: "Menyimpan kode QR Anda", Body: "Ini butuh beberapa detik"},
			domain.SlotSaveSuccess:   {Title: "Kode QR berhasil disimpan", Body: "Ketuk untuk melihat di penyimpanan"},
			domain.SlotSaveFailure:   {Title: "Gagal menyimpan kode QR Anda"},
			domain.SlotDecodeFailure: {Title: "Gagal mendeteksi kode QR"},
		},
	}
	tags := []language.Tag{language.English, language.Indonesian}
	return &Catalog{
		tags:    tags,
		matcher: language.NewMatcher(tags),
		texts:   texts,
	}
}

// Resolve picks the supported language closest to locale. locale may be a
// BCP 47 tag or an Accept-Language header value.
func (c *Catalog) Resolve(locale string) language.Tag {
	if locale == "" {
		return c.tags[0]
	}
	_, idx := language.MatchStrings(c.matcher, locale)
	if idx < 0 || idx >= len(c.tags) {
		return c.tags[0]
	}
	return c.tags[idx]
}

// Text returns the localized text for slot.
func (c *Catalog) Text(slot domain.Slot, locale string) Text {
	if t, ok := c.texts[c.Resolve(locale)][slot]; ok {
		return t
	}
	return c.texts[c.tags[0]][slot]
}

// Event builds a notification for slot with localized text.
func (c *Catalog) Event(slot domain.Slot, locale string) domain.NotificationEvent {
	t := c.Text(slot, locale)
	return domain.NotificationEvent{Slot: slot, Title: t.Title, Body: t.Body}
}
