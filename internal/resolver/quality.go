package resolver

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/elsanchez/linkgrab/internal/domain"
)

// Etiquetas conocidas
const (
	LabelFullHD       = "1080p Full HD"
	LabelHD           = "720p HD"
	LabelSD           = "480p SD"
	LabelLow          = "360p Low Quality"
	LabelAudio        = "High Quality Audio"
	LabelAudioDefault = "320kbps Audio"
)

type qualityRule struct {
	fragment string
	label    string
	priority int
}

// Primera coincidencia gana, por eso 1080 va antes que 720
var qualityRules = []qualityRule{
	{"1080", LabelFullHD, 100},
	{"720", LabelHD, 80},
	{"480", LabelSD, 60},
	{"360", LabelLow, 40},
}

// qualityLadder es la escalera usada al re-etiquetar videos sin pistas
var qualityLadder = []string{LabelFullHD, LabelHD, LabelSD, LabelLow}

// FormatQuality convierte la calidad cruda de la API en una etiqueta legible
func FormatQuality(raw string) string {
	if raw == "" {
		return LabelHD
	}

	lower := strings.ToLower(raw)
	for _, rule := range qualityRules {
		if strings.Contains(lower, rule.fragment) {
			return rule.label
		}
	}
	if strings.Contains(lower, "audio") {
		return LabelAudio
	}

	// Ej: "no_watermark" -> "No Watermark"
	caser := cases.Title(language.Und, cases.NoLower)
	words := strings.Split(raw, "_")
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// QualityPriority asigna un valor numérico a la etiqueta para ordenar
func QualityPriority(label string) int {
	for _, rule := range qualityRules {
		if strings.Contains(label, rule.fragment) {
			return rule.priority
		}
	}
	return 0
}

// RankMedias ordena los videos por calidad descendente y agrega los audios
// al final en su orden original
func RankMedias(medias []domain.MediaDescriptor) []domain.MediaDescriptor {
	videos := make([]domain.MediaDescriptor, 0, len(medias))
	var audios []domain.MediaDescriptor

	for _, m := range medias {
		if m.Kind == domain.KindAudio {
			audios = append(audios, m)
			continue
		}
		videos = append(videos, m)
	}

	sort.SliceStable(videos, func(i, j int) bool {
		return QualityPriority(videos[i].Quality) > QualityPriority(videos[j].Quality)
	})

	return append(videos, audios...)
}
