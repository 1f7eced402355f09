// Package i18n holds the user-facing copy for the supported report languages.
package i18n

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Copy is every user-facing string for one language.
type Copy struct {
	// Landing
	Badge       string
	Headline    string
	HeadlineEnd string
	Pitch       string
	Drop        string
	Support     string
	// Progress
	Reading   string
	Analyzing string
	// Errors
	EmptyFile      string
	InvalidDataset string
	Unexpected     string
	AIError        string
	ErrorTitle     string
	Retry          string
	// Dashboard
	Completed       string
	CloseReport     string
	KPIs            string
	Charts          string
	Recommendations string
	ImpactHigh      string
	ImpactMedium    string
}

// Language is a supported report language. Name is the display name sent to
// the model, e.g. "Español".
type Language struct {
	Name string
	Tag  language.Tag
	Copy Copy
}

// Upper returns the display name upper-cased with the language's own case
// rules.
func (l Language) Upper() string {
	return cases.Upper(l.Tag).String(l.Name)
}

var (
	Spanish = Language{Name: "Español", Tag: language.Spanish, Copy: Copy{
		Badge:           "INTELIGENCIA ARTIFICIAL GENERATIVA",
		Headline:        "Transforma tus datos en ",
		HeadlineEnd:     "decisiones inteligentes.",
		Pitch:           "Sube un Excel o CSV. Nuestra IA analizará estadísticas, detectará tendencias y creará un reporte visual completo en segundos.",
		Drop:            "Arrastra o selecciona un archivo",
		Support:         "Soporta .XLSX, .CSV, .TSV y .JSON",
		Reading:         "Leyendo archivo...",
		Analyzing:       "Analizando patrones con IA...",
		EmptyFile:       "El archivo parece estar vacío.",
		InvalidDataset:  "Dataset vacío o inválido.",
		Unexpected:      "Ocurrió un error inesperado.",
		AIError:         "Error en el cerebro de IA.",
		ErrorTitle:      "No pudimos procesar el archivo",
		Retry:           "Intentar de nuevo",
		Completed:       "Análisis Completado",
		CloseReport:     "Cerrar reporte",
		KPIs:            "Indicadores clave",
		Charts:          "Gráficos",
		Recommendations: "Recomendaciones",
		ImpactHigh:      "Impacto Alto",
		ImpactMedium:    "Impacto Medio",
	}}
	English = Language{Name: "English", Tag: language.English, Copy: Copy{
		Badge:           "GENERATIVE ARTIFICIAL INTELLIGENCE",
		Headline:        "Transform your data into ",
		HeadlineEnd:     "smart decisions.",
		Pitch:           "Upload an Excel or CSV. Our AI will analyze statistics, detect trends and create a complete visual report in seconds.",
		Drop:            "Drag or select a file",
		Support:         "Supports .XLSX, .CSV, .TSV and .JSON",
		Reading:         "Reading file...",
		Analyzing:       "Analyzing patterns with AI...",
		EmptyFile:       "The file appears to be empty.",
		InvalidDataset:  "Empty or invalid dataset.",
		Unexpected:      "An unexpected error occurred.",
		AIError:         "Error in AI brain.",
		ErrorTitle:      "We couldn't process the file",
		Retry:           "Try again",
		Completed:       "Analysis Completed",
		CloseReport:     "Close report",
		KPIs:            "Key indicators",
		Charts:          "Charts",
		Recommendations: "Recommendations",
		ImpactHigh:      "High Impact",
		ImpactMedium:    "Medium Impact",
	}}
	Portuguese = Language{Name: "Português", Tag: language.Portuguese, Copy: Copy{
		Badge:           "INTELIGÊNCIA ARTIFICIAL GENERATIVA",
		Headline:        "Transforme seus dados em ",
		HeadlineEnd:     "decisões inteligentes.",
		Pitch:           "Carregue um Excel ou CSV. Nossa IA analisará estatísticas, detectará tendências e criará um relatório visual completo em segundos.",
		Drop:            "Arraste ou selecione um arquivo",
		Support:         "Suporta .XLSX, .CSV, .TSV e .JSON",
		Reading:         "Lendo arquivo...",
		Analyzing:       "Analisando padrões com IA...",
		EmptyFile:       "O arquivo parece estar vazio.",
		InvalidDataset:  "Conjunto de dados vazio ou inválido.",
		Unexpected:      "Ocorreu um erro inesperado.",
		AIError:         "Erro no cérebro de IA.",
		ErrorTitle:      "Não conseguimos processar o arquivo",
		Retry:           "Tentar novamente",
		Completed:       "Análise Concluída",
		CloseReport:     "Fechar relatório",
		KPIs:            "Indicadores-chave",
		Charts:          "Gráficos",
		Recommendations: "Recomendações",
		ImpactHigh:      "Impacto Alto",
		ImpactMedium:    "Impacto Médio",
	}}
	French = Language{Name: "Français", Tag: language.French, Copy: Copy{
		Badge:           "INTELLIGENCE ARTIFICIELLE GÉNÉRATIVE",
		Headline:        "Transformez vos données en ",
		HeadlineEnd:     "décisions intelligentes.",
		Pitch:           "Téléchargez un Excel ou CSV. Notre IA analysera les statistiques, détectera les tendances et créera un rapport visuel complet en quelques secondes.",
		Drop:            "Glissez ou sélectionnez un fichier",
		Support:         "Supporte .XLSX, .CSV, .TSV et .JSON",
		Reading:         "Lecture du fichier...",
		Analyzing:       "Analyse des tendances par l'IA...",
		EmptyFile:       "Le fichier semble vide.",
		InvalidDataset:  "Jeu de données vide ou invalide.",
		Unexpected:      "Une erreur inattendue s'est produite.",
		AIError:         "Erreur du cerveau IA.",
		ErrorTitle:      "Nous n'avons pas pu traiter le fichier",
		Retry:           "Réessayer",
		Completed:       "Analyse Terminée",
		CloseReport:     "Fermer le rapport",
		KPIs:            "Indicateurs clés",
		Charts:          "Graphiques",
		Recommendations: "Recommandations",
		ImpactHigh:      "Impact Élevé",
		ImpactMedium:    "Impact Moyen",
	}}
)

// Default is the language used when none is given or none matches.
var Default = Spanish

// All lists the supported languages in menu order.
func All() []Language { return []Language{Spanish, English, Portuguese, French} }

var matcher = language.NewMatcher([]language.Tag{Spanish.Tag, English.Tag, Portuguese.Tag, French.Tag})

// Resolve maps a display name ("English", "français") or a BCP 47 tag ("en",
// "pt-BR") onto a supported language. Unknown input falls back to Default.
func Resolve(name string) Language {
	if l, ok := Lookup(name); ok {
		return l
	}
	return Default
}

// Lookup is Resolve without the fallback.
func Lookup(name string) (Language, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Language{}, false
	}
	fold := cases.Fold()
	for _, l := range All() {
		if fold.String(l.Name) == fold.String(name) || strings.EqualFold(asciiName(l.Name), name) {
			return l, true
		}
	}
	tag, err := language.Parse(name)
	if err != nil {
		return Language{}, false
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return Language{}, false
	}
	return All()[idx], true
}

// ReportLanguage is the language name the report is requested in: the
// display name of a supported language, the caller's text for any other
// language, and Default's name when blank.
func ReportLanguage(name string) string {
	if l, ok := Lookup(name); ok {
		return l.Name
	}
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return Default.Name
}

// asciiName drops the accents the display names carry, so "Espanol" and
// "Portugues" resolve too.
func asciiName(s string) string {
	return strings.NewReplacer("ñ", "n", "ê", "e", "ç", "c").Replace(s)
}
