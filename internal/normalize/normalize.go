package normalize

import (
	"strings"

	"github.com/TWRT/taskboard/internal/models"
)

const (
	StatusPending   = "pending"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

const (
	StageDesign      = "design"
	StageHTML        = "html"
	StageDevelopment = "development"
	StageQA          = "qa"
)

var statusSynonyms = map[string]string{
	"pending":     StatusPending,
	"to-do":       StatusPending,
	"todo":        StatusPending,
	"on-going":    StatusOngoing,
	"ongoing":     StatusOngoing,
	"in progress": StatusOngoing,
	"completed":   StatusCompleted,
	"done":        StatusCompleted,
	"finished":    StatusCompleted,
}

var stageSynonyms = map[string]string{
	"design":            StageDesign,
	"ui":                StageDesign,
	"ux":                StageDesign,
	"html":              StageHTML,
	"markup":            StageHTML,
	"frontend":          StageHTML,
	"development":       StageDevelopment,
	"develop":           StageDevelopment,
	"dev":               StageDevelopment,
	"qa":                StageQA,
	"testing":           StageQA,
	"test":              StageQA,
	"quality assurance": StageQA,
}

// String normaliza qualquer valor vindo do backend: minúsculas e sem
// espaços nas pontas. Ausência de dado vira "", nunca erro.
func String(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Value extrai a chave normalizada de um campo string-ou-objeto.
func Value(f models.FlexField) string {
	return String(f.Value)
}

// CanonicalStatus dobra sinônimos conhecidos para a categoria canônica.
// Valores desconhecidos passam direto; o fallback é decisão do caller.
func CanonicalStatus(v string) string {
	v = String(v)
	if c, ok := statusSynonyms[v]; ok {
		return c
	}
	return v
}

func CanonicalStage(v string) string {
	v = String(v)
	if c, ok := stageSynonyms[v]; ok {
		return c
	}
	return v
}

// StatusColumns é o conjunto fixo de colunas por status.
func StatusColumns() []models.Column {
	return []models.Column{
		{ID: StatusPending, Title: "Pending"},
		{ID: StatusOngoing, Title: "Ongoing"},
		{ID: StatusCompleted, Title: "Completed"},
	}
}

// DefaultStageColumns é o conjunto usado quando o projeto não tem
// lista de stages própria (ou quando a busca falhou).
func DefaultStageColumns() []models.Column {
	return []models.Column{
		{ID: StageDesign, Title: "Design"},
		{ID: StageHTML, Title: "HTML"},
		{ID: StageDevelopment, Title: "Development"},
		{ID: StageQA, Title: "QA"},
	}
}

// MatchColumn procura a coluna de um valor já canônico, em três níveis:
// igualdade exata com o id, valor contém o título, título contém o valor.
// Primeira coluna que casar vence. Sem match (inclusive valor vazio)
// retorna (0, false): o caller aplica o fallback de primeira coluna,
// garantindo que nenhuma task suma do quadro.
func MatchColumn(value string, cols []models.Column) (int, bool) {
	v := String(value)
	if v == "" || len(cols) == 0 {
		return 0, false
	}

	for i, c := range cols {
		if v == String(c.ID) {
			return i, true
		}
	}
	for i, c := range cols {
		if t := String(c.Title); t != "" && strings.Contains(v, t) {
			return i, true
		}
	}
	for i, c := range cols {
		if t := String(c.Title); t != "" && strings.Contains(t, v) {
			return i, true
		}
	}
	return 0, false
}
