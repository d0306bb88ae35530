package board

import (
	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/normalize"
)

// Group particiona as tasks nas colunas dadas, na ordem de entrada.
// Toda coluna aparece no resultado, mesmo vazia, e toda task cai em
// exatamente um balde: sem match, vai para a primeira coluna.
func Group(tasks []models.Task, cols []models.Column, key func(models.Task) string) map[string][]models.Task {
	buckets := make(map[string][]models.Task, len(cols))
	for _, c := range cols {
		buckets[c.ID] = []models.Task{}
	}
	if len(cols) == 0 {
		return buckets
	}

	for _, t := range tasks {
		idx, ok := normalize.MatchColumn(key(t), cols)
		if !ok {
			idx = 0
		}
		id := cols[idx].ID
		buckets[id] = append(buckets[id], t)
	}
	return buckets
}

func GroupByStatus(tasks []models.Task, cols []models.Column) map[string][]models.Task {
	return Group(tasks, cols, func(t models.Task) string {
		return normalize.CanonicalStatus(normalize.Value(t.Status))
	})
}

func GroupByStage(tasks []models.Task, cols []models.Column) map[string][]models.Task {
	return Group(tasks, cols, func(t models.Task) string {
		return normalize.CanonicalStage(normalize.Value(t.Stage))
	})
}

// StageColumns converte a lista de stages do projeto em colunas.
// Lista vazia cai no conjunto default de quatro stages. Títulos que
// dobram para o mesmo stage canônico viram uma coluna só (o primeiro
// título vence): id de coluna duplicado faria o mesmo balde renderizar
// duas vezes.
func StageColumns(stages []models.StageDef) []models.Column {
	if len(stages) == 0 {
		return normalize.DefaultStageColumns()
	}
	cols := make([]models.Column, 0, len(stages))
	seen := make(map[string]bool, len(stages))
	for _, s := range stages {
		id := normalize.CanonicalStage(s.Title)
		if seen[id] {
			continue
		}
		seen[id] = true
		cols = append(cols, models.Column{ID: id, Title: s.Title})
	}
	return cols
}
