package board

import (
	"strings"

	"github.com/TWRT/taskboard/internal/models"
	"github.com/TWRT/taskboard/internal/normalize"
)

// Filters é o conjunto de predicados aplicado antes do agrupamento.
// Cada critério vazio é ignorado; os demais são conjuntivos. Filtro de
// data não existe aqui de propósito: o recorte por período é feito nos
// parâmetros da busca remota.
type Filters struct {
	Search     string
	Project    string // por nome; "" ou "all" desliga o filtro
	Priorities []string
	Statuses   []string
	Assignees  []int64
}

func (f Filters) IsZero() bool {
	return f.Search == "" && (f.Project == "" || normalize.String(f.Project) == "all") &&
		len(f.Priorities) == 0 && len(f.Statuses) == 0 && len(f.Assignees) == 0
}

// Match retorna true sse a task passa em todos os critérios ativos.
func (f Filters) Match(t models.Task) bool {
	if f.Search != "" {
		q := normalize.String(f.Search)
		title := normalize.String(t.Title)
		desc := normalize.String(t.Description)
		if !strings.Contains(title, q) && !strings.Contains(desc, q) {
			return false
		}
	}

	// Filtro por nome do projeto, não por id: é o formato que a busca
	// remota espera. Dois projetos com o mesmo nome colidem aqui.
	if p := normalize.String(f.Project); p != "" && p != "all" {
		if normalize.Value(t.Project) != p {
			return false
		}
	}

	if len(f.Priorities) > 0 {
		if !containsString(f.Priorities, normalize.Value(t.Priority)) {
			return false
		}
	}

	if len(f.Statuses) > 0 {
		if !containsString(f.Statuses, normalize.CanonicalStatus(normalize.Value(t.Status))) {
			return false
		}
	}

	if len(f.Assignees) > 0 {
		found := false
		for _, a := range t.Assignees {
			for _, want := range f.Assignees {
				if a.ID == want {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func Apply(tasks []models.Task, f Filters) []models.Task {
	if f.IsZero() {
		return tasks
	}
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if normalize.String(s) == v {
			return true
		}
	}
	return false
}
