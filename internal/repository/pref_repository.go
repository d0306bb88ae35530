package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

const collapseKeyPrefix = "collapsed:"

// PrefRepository guarda preferências de UI por quadro, hoje só as
// flags de colapso de coluna.
type PrefRepository struct {
	db *sql.DB
}

func NewPrefRepository(db *sql.DB) *PrefRepository {
	return &PrefRepository{db: db}
}

// GetCollapsed devolve o mapa coluna→colapsada de um quadro. Blob
// ausente ou corrompido vira mapa vazio (todas expandidas).
func (r *PrefRepository) GetCollapsed(boardKey string) (map[string]bool, error) {
	raw, found, err := getValue(r.db, collapseKeyPrefix+boardKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return map[string]bool{}, nil
	}

	var collapsed map[string]bool
	if err := json.Unmarshal([]byte(raw), &collapsed); err != nil {
		return map[string]bool{}, nil
	}
	return collapsed, nil
}

func (r *PrefRepository) SetCollapsed(boardKey string, collapsed map[string]bool) error {
	if collapsed == nil {
		collapsed = map[string]bool{}
	}
	raw, err := json.Marshal(collapsed)
	if err != nil {
		return fmt.Errorf("Error trying to marshal prefs: %w", err)
	}
	return setValue(r.db, collapseKeyPrefix+boardKey, string(raw))
}
