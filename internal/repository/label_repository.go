package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/TWRT/taskboard/internal/models"
	"github.com/google/uuid"
)

const labelsKey = "labels"
const taskTagsKeyPrefix = "tags:"

type LabelRepository struct {
	db *sql.DB
}

func NewLabelRepository(db *sql.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// DefaultLabels é o conjunto semeado na primeira execução e também o
// estado de recuperação quando o blob persistido está corrompido.
func DefaultLabels() []models.Label {
	now := time.Now().UTC()
	mk := func(id, name, emoji, color, textColor, category string, priority int) models.Label {
		return models.Label{
			Id:        id,
			Name:      name,
			Emoji:     emoji,
			Color:     color,
			TextColor: textColor,
			Category:  category,
			Priority:  priority,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return []models.Label{
		mk("lbl-urgent", "Urgent", "🔥", "#eb5a46", "#ffffff", "priority", 1),
		mk("lbl-bug", "Bug", "🐞", "#c377e0", "#ffffff", "type", 2),
		mk("lbl-feature", "Feature", "✨", "#61bd4f", "#ffffff", "type", 3),
		mk("lbl-blocked", "Blocked", "🚫", "#344563", "#ffffff", "state", 4),
		mk("lbl-review", "Review", "👀", "#f2d600", "#172b4d", "state", 5),
	}
}

// GetLabels devolve o conjunto persistido. Blob ausente ou ilegível
// volta para os defaults (reescrevendo o store), nunca erro de parse.
func (r *LabelRepository) GetLabels() ([]models.Label, error) {
	raw, found, err := getValue(r.db, labelsKey)
	if err != nil {
		return nil, err
	}
	if !found {
		labels := DefaultLabels()
		if err := r.saveLabels(labels); err != nil {
			return nil, err
		}
		return labels, nil
	}

	var labels []models.Label
	if err := json.Unmarshal([]byte(raw), &labels); err != nil {
		// Store corrompido: reseta para os defaults
		labels = DefaultLabels()
		if err := r.saveLabels(labels); err != nil {
			return nil, err
		}
	}
	return labels, nil
}

func (r *LabelRepository) saveLabels(labels []models.Label) error {
	raw, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("Error trying to marshal labels: %w", err)
	}
	return setValue(r.db, labelsKey, string(raw))
}

func (r *LabelRepository) CreateLabel(label models.Label) (models.Label, error) {
	labels, err := r.GetLabels()
	if err != nil {
		return models.Label{}, err
	}

	if label.Id == "" {
		label.Id = uuid.NewString()
	}
	now := time.Now().UTC()
	label.CreatedAt = now
	label.UpdatedAt = now

	labels = append(labels, label)
	if err := r.saveLabels(labels); err != nil {
		return models.Label{}, err
	}
	return label, nil
}

func (r *LabelRepository) UpdateLabel(label models.Label) (models.Label, error) {
	labels, err := r.GetLabels()
	if err != nil {
		return models.Label{}, err
	}

	for i, l := range labels {
		if l.Id == label.Id {
			label.CreatedAt = l.CreatedAt
			label.UpdatedAt = time.Now().UTC()
			labels[i] = label
			if err := r.saveLabels(labels); err != nil {
				return models.Label{}, err
			}
			return label, nil
		}
	}
	return models.Label{}, fmt.Errorf("label %s not found", label.Id)
}

func (r *LabelRepository) DeleteLabel(id string) error {
	labels, err := r.GetLabels()
	if err != nil {
		return err
	}

	kept := labels[:0]
	removed := false
	for _, l := range labels {
		if l.Id == id {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	if !removed {
		return fmt.Errorf("label %s not found", id)
	}
	return r.saveLabels(kept)
}

// ResolveByName mapeia nomes de tag para labels ativas, preservando a
// ordem dos nomes. Nomes sem label correspondente são ignorados.
func (r *LabelRepository) ResolveByName(names []string) ([]models.Label, error) {
	if len(names) == 0 {
		return nil, nil
	}
	labels, err := r.GetLabels()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]models.Label, len(labels))
	for _, l := range labels {
		if l.IsActive {
			byName[l.Name] = l
		}
	}

	resolved := make([]models.Label, 0, len(names))
	for _, n := range names {
		if l, ok := byName[n]; ok {
			resolved = append(resolved, l)
		}
	}
	return resolved, nil
}

// TagsFor devolve os nomes de tag gravados para uma task. Blob
// ilegível conta como lista vazia, sem erro.
func (r *LabelRepository) TagsFor(taskId int64) ([]string, error) {
	raw, found, err := getValue(r.db, fmt.Sprintf("%s%d", taskTagsKeyPrefix, taskId))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, nil
	}
	return tags, nil
}

func (r *LabelRepository) SetTags(taskId int64, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("Error trying to marshal tags: %w", err)
	}
	return setValue(r.db, fmt.Sprintf("%s%d", taskTagsKeyPrefix, taskId), string(raw))
}
