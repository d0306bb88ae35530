package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexField é um campo que o backend envia ora como string simples,
// ora como objeto {id, value}. O decoder aceita os dois formatos.
type FlexField struct {
	ID    int64
	Value string
}

type flexObject struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
	Title string `json:"title"`
	Name  string `json:"name"`
}

func (f *FlexField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FlexField{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexField{Value: s}
		return nil
	}

	if data[0] == '{' {
		var obj flexObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		value := obj.Value
		if value == "" {
			value = obj.Title
		}
		if value == "" {
			value = obj.Name
		}
		*f = FlexField{ID: obj.ID, Value: value}
		return nil
	}

	// Alguns endpoints mandam só o id numérico
	if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*f = FlexField{ID: n}
		return nil
	}

	*f = FlexField{}
	return nil
}

func (f FlexField) MarshalJSON() ([]byte, error) {
	if f.ID == 0 {
		return json.Marshal(f.Value)
	}
	return json.Marshal(flexObject{ID: f.ID, Value: f.Value})
}

func (f FlexField) IsZero() bool {
	return f.ID == 0 && strings.TrimSpace(f.Value) == ""
}

type Assignee struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic"`
}

type Member struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profile_pic"`
}

type Task struct {
	Id          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      FlexField  `json:"status"`
	Stage       FlexField  `json:"stage"`
	Priority    FlexField  `json:"priority"`
	Project     FlexField  `json:"project"`
	Assignees   []Assignee `json:"assignees"`
	DueDate     string     `json:"due_date,omitempty"`
	Progress    float64    `json:"progress"`

	// Campos locais, nunca enviados ao backend
	Tags      []string `json:"tags,omitempty"`
	Color     string   `json:"color,omitempty"`
	Synthetic bool     `json:"synthetic,omitempty"`
}

type NewTask struct {
	Email       string  `json:"email"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Project     string  `json:"project"`
	Status      string  `json:"status"`
	Stage       string  `json:"stage"`
	Priority    string  `json:"priority"`
	AssignedTo  []int64 `json:"assigned_to"`
	DueDate     string  `json:"due_date"`
}

type Project struct {
	Id          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type StageDef struct {
	Id    int64  `json:"id"`
	Title string `json:"title"`
}

// Column é uma coluna do quadro: categoria canônica ou stage dinâmico.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
