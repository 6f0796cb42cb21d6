package render_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/svc/render"
)

func TestExpandCard(t *testing.T) {
	t.Parallel()

	data := json.RawMessage(`{
		"title": "Expense report",
		"amount": 120.5,
		"approved": false,
		"owner": {"name": "Ann", "email": "ann@contoso.com"},
		"lines": [{"item": "Taxi", "cost": 20}, {"item": "Hotel", "cost": 100.5}],
		"note": null
	}`)

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "whole value binding keeps type",
			template: `{"value":"${amount}","flag":"${approved}"}`,
			want:     `{"value":120.5,"flag":false}`,
		},
		{
			name:     "interpolation and nested paths",
			template: `{"text":"${title} by ${owner.name} <${owner.email}>"}`,
			want:     `{"text":"Expense report by Ann <ann@contoso.com>"}`,
		},
		{
			name:     "array index and quoted member",
			template: `{"first":"${lines[0].item}","second":"${lines[1]['item']}"}`,
			want:     `{"first":"Taxi","second":"Hotel"}`,
		},
		{
			name:     "data array repeats the object",
			template: `{"body":[{"$data":"${lines}","text":"${$index}: ${item} ${cost}"}]}`,
			want:     `{"body":[{"text":"0: Taxi 20"},{"text":"1: Hotel 100.5"}]}`,
		},
		{
			name:     "data object rescopes and root stays reachable",
			template: `{"$data":"${owner}","who":"${name}","doc":"${$root.title}"}`,
			want:     `{"who":"Ann","doc":"Expense report"}`,
		},
		{
			name:     "when drops false nodes",
			template: `{"body":[{"$when":"${approved}","text":"ok"},{"$when":"${amount > 100}","text":"big"},{"$when":"${!approved && owner.name == 'Ann'}","text":"pending"}]}`,
			want:     `{"body":[{"text":"big"},{"text":"pending"}]}`,
		},
		{
			name:     "when inside repeated data",
			template: `{"body":[{"$data":"${lines}","$when":"${cost >= 100}","text":"${item}"}]}`,
			want:     `{"body":[{"text":"Hotel"}]}`,
		},
		{
			name:     "null binds to empty string",
			template: `{"note":"${note}","text":"[${note}]"}`,
			want:     `{"note":"","text":"[]"}`,
		},
		{
			name:     "unresolved binding is left as written",
			template: `{"text":"${missing.path}"}`,
			want:     `{"text":"${missing.path}"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := render.ExpandCard(tt.template, data)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, out)
		})
	}
}

func TestExpandCard_TextTemplate(t *testing.T) {
	t.Parallel()

	out, err := render.ExpandCard("Dear ${name},", json.RawMessage(`{"name":"Ann"}`))
	require.NoError(t, err)
	assert.Equal(t, "Dear Ann,", out)
}

func TestExpandCard_InvalidData(t *testing.T) {
	t.Parallel()

	_, err := render.ExpandCard(`{"a":"${b}"}`, json.RawMessage(`{broken`))
	assert.ErrorIs(t, err, render.ErrInvalidData)
}

func TestExpandCard_EmptyCondition(t *testing.T) {
	t.Parallel()

	_, err := render.ExpandCard(`{"$when":"","a":1}`, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, render.ErrInvalidExpression)
}
