package notion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioJSON = `[
  {
    "id": "p1",
    "properties": {
      "🐈 Sistema": {"type": "title", "title": [{"plain_text": "Meditar "}, {"plain_text": "(Diáriamente)"}]},
      "🍀 Descrição": {"type": "rich_text", "rich_text": [{"plain_text": "10 minutos"}]}
    }
  },
  {
    "id": "p2",
    "properties": {
      "🐈 Sistema": {"type": "title", "title": []},
      "🍀 Descrição": {"type": "rich_text", "rich_text": [{"plain_text": "ignored"}]}
    }
  }
]`

func TestNormalizeJSON_Scenario(t *testing.T) {
	got := NormalizeJSON([]byte(scenarioJSON), testSchema)
	assert.Equal(t, "🟢 Meditar (Diáriamente)\n   ↳ 10 minutos\n", got)
}

func TestNormalize_ParsedAndSerializedAgree(t *testing.T) {
	pages, err := DecodePages([]byte(scenarioJSON))
	require.NoError(t, err)

	assert.Equal(t, NormalizeJSON([]byte(scenarioJSON), testSchema), FormatPages(pages, testSchema))
}

func TestNormalizeJSON_AcceptsQueryResponse(t *testing.T) {
	wrapped := `{"object":"list","results":` + scenarioJSON + `,"has_more":false}`
	assert.Equal(t, "🟢 Meditar (Diáriamente)\n   ↳ 10 minutos\n", NormalizeJSON([]byte(wrapped), testSchema))
}

func TestNormalizeJSON_Tolerant(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty input", "", ""},
		{"empty array", "[]", ""},
		{"unparseable", "{{", ""},
		{"page without properties", `[{"id":"x"}]`, ""},
		{"malformed property is empty", `[{"properties":{"🐈 Sistema":{"title":"oops"}}}]`, ""},
		{"malformed page skipped", `[42, {"properties":{"🐈 Sistema":{"title":[{"plain_text":"ok"}]}}}]`, "🟢 ok\n"},
		{"runs missing plain_text", `[{"properties":{"🐈 Sistema":{"title":[{"text":{}},{"plain_text":"T"}]}}}]`, "🟢 T\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeJSON([]byte(tt.in), testSchema))
		})
	}
}

func TestPageTask_ExtractsAllFields(t *testing.T) {
	raw, err := json.Marshal(page("abc", "  Treino ", "Academia", true, "2026-10-19T07:00:00.000-03:00"))
	require.NoError(t, err)
	var p Page
	require.NoError(t, json.Unmarshal(raw, &p))

	task := p.Task(testSchema)
	assert.Equal(t, "abc", task.ID)
	assert.Equal(t, "Treino", task.Title)
	assert.Equal(t, "Academia", task.Description)
	assert.True(t, task.Done)
	assert.Equal(t, "2026-10-19", task.Deadline)
}

func TestPageTask_MissingFieldsAreZero(t *testing.T) {
	task := Page{ID: "z"}.Task(testSchema)
	assert.Equal(t, "", task.Title)
	assert.Equal(t, "", task.Description)
	assert.False(t, task.Done)
	assert.Equal(t, "", task.Deadline)
}

func TestPageText_ReadsArrayNamedByType(t *testing.T) {
	props := `{
		"title prop": {"type": "title", "title": [{"plain_text": "Treino"}], "rich_text": [{"plain_text": " extra"}]},
		"text prop": {"type": "rich_text", "title": [{"plain_text": "stray "}], "rich_text": [{"plain_text": "Academia"}]},
		"untyped rich text": {"rich_text": [{"plain_text": "Livre"}]},
		"number prop": {"type": "number", "title": [{"plain_text": "7"}]}
	}`
	var p Page
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","properties":`+props+`}`), &p))

	assert.Equal(t, "Treino", p.Text("title prop"))
	assert.Equal(t, "Academia", p.Text("text prop"))
	assert.Equal(t, "Livre", p.Text("untyped rich text"))
	assert.Equal(t, "", p.Text("number prop"))
}
