package notion

import (
	"bytes"
	"encoding/json"
	"strings"

	"dayplan/internal/output"
	"dayplan/internal/service"
)

// Schema names the database properties the extraction rule reads.
type Schema struct {
	Title       string // title property
	Description string // rich_text property
	Status      string // checkbox property, true when the task is complete
	Deadline    string // date property
}

// RichText is one run of a title or rich_text property.
type RichText struct {
	PlainText string `json:"plain_text"`
}

// DateValue is the value of a date property.
type DateValue struct {
	Start string `json:"start"`
}

// Property is the subset of a page property value this package reads.
// Every field is optional.
type Property struct {
	Type     string     `json:"type"`
	Title    []RichText `json:"title"`
	RichText []RichText `json:"rich_text"`
	Checkbox *bool      `json:"checkbox"`
	Date     *DateValue `json:"date"`
}

// Page is one database row as returned by the query endpoint.
// Properties are decoded lazily so a malformed property never poisons the page.
type Page struct {
	ID         string                     `json:"id"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// property decodes the named property, returning the zero Property when it is
// absent or malformed.
func (p Page) property(name string) Property {
	var prop Property
	raw, ok := p.Properties[name]
	if !ok {
		return prop
	}
	if err := json.Unmarshal(raw, &prop); err != nil {
		return Property{}
	}
	return prop
}

// runs returns the text runs selected by the property's type. A property
// without a type falls back to whichever run array it carries.
func (prop Property) runs() []RichText {
	switch prop.Type {
	case "title":
		return prop.Title
	case "rich_text":
		return prop.RichText
	case "":
		if len(prop.Title) > 0 {
			return prop.Title
		}
		return prop.RichText
	default:
		return nil
	}
}

// Text concatenates the plain-text runs of the named property in run order
// and trims the result. Only the array named by the property's type is read.
func (p Page) Text(name string) string {
	var sb strings.Builder
	for _, r := range p.property(name).runs() {
		sb.WriteString(r.PlainText)
	}
	return strings.TrimSpace(sb.String())
}

// Task converts the page into a service.Task using schema.
func (p Page) Task(schema Schema) service.Task {
	task := service.Task{
		ID:          p.ID,
		Title:       p.Text(schema.Title),
		Description: p.Text(schema.Description),
	}
	if status := p.property(schema.Status); status.Checkbox != nil {
		task.Done = *status.Checkbox
	}
	if deadline := p.property(schema.Deadline); deadline.Date != nil {
		task.Deadline = datePart(deadline.Date.Start)
	}
	return task
}

// Tasks converts pages in order.
func Tasks(pages []Page, schema Schema) []service.Task {
	tasks := make([]service.Task, 0, len(pages))
	for _, p := range pages {
		tasks = append(tasks, p.Task(schema))
	}
	return tasks
}

// DecodePages parses either a JSON array of pages or a full query response
// object. Entries that fail to decode become empty pages, which the
// normalizer skips.
func DecodePages(data []byte) ([]Page, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var raws []json.RawMessage
	if data[0] == '{' {
		var resp struct {
			Results []json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, err
		}
		raws = resp.Results
	} else if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}

	pages := make([]Page, 0, len(raws))
	for _, raw := range raws {
		var p Page
		if err := json.Unmarshal(raw, &p); err != nil {
			p = Page{}
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// FormatPages is the normalizer over already-parsed pages.
func FormatPages(pages []Page, schema Schema) string {
	return output.FormatTasks(Tasks(pages, schema))
}

// NormalizeJSON is the normalizer over the serialized form. A payload that
// cannot be parsed at all normalizes to "".
func NormalizeJSON(data []byte, schema Schema) string {
	pages, err := DecodePages(data)
	if err != nil {
		return ""
	}
	return FormatPages(pages, schema)
}

func datePart(s string) string {
	if len(s) >= len(service.DateLayout) {
		return s[:len(service.DateLayout)]
	}
	return s
}
