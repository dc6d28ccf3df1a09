package ai

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONFencedBlock(t *testing.T) {
	text := "Hier ist die Analyse:\n```json\n{\"summary\":\"ok\",\"matchScore\":70}\n```\nViel Erfolg {nicht json}"
	raw, ok := ExtractJSON(text)
	if !ok {
		t.Fatalf("expected a value")
	}
	var got map[string]interface{}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if got["summary"] != "ok" || got["matchScore"] != float64(70) {
		t.Fatalf("unexpected value: %v", got)
	}
}

func TestExtractJSONFenceWithoutLanguage(t *testing.T) {
	raw, ok := ExtractJSON("```\n[1,2,3]\n```")
	if !ok || string(raw) != "[1,2,3]" {
		t.Fatalf("unexpected result %q %v", raw, ok)
	}
}

func TestExtractJSONBrokenFenceFallsThroughToObject(t *testing.T) {
	text := "```json\n{broken\n```\nAntwort: {\"a\": 1}"
	raw, ok := ExtractJSON(text)
	if ok {
		t.Fatalf("greedy span covers the broken fence too, expected no value, got %s", raw)
	}

	raw, ok = ExtractJSON("```json\nnot json\n```\n{\"a\": 1}")
	if !ok || string(raw) != `{"a": 1}` {
		t.Fatalf("expected object span, got %q %v", raw, ok)
	}
}

func TestExtractJSONGreedyObject(t *testing.T) {
	raw, ok := ExtractJSON(`Ergebnis: {"insights":["a"],"actionItems":["b"]} Ende`)
	if !ok || string(raw) != `{"insights":["a"],"actionItems":["b"]}` {
		t.Fatalf("unexpected result %q %v", raw, ok)
	}
}

func TestExtractJSONArrayAfterFailedObject(t *testing.T) {
	text := `Fragen: [{"question":"a"}, {"question":"b"}]`
	raw, ok := ExtractJSON(text)
	if !ok {
		t.Fatalf("expected array")
	}
	var items []map[string]string
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestExtractJSONNoValue(t *testing.T) {
	for _, text := range []string{"", "Keine Daten verfügbar.", "{ offen", "] [", "```\n```"} {
		if raw, ok := ExtractJSON(text); ok {
			t.Fatalf("expected no value for %q, got %s", text, raw)
		}
	}
}

func TestUnwrapList(t *testing.T) {
	if raw, ok := unwrapList(json.RawMessage(`[1]`), "x"); !ok || string(raw) != "[1]" {
		t.Fatalf("bare array not accepted")
	}
	if raw, ok := unwrapList(json.RawMessage(`{"chapters":[{"title":"a"}]}`), "chapters"); !ok || string(raw) != `[{"title":"a"}]` {
		t.Fatalf("wrapped array not accepted: %s", raw)
	}
	if _, ok := unwrapList(json.RawMessage(`{"other":[1]}`), "chapters"); ok {
		t.Fatalf("wrong key accepted")
	}
	if _, ok := unwrapList(json.RawMessage(`"text"`), "chapters"); ok {
		t.Fatalf("string accepted")
	}
}

func TestExtractListSingleElementArray(t *testing.T) {
	list, ok := extractList(`Fragen: [{"question":"Budget?"}]`, "questions")
	if !ok {
		t.Fatalf("expected list")
	}
	if string(list) != `[{"question":"Budget?"}]` {
		t.Fatalf("unexpected list %s", list)
	}
	if _, ok := extractList(`{"foo":"bar"}`, "questions"); ok {
		t.Fatalf("expected no list")
	}
}
