package config

import (
	"encoding/json"
	"testing"
)

func TestSchemaProducesValidJSON(t *testing.T) {
	data, err := Schema()
	if err != nil {
		t.Fatalf("failed to generate schema: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}

	props, ok := doc["properties"].(map[string]any)
	if !ok {
		t.Fatal("expected schema to have top-level properties")
	}
	if _, ok := props["reactor"]; !ok {
		t.Error("expected schema to describe the reactor section")
	}
}
