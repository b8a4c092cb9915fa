package events

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderPlacedEnvelopeMatchesContract(t *testing.T) {
	envelope := loadSchema(t, "OrderPlaced.v1.enveloped.schema.json")
	payload := loadSchema(t, "OrderPlaced.v1.payload.schema.json")

	check := func(env OrderPlacedEvent) error {
		doc, err := toDocument(env)
		if err != nil {
			return err
		}
		for _, field := range requiredFields(envelope) {
			if _, ok := doc[field]; !ok {
				return fmt.Errorf("missing required field %s", field)
			}
		}
		for _, key := range []string{"eventName", "eventVersion", "schema"} {
			if err := assertConst(envelope, doc, key); err != nil {
				return err
			}
		}

		body, ok := doc["payload"].(map[string]any)
		if !ok {
			return fmt.Errorf("payload is not an object")
		}
		for _, field := range requiredFields(payload) {
			if _, ok := body[field]; !ok {
				return fmt.Errorf("missing payload field %s", field)
			}
		}
		for _, key := range []string{"paymentMethod", "status"} {
			if err := assertEnum(payload, body, key); err != nil {
				return err
			}
		}
		return nil
	}

	env := BuildOrderPlacedEvent(sampleOrder(), EnvelopeOptions{
		Sequence:      1,
		CorrelationID: "corr-1",
		CausationID:   "req-1",
	})
	require.NoError(t, check(env))

	wrongName := env
	wrongName.EventName = "OrderCreated"
	require.Error(t, check(wrongName))

	wrongSchema := env
	wrongSchema.Schema = "contracts/events/storefront/OrderPlaced.v2.enveloped.schema.json"
	require.Error(t, check(wrongSchema))

	wrongStatus := env
	wrongStatus.Payload.Status = "shipped"
	require.Error(t, check(wrongStatus))
}

func toDocument(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func loadSchema(t *testing.T, filename string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "..", "contracts", "events", "storefront", filename))
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return parsed
}

func requiredFields(schema map[string]any) []string {
	list, _ := schema["required"].([]any)
	fields := make([]string, 0, len(list))
	for _, f := range list {
		if s, ok := f.(string); ok {
			fields = append(fields, s)
		}
	}
	return fields
}

func property(schema map[string]any, key string) map[string]any {
	props, _ := schema["properties"].(map[string]any)
	prop, _ := props[key].(map[string]any)
	return prop
}

func assertConst(schema, doc map[string]any, key string) error {
	expected, ok := property(schema, key)["const"]
	if !ok {
		return nil
	}
	if value, ok := doc[key]; !ok || value != expected {
		return fmt.Errorf("%s does not match const %v", key, expected)
	}
	return nil
}

func assertEnum(schema, doc map[string]any, key string) error {
	allowed, ok := property(schema, key)["enum"].([]any)
	if !ok {
		return nil
	}
	if !slices.Contains(allowed, doc[key]) {
		return fmt.Errorf("%s=%v is not one of %v", key, doc[key], allowed)
	}
	return nil
}
