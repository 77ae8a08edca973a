package searchd

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

// EntryView is one scenario entry on the wire.
type EntryView struct {
	Entities []string       `json:"entities"`
	Values   map[string]int `json:"values"`
}

// ScenarioView is a scenario on the wire.
type ScenarioView struct {
	ID      int         `json:"id"`
	Entries []EntryView `json:"entries"`
}

// OptimumView is the GetOptimum response.
type OptimumView struct {
	Optimum *ScenarioView
	Worst   *ScenarioView
	Optima  []ScenarioView
	Path    map[int]float64
}

func viewOf(s *models.Scenario) ScenarioView {
	v := ScenarioView{ID: s.ID}
	for _, e := range s.Entries() {
		entry := EntryView{Values: make(map[string]int)}
		for _, ent := range e.Entities {
			entry.Entities = append(entry.Entities, string(ent))
		}
		for _, a := range e.Variant.Assignments() {
			entry.Values[a.Parameter.Name] = a.Value
		}
		v.Entries = append(v.Entries, entry)
	}
	return v
}

func (v ScenarioView) toMap() map[string]any {
	entries := make([]any, len(v.Entries))
	for i, e := range v.Entries {
		entities := make([]any, len(e.Entities))
		for j, ent := range e.Entities {
			entities[j] = ent
		}
		values := make(map[string]any, len(e.Values))
		for name, value := range e.Values {
			values[name] = float64(value)
		}
		entries[i] = map[string]any{"entities": entities, "values": values}
	}
	return map[string]any{"id": float64(v.ID), "entries": entries}
}

func scenarioFromStruct(s *structpb.Struct) (ScenarioView, error) {
	id, err := intField(s, "id")
	if err != nil {
		return ScenarioView{}, err
	}
	v := ScenarioView{ID: id}
	for _, item := range s.GetFields()["entries"].GetListValue().GetValues() {
		entry := EntryView{Values: make(map[string]int)}
		fields := item.GetStructValue()
		for _, ent := range fields.GetFields()["entities"].GetListValue().GetValues() {
			entry.Entities = append(entry.Entities, ent.GetStringValue())
		}
		for name, value := range fields.GetFields()["values"].GetStructValue().GetFields() {
			n, err := toInt(value.GetNumberValue())
			if err != nil {
				return ScenarioView{}, fmt.Errorf("value %s: %w", name, err)
			}
			entry.Values[name] = n
		}
		v.Entries = append(v.Entries, entry)
	}
	return v, nil
}

func propertiesToList(props []models.Property) []any {
	out := make([]any, len(props))
	for i, p := range props {
		out[i] = map[string]any{"name": p.Name, "value": p.Value, "unit": p.Unit}
	}
	return out
}

func propertiesFromStruct(s *structpb.Struct) ([]models.Property, error) {
	values := s.GetFields()["properties"].GetListValue().GetValues()
	if len(values) == 0 {
		return nil, fmt.Errorf("properties are required")
	}
	out := make([]models.Property, 0, len(values))
	for i, item := range values {
		fields := item.GetStructValue().GetFields()
		name := fields["name"].GetStringValue()
		if name == "" {
			return nil, fmt.Errorf("property %d: name is required", i)
		}
		value, ok := fields["value"].GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("property %s: numeric value is required", name)
		}
		out = append(out, models.Property{Name: name, Value: value.NumberValue, Unit: fields["unit"].GetStringValue()})
	}
	return out, nil
}

func reportToStruct(r *Report) (*structpb.Struct, error) {
	optima := make([]any, len(r.Optima))
	for i, s := range r.Optima {
		optima[i] = viewOf(s).toMap()
	}
	ids := make([]int, 0, len(r.Path))
	for id := range r.Path {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	path := make(map[string]any, len(r.Path))
	for _, id := range ids {
		path[strconv.Itoa(id)] = r.Path[id]
	}

	m := map[string]any{"optima": optima, "path": path}
	if r.Optimum != nil {
		m["optimum"] = viewOf(r.Optimum).toMap()
	}
	if r.Worst != nil {
		m["worst"] = viewOf(r.Worst).toMap()
	}
	return structpb.NewStruct(m)
}

func optimumFromStruct(s *structpb.Struct) (*OptimumView, error) {
	out := &OptimumView{Path: make(map[int]float64)}
	fields := s.GetFields()
	if v, ok := fields["optimum"]; ok {
		sc, err := scenarioFromStruct(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("optimum: %w", err)
		}
		out.Optimum = &sc
	}
	if v, ok := fields["worst"]; ok {
		sc, err := scenarioFromStruct(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("worst: %w", err)
		}
		out.Worst = &sc
	}
	for _, item := range fields["optima"].GetListValue().GetValues() {
		sc, err := scenarioFromStruct(item.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("optima: %w", err)
		}
		out.Optima = append(out.Optima, sc)
	}
	for key, value := range fields["path"].GetStructValue().GetFields() {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("path key %q: %w", key, err)
		}
		out.Path[id] = value.GetNumberValue()
	}
	return out, nil
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func intField(s *structpb.Struct, name string) (int, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return toInt(n.NumberValue)
}

func toInt(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int(f), nil
}
