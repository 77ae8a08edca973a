package pool

import (
	"errors"
	"sync"
	"testing"

	"github.com/readex-eu/readex-ptf-sub000/pkg/models"
)

func TestScenarioPoolFIFO(t *testing.T) {
	p := NewScenarioPool()
	if !p.Empty() {
		t.Fatalf("new pool should be empty")
	}
	for id := 0; id < 3; id++ {
		p.Push(models.NewScenario(id))
	}
	if p.Size() != 3 {
		t.Fatalf("expected size 3, got %d", p.Size())
	}
	s, ok := p.Pop()
	if !ok || s.ID != 0 {
		t.Fatalf("expected scenario 0 first, got %v", s)
	}
	rest := p.Drain()
	if len(rest) != 2 || rest[0].ID != 1 || rest[1].ID != 2 {
		t.Fatalf("unexpected drain result")
	}
	if _, ok := p.Pop(); ok {
		t.Fatalf("expected empty pool after drain")
	}
}

func TestFinishedPool(t *testing.T) {
	p := NewFinishedPool()
	p.Add(models.NewScenario(7))
	p.Add(models.NewScenario(3))
	if _, ok := p.Get(7); !ok {
		t.Fatalf("expected scenario 7")
	}
	ids := p.IDs()
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 7 {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestResultStore(t *testing.T) {
	s := NewResultStore()
	if _, err := s.Properties(1); !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}

	s.Put(1, models.Property{Name: "Time", Value: 2.5, Unit: "s"})
	s.Put(1, models.Property{Name: "Energy", Value: 40})
	props, err := s.Properties(1)
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	if len(props) != 2 || props[1].Name != "Energy" {
		t.Fatalf("unexpected properties %+v", props)
	}

	props[0].Value = 99
	again, _ := s.Properties(1)
	if again[0].Value != 2.5 {
		t.Fatalf("Properties must return a copy")
	}

	s.Delete(1)
	if s.Has(1) || s.Len() != 0 {
		t.Fatalf("expected store to be empty after delete")
	}
}

func TestResultStoreConcurrentPut(t *testing.T) {
	s := NewResultStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.Put(id, models.Property{Name: "Time", Value: float64(id)})
		}(i)
	}
	wg.Wait()
	if s.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", s.Len())
	}
}
