package search

// tracker records the search path and the running optimum and worst of a
// single objective. The first scenario seen wins ties.
type tracker struct {
	path  map[int]float64
	order []int

	optimum    int
	worst      int
	optValue   float64
	worstValue float64
	evaluated  bool
}

func newTracker() *tracker {
	return &tracker{path: make(map[int]float64)}
}

func (t *tracker) record(id int, value float64) {
	if _, seen := t.path[id]; !seen {
		t.order = append(t.order, id)
	}
	t.path[id] = value
	if !t.evaluated {
		t.optimum, t.worst = id, id
		t.optValue, t.worstValue = value, value
		t.evaluated = true
		return
	}
	if value < t.optValue {
		t.optimum, t.optValue = id, value
	}
	if value > t.worstValue {
		t.worst, t.worstValue = id, value
	}
}

func (t *tracker) Optimum() (int, error) {
	if !t.evaluated {
		return 0, ErrNotEvaluated
	}
	return t.optimum, nil
}

func (t *tracker) Worst() (int, error) {
	if !t.evaluated {
		return 0, ErrNotEvaluated
	}
	return t.worst, nil
}

// best returns the optimum's value.
func (t *tracker) best() (float64, bool) {
	return t.optValue, t.evaluated
}

func (t *tracker) SearchPath() map[int]float64 {
	out := make(map[int]float64, len(t.path))
	for id, v := range t.path {
		out[id] = v
	}
	return out
}

func (t *tracker) reset() {
	*t = *newTracker()
}
