package htmlcheck

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountLevels_MatchesFailureCount(t *testing.T) {
	docs := map[string]*fakeEl{
		"empty": el("html", nil),
		"wrong form": el("html", nil,
			el("form", map[string]string{"id": "wrongId", "method": "GET"})),
		"two forms": el("html", nil,
			el("form", map[string]string{"id": "x"},
				el("input", map[string]string{"name": "phone"})),
			el("form", map[string]string{"id": "mForm", "method": "post"},
				el("input", map[string]string{"name": "phone", "type": "tel"}))),
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			for _, schema := range []*Schema{phoneFormSchema(), phoneFormSchema(Many())} {
				root, err := schema.Validate(&fakeDoc{}, doc)
				require.NoError(t, err)

				tree := root.Errors()
				hist, err := CountLevels(tree)
				require.NoError(t, err)
				assert.Equal(t, countFailures(tree), hist.Total())
				assert.Equal(t, 0, hist.Count(SeveritySuccess))
			}
		})
	}
}

func TestCountLevels_Shapes(t *testing.T) {
	warn := Failure{Message: "w", Severity: SeverityWarning}
	danger := Failure{Message: "d", Severity: SeverityDanger}

	tests := []struct {
		name string
		in   any
		want Histogram
	}{
		{"single failure", warn, Histogram{0, 0, 1, 0}},
		{"pointer", &danger, Histogram{0, 0, 0, 1}},
		{"list", []Failure{warn, danger, danger}, Histogram{0, 0, 1, 2}},
		{"empty tree", ErrorTree{NonFieldErrors: []Failure{}}, Histogram{}},
		{"nested", ErrorTree{
			NonFieldErrors: []Failure{warn},
			"form": []ErrorTree{
				{NonFieldErrors: []Failure{}, "id": []Failure{danger}},
				{NonFieldErrors: []Failure{danger}},
			},
		}, Histogram{0, 0, 1, 2}},
		{"plain maps", map[string]any{
			"a": []any{warn, map[string]any{"b": []Failure{danger}}},
		}, Histogram{0, 0, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CountLevels(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountLevels_UnexpectedShape(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"string", "oops"},
		{"int inside tree", ErrorTree{"x": 3}},
		{"nil", nil},
		{"nil pointer", (*Failure)(nil)},
		{"bad severity", []Failure{{Message: "x", Severity: Severity(8)}}},
		{"bad plain level", map[string]any{"message": "x", "level": "fatal"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CountLevels(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnexpectedShape)
		})
	}
}

func TestErrorTree_Plain(t *testing.T) {
	root, err := phoneFormSchema(Many()).Validate(&fakeDoc{}, el("html", nil,
		el("form", map[string]string{"id": "wrongId", "method": "POST"})))
	require.NoError(t, err)

	tree := root.Errors()
	plain := tree.Plain()

	forms, ok := plain["form"].([]any)
	require.True(t, ok)
	require.Len(t, forms, 1)
	form := forms[0].(map[string]any)
	id := form["id"].([]any)
	require.Len(t, id, 1)
	assert.Equal(t, map[string]any{
		"message": `Attr value must be "mForm", actual "wrongId"`,
		"level":   "danger",
		"code":    CodeExpected,
		"path":    "form[1].id",
	}, id[0])

	want, err := CountLevels(tree)
	require.NoError(t, err)
	got, err := CountLevels(plain)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = json.Marshal(plain)
	require.NoError(t, err)
}

func TestHistogram(t *testing.T) {
	h := Histogram{0, 1, 0, 2}

	assert.Equal(t, 3, h.Total())
	assert.Equal(t, SeverityDanger, h.Worst())
	assert.Equal(t, 0, h.Count(Severity(12)))
	assert.Equal(t, "success=0 info=1 warning=0 danger=2", h.String())
	assert.Equal(t, SeveritySuccess, Histogram{}.Worst())
	assert.Equal(t, SeverityWarning, Histogram{5, 0, 1, 0}.Worst())
	assert.Equal(t, Histogram{1, 1, 1, 3}, h.Add(Histogram{1, 0, 1, 1}))

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Equal(t, `{"success":0,"info":1,"warning":0,"danger":2}`, string(data))

	var back Histogram
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, h, back)

	assert.Error(t, json.Unmarshal([]byte(`{"fatal":1}`), &back))
}

func TestSchema_ConcurrentValidate(t *testing.T) {
	schema := phoneFormSchema(Many())
	good := el("html", nil,
		el("form", map[string]string{"id": "mForm", "method": "POST"},
			el("input", map[string]string{"name": "phone", "type": "tel"})))
	bad := el("html", nil,
		el("form", map[string]string{"id": "x", "method": "GET"}))

	var wg sync.WaitGroup
	totals := make([]int, 16)
	for i := range totals {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc := good
			if i%2 == 1 {
				doc = bad
			}
			root, err := schema.Validate(&fakeDoc{}, doc)
			if err != nil {
				totals[i] = -1
				return
			}
			totals[i] = countFailures(root.Errors())
		}()
	}
	wg.Wait()

	for i, n := range totals {
		if i%2 == 0 {
			assert.Equal(t, 0, n, "run %d", i)
		} else {
			assert.Equal(t, 3, n, "run %d", i)
		}
	}
}
