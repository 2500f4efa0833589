package descriptors

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-4
}

func TestCompositionHomopolymer(t *testing.T) {
	v, err := Composition{}.Describe(context.Background(), "AAAA")
	if err != nil {
		t.Fatalf("Describe error: %v", err)
	}
	want := map[string]float64{
		KeyLength:              4,
		KeyAromaticity:         0,
		KeyAliphaticFraction:   1,
		KeyGRAVY:               1.8,
		KeyHydrophobicFraction: 1,
		KeyPolarFraction:       0,
		KeyInstabilityIndex:    7.5,
		KeyChargeAtPH7:         -0.2045,
		KeyPositiveFraction:    0,
		KeyNegativeFraction:    0,
		KeyShannonEntropy:      0,
	}
	for k, w := range want {
		if got, ok := v[k]; !ok || !almostEqual(got, w) {
			t.Fatalf("%s: expected %v, got %v (present=%v)", k, w, got, ok)
		}
	}
}

func TestCompositionEntropyAndGroups(t *testing.T) {
	v, err := Composition{}.Describe(context.Background(), "KKDD")
	if err != nil {
		t.Fatalf("Describe error: %v", err)
	}
	if !almostEqual(v[KeyShannonEntropy], 1) {
		t.Fatalf("expected entropy 1 bit, got %v", v[KeyShannonEntropy])
	}
	if v[KeyPositiveFraction] != 0.5 || v[KeyNegativeFraction] != 0.5 {
		t.Fatalf("unexpected charge fractions: %+v", v)
	}
}

func TestCompositionRejectsShortSequences(t *testing.T) {
	if _, err := (Composition{}).Describe(context.Background(), "A*"); err == nil {
		t.Fatalf("expected error for single canonical residue")
	}
}

func TestClean(t *testing.T) {
	if got := Clean("ac-xBZd"); got != "ACD" {
		t.Fatalf("expected ACD, got %q", got)
	}
}

func TestSafeFallbackForShortSequence(t *testing.T) {
	called := false
	p := ProviderFunc(func(context.Context, string) (Vector, error) {
		called = true
		return Vector{}, nil
	})
	v := NewSafe(p, true).Describe(context.Background(), "A")
	if called {
		t.Fatalf("provider should not be called for short sequences")
	}
	if v[KeyLength] != 1 {
		t.Fatalf("expected length 1, got %v", v[KeyLength])
	}
	for _, k := range BiochemicalKeys {
		if v[k] != 0 {
			t.Fatalf("%s: expected 0, got %v", k, v[k])
		}
	}
	if v[KeySurfaceExposedFraction] != 0.5 {
		t.Fatalf("expected neutral surface exposure, got %v", v[KeySurfaceExposedFraction])
	}
}

func TestSafeRecoversFromPanicAndError(t *testing.T) {
	panicky := ProviderFunc(func(context.Context, string) (Vector, error) {
		panic("boom")
	})
	v := NewSafe(panicky, false).Describe(context.Background(), "ACDEFG")
	if v[KeyLength] != 6 || v[KeyGRAVY] != 0 {
		t.Fatalf("expected fallback vector, got %+v", v)
	}
	if _, ok := v[KeyHelixFraction]; ok {
		t.Fatalf("structural keys must be absent when structural descriptors are disabled")
	}

	failing := ProviderFunc(func(context.Context, string) (Vector, error) {
		return nil, errors.New("unavailable")
	})
	v = NewSafe(failing, true).Describe(context.Background(), "ACDEFG")
	if len(v) != 1+len(BiochemicalKeys)+len(StructuralKeys) {
		t.Fatalf("expected full fallback vector, got %d keys", len(v))
	}
}

func TestSafeCompletesMissingKeys(t *testing.T) {
	partial := ProviderFunc(func(context.Context, string) (Vector, error) {
		return Vector{KeyGRAVY: 2.5}, nil
	})
	v := NewSafe(partial, false).Describe(context.Background(), "IIII")
	if v[KeyGRAVY] != 2.5 {
		t.Fatalf("expected provider value kept, got %v", v[KeyGRAVY])
	}
	if _, ok := v[KeyPolarFraction]; !ok {
		t.Fatalf("expected missing key filled")
	}
}

func TestCombinedStructuralFailureUsesFallback(t *testing.T) {
	structural := ProviderFunc(func(context.Context, string) (Vector, error) {
		return nil, errors.New("no model")
	})
	v, err := NewCombined(structural).Describe(context.Background(), "ACDEFGHIK")
	if err != nil {
		t.Fatalf("Describe error: %v", err)
	}
	if v[KeySurfaceExposedFraction] != 0.5 || v[KeyHelixFraction] != 0 {
		t.Fatalf("expected structural fallback, got %+v", v)
	}
	if v[KeyLength] != 9 {
		t.Fatalf("expected composition values kept, got %+v", v)
	}
}

type staticContacts [][]float64

func (s staticContacts) PredictContacts(context.Context, string) ([][]float64, error) {
	return s, nil
}

func TestSecondaryStructureFromContacts(t *testing.T) {
	contacts := make([][]float64, 8)
	for i := range contacts {
		contacts[i] = make([]float64, 8)
	}
	contacts[0][3] = 0.5
	contacts[0][6] = 0.9

	v, err := NewStructural(staticContacts(contacts)).Describe(context.Background(), "ACDEFGHI")
	if err != nil {
		t.Fatalf("Describe error: %v", err)
	}
	if !almostEqual(v[KeyHelixFraction], 0.25) {
		t.Fatalf("expected helix 0.25, got %v", v[KeyHelixFraction])
	}
	if !almostEqual(v[KeySheetFraction], 0.8333) {
		t.Fatalf("expected sheet 0.8333, got %v", v[KeySheetFraction])
	}
}

func TestSecondaryStructureRejectsShortMap(t *testing.T) {
	v, err := NewStructural(staticContacts{{0, 1}}).Describe(context.Background(), "ACDEFG")
	if err != nil {
		t.Fatalf("Describe error: %v", err)
	}
	if v[KeyHelixFraction] != 0 || v[KeySheetFraction] != 0 {
		t.Fatalf("expected zero fractions for malformed map, got %+v", v)
	}
	if v[KeySurfaceExposedFraction] == 0 {
		t.Fatalf("expected propensity-based surface exposure")
	}
}

func TestCompare(t *testing.T) {
	a := Vector{KeyGRAVY: 1.0, KeyHelixFraction: 0.5, KeyLength: 10}
	b := Vector{KeyGRAVY: 1.1, KeyHelixFraction: 0.8, KeyLength: 10}
	c := Compare(a, b)
	if !c.Similar[KeyGRAVY] || c.Diff[KeyGRAVY] != 0.1 {
		t.Fatalf("unexpected GRAVY comparison: %+v", c)
	}
	if c.Similar[KeyHelixFraction] || c.Diff[KeyHelixFraction] != 0.3 {
		t.Fatalf("unexpected helix comparison: %+v", c)
	}
	if _, ok := c.Diff[KeyLength]; ok {
		t.Fatalf("length must not be compared")
	}
	if c.String() != "1/2 similar" {
		t.Fatalf("unexpected summary: %s", c.String())
	}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"GRAVY_diff":0.1`) || !strings.Contains(string(data), `"helix_fraction_similar":false`) {
		t.Fatalf("unexpected json: %s", data)
	}
	var back Comparison
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Diff[KeyHelixFraction] != 0.3 || back.Similar[KeyHelixFraction] || !back.Similar[KeyGRAVY] {
		t.Fatalf("unexpected decoded comparison %+v", back)
	}
}

func TestAggregateSkipsLength(t *testing.T) {
	m := Aggregate([]Vector{
		{KeyLength: 10, KeyGRAVY: 1},
		{KeyLength: 12, KeyGRAVY: 2},
		{KeyLength: 14, KeyGRAVY: 2},
	})
	if _, ok := m[KeyLength]; ok {
		t.Fatalf("length must be skipped")
	}
	if m[KeyGRAVY] != 1.6667 {
		t.Fatalf("expected rounded mean 1.6667, got %v", m[KeyGRAVY])
	}
	if len(Aggregate(nil)) != 0 {
		t.Fatalf("expected empty mean for no vectors")
	}
}

func TestAggregatorDescribeAlignment(t *testing.T) {
	calls := 0
	p := ProviderFunc(func(_ context.Context, seq string) (Vector, error) {
		calls++
		return Composition{}.Describe(context.Background(), seq)
	})
	agg := NewAggregator(p, false)
	region := agg.DescribeAlignment(context.Background(), []SequencePair{
		{Query: "AAAA", Target: "AAAA"},
		{Query: "KKDD", Target: "X"},
	})
	if calls != 3 {
		t.Fatalf("expected 3 provider calls, got %d", calls)
	}
	if len(region.Pairs) != 2 {
		t.Fatalf("expected 2 pair descriptors, got %d", len(region.Pairs))
	}
	if region.Pairs[1].Target[KeyLength] != 1 || region.Pairs[1].Target[KeyGRAVY] != 0 {
		t.Fatalf("expected fallback for short target chunk, got %+v", region.Pairs[1].Target)
	}
	if !region.Pairs[0].Comparison.Similar[KeyGRAVY] {
		t.Fatalf("identical chunks should be similar")
	}
	if !almostEqual(region.TargetMean[KeyGRAVY], 0.9) {
		t.Fatalf("expected target mean GRAVY 0.9, got %v", region.TargetMean[KeyGRAVY])
	}
}

func TestHTTPContactPredictor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/contacts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["sequence"] != "ACDE" {
			t.Errorf("unexpected sequence %v", body["sequence"])
		}
		_, _ = w.Write([]byte(`{"contacts":[[0,1],[1,0]]}`))
	}))
	defer srv.Close()

	p := NewHTTPContactPredictor(srv.URL+"/", "esm2", time.Second)
	contacts, err := p.PredictContacts(context.Background(), "ACDE")
	if err != nil {
		t.Fatalf("PredictContacts error: %v", err)
	}
	if len(contacts) != 2 || contacts[0][1] != 1 {
		t.Fatalf("unexpected contacts: %v", contacts)
	}
}

func TestHTTPContactPredictorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model missing", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewHTTPContactPredictor(srv.URL, "esm2", time.Second)
	if _, err := p.PredictContacts(context.Background(), "ACDE"); err == nil || !strings.Contains(err.Error(), "model missing") {
		t.Fatalf("expected status error, got %v", err)
	}
	if _, err := NewHTTPContactPredictor("", "esm2", time.Second).PredictContacts(context.Background(), "ACDE"); err == nil {
		t.Fatalf("expected error for empty host")
	}
}
