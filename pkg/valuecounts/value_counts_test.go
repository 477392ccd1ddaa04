package valuecounts

import (
	"reflect"
	"testing"

	"github.com/ossf/entropy-analysis/internal/utils"
)

func TestToPairs(t *testing.T) {
	tests := []struct {
		name string
		vc   ValueCounts
		want []Pair
	}{
		{"empty", New(), []Pair{}},
		{"single", FromMap(map[int]int{0: 1}), []Pair{{0, 1}}},
		{"sorted by value", FromMap(map[int]int{200: 3, 7: 1, 31: 2}), []Pair{{7, 1}, {31, 2}, {200, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vc.ToPairs(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToPairs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromPairs(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []Pair
		want    ValueCounts
		wantErr bool
	}{
		{"nil", nil, New(), false},
		{"empty", []Pair{}, New(), false},
		{"several", []Pair{{0, 1}, {1, 2}}, FromMap(map[int]int{0: 1, 1: 2}), false},
		{"duplicate value", []Pair{{0, 1}, {0, 2}}, ValueCounts{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromPairs(tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromPairs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FromPairs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		vc   ValueCounts
		want string
	}{
		{"zero value", ValueCounts{}, "[]"},
		{"empty", New(), "[]"},
		{"several", FromMap(map[int]int{2: 3, 0: 1}), `[{"value": 0, "count": 1}, {"value": 2, "count": 3}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.vc.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if equal, err := utils.JSONEquals(got, []byte(tt.want)); err != nil {
				t.Errorf("MarshalJSON() produced invalid JSON: %v", err)
			} else if !equal {
				t.Errorf("MarshalJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnmarshalJSON(t *testing.T) {
	previous := map[int]int{42: 1}
	tests := []struct {
		name    string
		json    string
		want    ValueCounts
		wantErr bool
	}{
		{"null", "null", New(), false},
		{"empty", "[]", New(), false},
		{"several", `[{"value":0,"count":1},{"value":255,"count":9}]`, FromMap(map[int]int{0: 1, 255: 9}), false},
		{"duplicate value", `[{"value":1,"count":1},{"value":1,"count":1}]`, FromMap(previous), true},
		{"not a list", `{"value":1}`, FromMap(previous), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vc := FromMap(previous)
			if err := vc.UnmarshalJSON([]byte(tt.json)); (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(vc, tt.want) {
				t.Errorf("UnmarshalJSON() = %v, want %v", vc, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	vc := FromMap(map[int]int{4: 1, 1: 2, 3: 2, 2: 3})
	if got, want := vc.String(), "[1: 2, 2: 3, 3: 2, 4: 1]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := New().String(), "[]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
