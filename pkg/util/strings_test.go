package util

import (
	"reflect"
	"testing"
)

func TestSplitCSV(t *testing.T) {
	got := SplitCSV(" a:9092, ,b:9092 ,")
	want := []string{"a:9092", "b:9092"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if SplitCSV("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
