package usage_test

import (
	"testing"
	"time"

	"github.com/preedep/MQUsageViewer/domain/usage"
)

func TestRecordValid(t *testing.T) {
	now := time.Now()

	valid := usage.Record{Timestamp: now, SystemName: "SYS1", MQFunction: "F1", TransPerSec: 1.5}
	if !valid.Valid() {
		t.Error("expected record to be valid")
	}

	cases := map[string]usage.Record{
		"empty function": {Timestamp: now, SystemName: "SYS1", TransPerSec: 1},
		"empty system":   {Timestamp: now, MQFunction: "F1", TransPerSec: 1},
		"negative tps":   {Timestamp: now, SystemName: "SYS1", MQFunction: "F1", TransPerSec: -1},
	}
	for name, r := range cases {
		if r.Valid() {
			t.Errorf("%s: expected invalid", name)
		}
	}
}

func TestFilterPredicates(t *testing.T) {
	f := usage.Filter{MQFunction: "F1"}
	if f.HasSystem() {
		t.Error("HasSystem = true without system name")
	}
	if f.HasRange() {
		t.Error("HasRange = true without bounds")
	}

	f.SystemName = "SYS1"
	f.From = time.Now().Add(-time.Hour)
	if !f.HasSystem() {
		t.Error("HasSystem = false with system name")
	}
	if f.HasRange() {
		t.Error("HasRange = true with only one bound")
	}

	f.To = time.Now()
	if !f.HasRange() {
		t.Error("HasRange = false with both bounds")
	}
}
