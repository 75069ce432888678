package models

import (
	"encoding/json"
	"testing"
)

func TestStatusResponseDecode(t *testing.T) {
	body := `{"callsign":"PD0ABC","dmr_id":2041234,"frequency":439.5,"timeslot":2,"color_code":3,"services":{"dmr":"running"}}`

	var status StatusResponse
	if err := json.Unmarshal([]byte(body), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dmr, ok := status.DMR(); !ok || dmr != "running" {
		t.Errorf("unexpected dmr: %v", dmr)
	}
	cfg, err := status.Config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	want := EngineConfig{Callsign: "PD0ABC", DMRID: 2041234, Frequency: 439.5, Timeslot: 2, ColorCode: 3}
	if cfg != want {
		t.Errorf("Config() = %+v, want %+v", cfg, want)
	}
}

func TestStatusResponseServicesShapes(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		hasServices bool
		dmrPresent  bool
	}{
		{"object", `{"services":{"dmr":false}}`, true, true},
		{"empty object", `{"services":{}}`, true, false},
		{"string", `{"services":"up"}`, true, false},
		{"array", `{"services":["dmr"]}`, true, false},
		{"null", `{"services":null}`, false, false},
		{"missing", `{}`, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var status StatusResponse
			if err := json.Unmarshal([]byte(tt.body), &status); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if status.HasServices() != tt.hasServices {
				t.Errorf("HasServices() = %v, want %v", status.HasServices(), tt.hasServices)
			}
			if _, ok := status.DMR(); ok != tt.dmrPresent {
				t.Errorf("DMR() present = %v, want %v", ok, tt.dmrPresent)
			}
		})
	}
}

func TestStatusResponseConfigMistyped(t *testing.T) {
	var status StatusResponse
	if err := json.Unmarshal([]byte(`{"services":{"dmr":"running"},"dmr_id":"1234567"}`), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := status.Config(); err == nil {
		t.Error("expected an error for a string dmr_id")
	}
	if dmr, _ := status.DMR(); dmr != "running" {
		t.Errorf("unexpected dmr: %v", dmr)
	}
}

func TestConfigPatchApply(t *testing.T) {
	callsign := "PD0ABC"
	timeslot := 2
	patch := ConfigPatch{Callsign: &callsign, Timeslot: &timeslot}
	if patch.IsEmpty() {
		t.Fatal("patch with fields reported empty")
	}

	got := patch.Apply(DefaultEngineConfig())
	want := DefaultEngineConfig()
	want.Callsign = "PD0ABC"
	want.Timeslot = 2
	if got != want {
		t.Errorf("Apply() = %+v, want %+v", got, want)
	}

	if !(ConfigPatch{}).IsEmpty() {
		t.Error("zero patch should be empty")
	}
}
