package models

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// EngineConfig is the radio configuration held by the DMR engine.
type EngineConfig struct {
	Callsign  string  `json:"callsign"`
	DMRID     int     `json:"dmr_id"`
	Frequency float64 `json:"frequency"`
	Timeslot  int     `json:"timeslot"`
	ColorCode int     `json:"color_code"`
}

// DefaultEngineConfig mirrors the values the engine falls back to when its
// config.ini is missing or incomplete.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Callsign:  "N0CALL",
		DMRID:     1234567,
		Frequency: 438.800,
		Timeslot:  1,
		ColorCode: 1,
	}
}

// StatusResponse is the body of GET /api/status kept as decoded JSON. Only
// services.dmr is looked at; every other field is optional and untyped.
type StatusResponse map[string]interface{}

// HasServices reports whether the body carries a non-null services key.
func (s StatusResponse) HasServices() bool {
	return s["services"] != nil
}

// DMR returns services.dmr and whether it was present. A services value
// that is not an object has no dmr entry.
func (s StatusResponse) DMR() (interface{}, bool) {
	services, ok := s["services"].(map[string]interface{})
	if !ok {
		return nil, false
	}
	v, ok := services["dmr"]
	return v, ok
}

// Config decodes the engine configuration fields of the status body.
// Missing fields stay zero; fields of an unexpected type fail the decode.
func (s StatusResponse) Config() (EngineConfig, error) {
	var cfg EngineConfig
	data, err := json.Marshal(s)
	if err != nil {
		return cfg, errors.Wrap(err, "encode status")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "decode engine config")
	}
	return cfg, nil
}

// Ret is the body returned by the engine's mutating endpoints
// (restart, config, reset).
type Ret struct {
	Result interface{} `json:"result"`
}

// ConfigPatch holds the fields a caller wants to change. Nil fields keep
// the engine's current value.
type ConfigPatch struct {
	Callsign  *string
	DMRID     *int
	Frequency *float64
	Timeslot  *int
	ColorCode *int
}

func (p ConfigPatch) IsEmpty() bool {
	return p.Callsign == nil && p.DMRID == nil && p.Frequency == nil && p.Timeslot == nil && p.ColorCode == nil
}

// Apply returns cfg with every set field of p written over it.
func (p ConfigPatch) Apply(cfg EngineConfig) EngineConfig {
	if p.Callsign != nil {
		cfg.Callsign = *p.Callsign
	}
	if p.DMRID != nil {
		cfg.DMRID = *p.DMRID
	}
	if p.Frequency != nil {
		cfg.Frequency = *p.Frequency
	}
	if p.Timeslot != nil {
		cfg.Timeslot = *p.Timeslot
	}
	if p.ColorCode != nil {
		cfg.ColorCode = *p.ColorCode
	}
	return cfg
}
