package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"student-loan-sim/domain"
	"student-loan-sim/service"
)

// LoadScenario reads a simulation request from a YAML file. Keys missing
// from the file keep the values of base and DefaultSimulationCount.
func LoadScenario(path string, base domain.SimulationParameters) (domain.SimulationRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.SimulationRequest{}, err
	}
	defer f.Close()
	return DecodeScenario(f, base)
}

func DecodeScenario(r io.Reader, base domain.SimulationParameters) (domain.SimulationRequest, error) {
	req := domain.SimulationRequest{
		Parameters:  base,
		Simulations: service.DefaultSimulationCount,
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return domain.SimulationRequest{}, fmt.Errorf("decode scenario: %w", err)
	}
	return req, nil
}

// WriteScenario writes req as YAML, e.g. to seed a scenario file from the
// defaults.
func WriteScenario(w io.Writer, req domain.SimulationRequest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(req); err != nil {
		return err
	}
	return enc.Close()
}
