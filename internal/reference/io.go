package reference

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadExtraction loads an ExtractionResult from a JSON file.
func ReadExtraction(path string) (ExtractionResult, error) {
	var res ExtractionResult
	if err := readJSON(path, &res); err != nil {
		return ExtractionResult{}, err
	}
	for i, r := range res.References {
		if r.ID == "" {
			res.References[i].ID = RefID(r.Ordinal)
		}
	}
	return res, nil
}

// ReadVerification loads a VerificationResult from a JSON file.
func ReadVerification(path string) (VerificationResult, error) {
	var res VerificationResult
	if err := readJSON(path, &res); err != nil {
		return VerificationResult{}, err
	}
	return res, nil
}

// WriteJSON writes v to path as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
