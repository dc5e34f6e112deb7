package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// unwrapBybit replaces a v5 response envelope with its result object.
func unwrapBybit(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var envelope struct {
		RetCode *int            `json:"retCode"`
		RetMsg  string          `json:"retMsg"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if envelope.RetCode == nil {
		// already unwrapped
		return nil
	}
	if *envelope.RetCode != 0 {
		return fmt.Errorf("retCode %d: %s", *envelope.RetCode, envelope.RetMsg)
	}
	return os.WriteFile(path, envelope.Result, 0o644)
}
