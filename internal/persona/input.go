// Package persona runs the persona pipeline: a persona and a job description
// are matched against the outlines of a set of PDFs, and the best sections
// are reported.
package persona

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Input is challenge1b_input.json. Persona and job accept either a plain
// string or an object ({"role": ...} and {"task": ...}); documents accept
// file names or objects with a "filename" key.
type Input struct {
	Persona     string
	JobToBeDone string
	Documents   []string
}

type rawInput struct {
	Persona     json.RawMessage   `json:"persona"`
	JobToBeDone json.RawMessage   `json:"job_to_be_done"`
	Documents   []json.RawMessage `json:"documents"`
}

func (in *Input) UnmarshalJSON(b []byte) error {
	var raw rawInput
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var err error
	if in.Persona, err = textField(raw.Persona, "role"); err != nil {
		return fmt.Errorf("persona: %w", err)
	}
	if in.JobToBeDone, err = textField(raw.JobToBeDone, "task"); err != nil {
		return fmt.Errorf("job_to_be_done: %w", err)
	}
	in.Documents = in.Documents[:0]
	for i, d := range raw.Documents {
		name, err := textField(d, "filename")
		if err != nil {
			return fmt.Errorf("documents[%d]: %w", i, err)
		}
		if name != "" {
			in.Documents = append(in.Documents, name)
		}
	}
	return nil
}

// textField reads a JSON string, or the string under key of a JSON object.
// Absent and null values read as "".
func textField(raw json.RawMessage, key string) (string, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return "", nil
	}
	if strings.HasPrefix(s, "{") {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", err
		}
		return textField(obj[key], key)
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// LoadInput reads and parses the persona configuration file.
func LoadInput(path string) (Input, error) {
	var in Input
	b, err := os.ReadFile(path)
	if err != nil {
		return in, err
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return in, fmt.Errorf("parse %s: %w", path, err)
	}
	return in, nil
}
