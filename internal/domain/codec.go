package domain

import (
	"encoding/json"
	"fmt"
)

type workItemJSON struct {
	Index      int             `json:"index"`
	InputPath  string          `json:"input_path"`
	OutputPath string          `json:"output_path"`
	Operation  OperationKind   `json:"operation,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
}

// MarshalJSON records the operation kind next to the parameters so that
// stored reports can be decoded again.
func (w WorkItem) MarshalJSON() ([]byte, error) {
	out := workItemJSON{
		Index:      w.Index,
		InputPath:  w.InputPath,
		OutputPath: w.OutputPath,
	}
	if w.Params != nil {
		raw, err := json.Marshal(w.Params)
		if err != nil {
			return nil, err
		}
		out.Operation = w.Params.Operation()
		out.Params = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the parameters into the struct matching the recorded
// operation kind.
func (w *WorkItem) UnmarshalJSON(data []byte) error {
	var in workItemJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	params, err := decodeParams(in.Operation, in.Params)
	if err != nil {
		return err
	}

	*w = WorkItem{
		Index:      in.Index,
		InputPath:  in.InputPath,
		OutputPath: in.OutputPath,
		Params:     params,
	}
	return nil
}

func decodeParams(kind OperationKind, raw json.RawMessage) (Params, error) {
	if kind == "" || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch kind {
	case OperationOCR:
		return decode[OCRParams](raw)
	case OperationOptimize:
		return decode[OptimizeParams](raw)
	case OperationMerge:
		return decode[MergeParams](raw)
	case OperationSplit:
		return decode[SplitParams](raw)
	case OperationConvert:
		return decode[ConvertParams](raw)
	default:
		return nil, fmt.Errorf("unknown operation %q", kind)
	}
}

func decode[T Params](raw json.RawMessage) (Params, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
