package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/itchyny/gojq"

	"github.com/usestring/jsonkeys/pkg/keytree"
)

// Filter applies a compiled jq expression to serialized nodes.
type Filter struct {
	code *gojq.Code
}

// CompileFilter parses and compiles a jq expression.
func CompileFilter(expression string) (*Filter, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return &Filter{code: code}, nil
}

// Apply runs the filter against the serialized form of node and returns
// every value it emits. A runtime jq error aborts with no values.
func (f *Filter) Apply(node *keytree.Tree, names Namer, opts EncodeOptions) ([]any, error) {
	data, err := json.Marshal(View(node, names, opts))
	if err != nil {
		return nil, fmt.Errorf("encoding node: %w", err)
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("decoding node: %w", err)
	}

	var values []any
	iter := f.code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return nil, fmt.Errorf("jq: %w", err)
		}
		values = append(values, v)
	}
	return values, nil
}

// WriteValues writes each value as one line of compact JSON.
func WriteValues(w io.Writer, values []any) error {
	for _, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding jq result: %w", err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}
