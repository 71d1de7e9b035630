package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/swapnilgarg7/sync-sure/model"
)

// Error code carried by ErrorReport when the oracle output is not JSON.
// The exact string is part of the response contract.
const ParseErrorCode = "Failed to parse LLM output as JSON"

// Error code when the output is valid JSON but not shaped like a report.
// Only produced when strict schema checking is enabled.
const SchemaErrorCode = "LLM output does not match report schema"

// reportSchemaMap describes the shape the prompt instructs the oracle to
// produce. Enums mirror the template's Output Format section.
var reportSchemaMap = map[string]any{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type":    "object",
	"required": []any{
		"summary", "compliance-score", "issues", "recommendation",
	},
	"properties": map[string]any{
		"summary": map[string]any{
			"type": "string",
			"enum": []any{model.SummaryCompliant, model.SummaryNonCompliant},
		},
		"compliance-score": map[string]any{
			"type":    "integer",
			"minimum": 0,
			"maximum": 100,
		},
		"issues": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"required": []any{
					"type", "description", "contract_reference",
					"invoice_reference", "suggested_action", "severity",
				},
				"properties": map[string]any{
					"type": map[string]any{
						"type": "string",
						"enum": []any{
							model.IssueTypePriceMismatch,
							model.IssueTypeQuantityError,
							model.IssueTypeTermViolation,
							model.IssueTypeDiscountError,
							model.IssueTypeOther,
						},
					},
					"description":        map[string]any{"type": "string"},
					"contract_reference": map[string]any{"type": "string"},
					"invoice_reference":  map[string]any{"type": "string"},
					"suggested_action": map[string]any{
						"type": "string",
						"enum": []any{
							model.ActionAutoApprove,
							model.ActionFlag,
							model.ActionReject,
							model.ActionClarify,
						},
					},
					"severity": map[string]any{
						"type": "string",
						"enum": []any{
							model.SeverityLow,
							model.SeverityMedium,
							model.SeverityHigh,
						},
					},
				},
			},
		},
		"recommendation": map[string]any{"type": "string"},
		"notes":          map[string]any{"type": "string"},
	},
}

var (
	reportSchemaOnce sync.Once
	reportSchema     *jsonschema.Schema
	reportSchemaErr  error
)

func compiledReportSchema() (*jsonschema.Schema, error) {
	reportSchemaOnce.Do(func() {
		b, err := json.Marshal(reportSchemaMap)
		if err != nil {
			reportSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("report.json", bytes.NewReader(b)); err != nil {
			reportSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		reportSchema, reportSchemaErr = compiler.Compile("report.json")
	})
	return reportSchema, reportSchemaErr
}

// ParseReport parses the raw oracle output as JSON. Invalid JSON never
// becomes an error: the caller gets a structured ErrorReport carrying the
// output verbatim. With strict enabled, JSON that does not match the report
// schema takes the same path. Exactly one of the two return values is set.
func ParseReport(raw string, strict bool) (map[string]any, *model.ErrorReport) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &model.ErrorReport{
			Error:     ParseErrorCode,
			RawOutput: raw,
			Exception: err.Error(),
		}
	}

	if strict {
		schema, err := compiledReportSchema()
		if err != nil {
			return nil, &model.ErrorReport{
				Error:     SchemaErrorCode,
				RawOutput: raw,
				Exception: err.Error(),
			}
		}
		var v any
		// Re-decode so numbers keep their generic form for validation
		_ = json.Unmarshal([]byte(raw), &v)
		if err := schema.Validate(v); err != nil {
			return nil, &model.ErrorReport{
				Error:     SchemaErrorCode,
				RawOutput: raw,
				Exception: err.Error(),
			}
		}
	}

	return parsed, nil
}
