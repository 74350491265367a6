// pkg/validate/record.go

package validate

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mayursurani/datapipe/pkg/model"
)

// maxSamples limits how many issues are echoed to the log; the full list
// is always kept on the report.
const maxSamples = 5

// Config holds the thresholds and allowed values for record validation.
type Config struct {
	PriceMin           float64
	PriceMax           float64
	QuantityMin        int
	QuantityMax        int
	ValidRegions       []string
	RequiredFields     []string
	HighValueThreshold float64

	// Rules are the declarative per-field checks applied through the rule
	// validator alongside the threshold checks. Nil selects recordRules().
	Rules map[string]interface{}
}

// DefaultConfig returns the standard sales validation thresholds.
func DefaultConfig() Config {
	return Config{
		PriceMin:           0,
		PriceMax:           1000000,
		QuantityMin:        1,
		QuantityMax:        10000,
		ValidRegions:       []string{"North", "South", "East", "West"},
		RequiredFields:     []string{"product", "price", "quantity", "customer_id", "region"},
		HighValueThreshold: 500000,
	}
}

// RecordValidator validates individual records and whole tables against a
// Config. Format checks run through the declarative rule validator; range
// checks and warnings are applied directly so their messages carry the
// offending values.
type RecordValidator struct {
	config Config
	rules  *RuleValidator
	logger *zap.Logger
}

// recordRules are the format checks ValidateRecord folds in beside its
// threshold checks. They carry no threshold dependence, so they stay
// valid whatever Config the validator was built with.
func recordRules() map[string]interface{} {
	return map[string]interface{}{
		"product":     "required,min=2",
		"customer_id": "required,customer_id",
	}
}

// NewRecordValidator creates a validator, filling in defaults for any
// zero-valued config fields.
func NewRecordValidator(config Config) (*RecordValidator, error) {
	defaults := DefaultConfig()
	if config.PriceMax <= 0 {
		config.PriceMax = defaults.PriceMax
	}
	if config.QuantityMin <= 0 {
		config.QuantityMin = defaults.QuantityMin
	}
	if config.QuantityMax <= 0 {
		config.QuantityMax = defaults.QuantityMax
	}
	if len(config.ValidRegions) == 0 {
		config.ValidRegions = defaults.ValidRegions
	}
	if len(config.RequiredFields) == 0 {
		config.RequiredFields = defaults.RequiredFields
	}
	if config.HighValueThreshold <= 0 {
		config.HighValueThreshold = defaults.HighValueThreshold
	}
	if config.PriceMin > config.PriceMax {
		return nil, fmt.Errorf("price minimum %v exceeds maximum %v", config.PriceMin, config.PriceMax)
	}
	if config.Rules == nil {
		config.Rules = recordRules()
	}

	rules, err := NewRuleValidator(config.Rules)
	if err != nil {
		return nil, fmt.Errorf("building rule validator: %w", err)
	}

	return &RecordValidator{
		config: config,
		rules:  rules,
		logger: zap.L().Named("validate"),
	}, nil
}

// ValidateRecord checks a single record and returns its errors and
// warnings. A record with any error is invalid; warnings alone do not
// invalidate it.
func (rv *RecordValidator) ValidateRecord(record model.Record) (errors, warnings []string) {
	for _, field := range rv.config.RequiredFields {
		if model.IsMissing(record[field]) {
			errors = append(errors, fmt.Sprintf("missing required field: %s", field))
		}
	}
	// Without the required fields the remaining checks would read nils.
	if len(errors) > 0 {
		return errors, warnings
	}

	price, priceOK := model.AsFloat(record["price"])
	if !priceOK {
		errors = append(errors, fmt.Sprintf("invalid price format: %v", record["price"]))
	} else if err := Price(price, rv.config.PriceMin, rv.config.PriceMax); err != nil {
		errors = append(errors, err.Error())
	}

	qtyFloat, qtyOK := model.AsFloat(record["quantity"])
	quantity := int(qtyFloat)
	if !qtyOK {
		errors = append(errors, fmt.Sprintf("invalid quantity format: %v", record["quantity"]))
	} else if quantity < rv.config.QuantityMin {
		errors = append(errors, fmt.Sprintf("quantity below minimum: %d", quantity))
	} else if quantity > rv.config.QuantityMax {
		warnings = append(warnings, fmt.Sprintf("unusually high quantity: %d", quantity))
	}

	region := fmt.Sprintf("%v", record["region"])
	if err := Region(region, rv.config.ValidRegions); err != nil {
		errors = append(errors, err.Error())
	}

	// The warning fires even when other fields failed: an order that large
	// needs approval regardless of what else is wrong with the record.
	if priceOK && qtyOK {
		if revenue := price * float64(quantity); revenue > rv.config.HighValueThreshold {
			warnings = append(warnings, fmt.Sprintf("high-value order: ₹%.2f, requires approval", revenue))
		}
	}

	errors = append(errors, rv.rules.Check(record)...)

	return errors, warnings
}

// ValidateTable splits a table into valid and invalid rows. Invalid rows
// carry record_num and errors columns describing what failed.
func (rv *RecordValidator) ValidateTable(tbl *model.Table) (valid, invalid *model.Table, report *model.ValidationReport, err error) {
	if tbl == nil {
		return nil, nil, nil, fmt.Errorf("table is required")
	}

	rv.logger.Info("validation started",
		zap.String("table", tbl.Name),
		zap.Int("total_records", len(tbl.Rows)),
	)

	report = model.NewValidationReport()
	columns := tbl.ColumnNames()

	var validRows, invalidRows []model.Record
	for idx, row := range tbl.Rows {
		recordNum := idx + 1
		report.TotalRecords++

		if recordNum%1000 == 0 {
			rv.logger.Debug("processing record", zap.Int("record_num", recordNum))
		}

		errs, warns := rv.ValidateRecord(row)
		for _, w := range warns {
			report.Warnings = append(report.Warnings, model.ValidationIssue{RecordNum: recordNum, Message: w})
		}

		if len(errs) == 0 {
			report.ValidRecords++
			validRows = append(validRows, row)
			continue
		}

		report.InvalidRecords++
		for _, e := range errs {
			report.Errors = append(report.Errors, model.ValidationIssue{RecordNum: recordNum, Message: e})
		}

		invalidRow := make(model.Record, len(row)+2)
		for k, v := range row {
			invalidRow[k] = v
		}
		invalidRow["record_num"] = recordNum
		invalidRow["errors"] = strings.Join(errs, "; ")
		invalidRows = append(invalidRows, invalidRow)
	}

	valid = model.NewTable(tbl.Name+"_valid", columns, validRows)
	invalid = model.NewTable(tbl.Name+"_invalid", append(append([]string{}, columns...), "record_num", "errors"), invalidRows)

	rv.logSummary(report)
	return valid, invalid, report, nil
}

func (rv *RecordValidator) logSummary(report *model.ValidationReport) {
	rv.logger.Info("validation report",
		zap.Int("total_records", report.TotalRecords),
		zap.Int("valid_records", report.ValidRecords),
		zap.Int("invalid_records", report.InvalidRecords),
		zap.Float64("valid_rate_pct", report.ValidRate()),
		zap.Int("warnings", len(report.Warnings)),
	)

	for i, issue := range report.Errors {
		if i >= maxSamples {
			rv.logger.Warn("additional errors suppressed", zap.Int("remaining", len(report.Errors)-maxSamples))
			break
		}
		rv.logger.Warn("validation error",
			zap.Int("record_num", issue.RecordNum),
			zap.String("error", issue.Message),
		)
	}
	for i, issue := range report.Warnings {
		if i >= maxSamples {
			rv.logger.Warn("additional warnings suppressed", zap.Int("remaining", len(report.Warnings)-maxSamples))
			break
		}
		rv.logger.Warn("validation warning",
			zap.Int("record_num", issue.RecordNum),
			zap.String("warning", issue.Message),
		)
	}
}
