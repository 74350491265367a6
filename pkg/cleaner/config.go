// pkg/cleaner/config.go

package cleaner

// Missing value strategies.
const (
	StrategyMean     = "mean"
	StrategyMedian   = "median"
	StrategyZero     = "zero"
	StrategyMode     = "mode"
	StrategyConstant = "constant"
)

// Outlier detection methods.
const (
	MethodIQR    = "iqr"
	MethodZScore = "zscore"
)

// Duplicate keep policies.
const (
	KeepFirst = "first"
	KeepLast  = "last"
)

// MissingConfig controls the missing value stage.
type MissingConfig struct {
	NumericStrategy     string  // mean, median or zero
	CategoricalStrategy string  // mode or constant
	Constant            string  // fill value for the constant strategy
	DropThreshold       float64 // drop columns whose missing ratio exceeds this
}

// DuplicateConfig controls the duplicate removal stage.
type DuplicateConfig struct {
	Subset []string // columns forming the duplicate key; nil means all
	Keep   string   // first or last
}

// OutlierConfig controls the outlier capping stage.
type OutlierConfig struct {
	Method    string  // iqr or zscore
	Threshold float64 // IQR multiplier or sigma count
}

// TextConfig controls the text cleaning stage. Columns are matched by
// name substring (email, name, phone).
type TextConfig struct {
	LowercaseEmails   bool
	TitleCaseNames    bool
	StandardizePhones bool
}

// TypeConfig controls the type conversion stage.
type TypeConfig struct {
	AutoConvert bool
}

// Config holds all cleaning pipeline settings.
type Config struct {
	Missing    MissingConfig
	Duplicates DuplicateConfig
	Outliers   OutlierConfig
	Text       TextConfig
	Types      TypeConfig
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Missing: MissingConfig{
			NumericStrategy:     StrategyMedian,
			CategoricalStrategy: StrategyMode,
			Constant:            "Unknown",
			DropThreshold:       0.5,
		},
		Duplicates: DuplicateConfig{
			Subset: nil,
			Keep:   KeepFirst,
		},
		Outliers: OutlierConfig{
			Method:    MethodIQR,
			Threshold: 1.5,
		},
		Text: TextConfig{
			LowercaseEmails:   true,
			TitleCaseNames:    true,
			StandardizePhones: true,
		},
		Types: TypeConfig{
			AutoConvert: true,
		},
	}
}
