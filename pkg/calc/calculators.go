// pkg/calc/calculators.go
package calc

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Revenue returns price * quantity. Negative inputs are rejected.
func Revenue(price float64, quantity int) (float64, error) {
	if price < 0 {
		return 0, fmt.Errorf("price cannot be negative: %v", price)
	}
	if quantity < 0 {
		return 0, fmt.Errorf("quantity cannot be negative: %d", quantity)
	}
	return price * float64(quantity), nil
}

// Profit returns revenue - cost.
func Profit(revenue, cost float64) float64 {
	return revenue - cost
}

// ProfitMargin returns profit as a percentage of revenue.
func ProfitMargin(revenue, cost float64) (float64, error) {
	if revenue == 0 {
		return 0, errors.New("revenue cannot be zero")
	}
	return (revenue - cost) / revenue * 100, nil
}

// Discount returns the price after applying a percentage discount.
func Discount(originalPrice, discountPercentage float64) (float64, error) {
	if discountPercentage < 0 || discountPercentage > 100 {
		return 0, fmt.Errorf("discount percentage must be between 0 and 100: %v", discountPercentage)
	}
	return originalPrice * (1 - discountPercentage/100), nil
}

// Tax returns the amount including tax at the given percentage rate.
func Tax(amount, taxRate float64) (float64, error) {
	if taxRate < 0 {
		return 0, fmt.Errorf("tax rate cannot be negative: %v", taxRate)
	}
	return amount * (1 + taxRate/100), nil
}

// Average returns the arithmetic mean of values.
func Average(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("cannot average an empty slice")
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// GrowthRate returns the percentage change from oldValue to newValue.
func GrowthRate(oldValue, newValue float64) (float64, error) {
	if oldValue == 0 {
		return 0, errors.New("old value cannot be zero")
	}
	return (newValue - oldValue) / oldValue * 100, nil
}

// ROI returns the return on investment as a percentage.
func ROI(investment, returns float64) (float64, error) {
	if investment <= 0 {
		return 0, fmt.Errorf("investment must be positive: %v", investment)
	}
	return (returns - investment) / investment * 100, nil
}

// MovingAverage returns the simple moving average of data with the given
// window. The result has len(data)-window+1 entries.
func MovingAverage(data []float64, window int) ([]float64, error) {
	if window < 1 || window > len(data) {
		return nil, fmt.Errorf("window must be between 1 and %d: %d", len(data), window)
	}

	result := make([]float64, 0, len(data)-window+1)
	sum := 0.0
	for i, v := range data {
		sum += v
		if i >= window {
			sum -= data[i-window]
		}
		if i >= window-1 {
			result = append(result, sum/float64(window))
		}
	}
	return result, nil
}

// Summary holds descriptive statistics for a numeric series.
type Summary struct {
	Count  int
	Sum    float64
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	StdDev float64
}

// Metrics computes descriptive statistics for data.
func Metrics(data []float64) (Summary, error) {
	if len(data) == 0 {
		return Summary{}, errors.New("cannot compute metrics on an empty slice")
	}

	s := Summary{Count: len(data), Min: data[0], Max: data[0]}
	for _, v := range data {
		s.Sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = s.Sum / float64(s.Count)

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		s.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		s.Median = sorted[mid]
	}

	variance := 0.0
	for _, v := range data {
		variance += (v - s.Mean) * (v - s.Mean)
	}
	s.StdDev = math.Sqrt(variance / float64(s.Count))

	return s, nil
}

// Quantile returns the q-th quantile (0..1) of data using linear
// interpolation between closest ranks.
func Quantile(data []float64, q float64) (float64, error) {
	if len(data) == 0 {
		return 0, errors.New("cannot compute quantile on an empty slice")
	}
	if q < 0 || q > 1 {
		return 0, fmt.Errorf("quantile must be between 0 and 1: %v", q)
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower], nil
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac, nil
}
