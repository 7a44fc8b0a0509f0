package indicator

// SMA calculates Simple Moving Average
// Returns slice of length: len(values) - period + 1; element k covers values[k : k+period]
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(values)-period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	result = append(result, sum/float64(period))

	// Rolling calculation
	for i := period; i < len(values); i++ {
		sum = sum - values[i-period] + values[i]
		result = append(result, sum/float64(period))
	}

	return result
}

// PercentChange calculates the change of each value against its predecessor, in percent.
// Returns slice of length len(values) - 1; element k compares values[k+1] to values[k].
// ok[k] is false when values[k] is zero and the change is undefined.
func PercentChange(values []float64) (changes []float64, ok []bool) {
	if len(values) < 2 {
		return []float64{}, []bool{}
	}

	changes = make([]float64, len(values)-1)
	ok = make([]bool, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		changes[i-1] = (values[i]/prev - 1) * 100
		ok[i-1] = true
	}
	return changes, ok
}
