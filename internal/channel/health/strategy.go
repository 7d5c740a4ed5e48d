// Package health tracks the success rate of outbound processors and marks them
// degraded when it drops below a threshold.
package health

import "fmt"

// SuccessRateStrategy 根据一次调用结果计算新的成功率（0~100）
type SuccessRateStrategy interface {
	Update(current float64, success bool) float64
}

// StrategyByName 按名称返回默认参数的策略
func StrategyByName(name string) (SuccessRateStrategy, error) {
	switch name {
	case "", "ewma":
		return &EWMAStrategy{Alpha: 0.1}, nil
	case "sliding":
		return &SlidingStrategy{StepUp: 5, StepDown: 20}, nil
	case "decay":
		return &DecayStrategy{Factor: 0.95}, nil
	}
	return nil, fmt.Errorf("unknown health strategy %q", name)
}

// EWMAStrategy 指数加权平均，适合流量平稳的场景
type EWMAStrategy struct {
	Alpha float64
}

func (e *EWMAStrategy) Update(current float64, success bool) float64 {
	var value float64
	if success {
		value = 100
	}
	return e.Alpha*value + (1-e.Alpha)*current
}

// SlidingStrategy 按固定步长增减
type SlidingStrategy struct {
	StepUp   float64
	StepDown float64
}

func (s *SlidingStrategy) Update(current float64, success bool) float64 {
	if success {
		return min(current+s.StepUp, 100)
	}
	return max(current-s.StepDown, 0)
}

// DecayStrategy 只对失败衰减，成功率乘以 Factor
type DecayStrategy struct {
	Factor float64
}

func (d *DecayStrategy) Update(current float64, success bool) float64 {
	if success {
		return current
	}
	return max(current*d.Factor, 0)
}
