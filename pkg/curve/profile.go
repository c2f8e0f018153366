package curve

import "sort"

// Key is a single profile keyframe.
type Key struct {
	T     float64 `yaml:"t"`
	Value float64 `yaml:"value"`
}

// Profile is a piecewise-linear function over [0,1], used for widths, heights,
// scales and lateral offsets that vary along a line.
type Profile struct {
	Keys []Key `yaml:"keys"`
}

// Constant returns a profile with the same value everywhere.
func Constant(v float64) Profile {
	return Profile{Keys: []Key{{T: 0, Value: v}, {T: 1, Value: v}}}
}

// Linear returns a profile ramping from a at 0 to b at 1.
func Linear(a, b float64) Profile {
	return Profile{Keys: []Key{{T: 0, Value: a}, {T: 1, Value: b}}}
}

// Evaluate returns the profile value at t, clamping t to the key range.
// An empty profile evaluates to 0.
func (p Profile) Evaluate(t float64) float64 {
	n := len(p.Keys)
	switch {
	case n == 0:
		return 0
	case t <= p.Keys[0].T:
		return p.Keys[0].Value
	case t >= p.Keys[n-1].T:
		return p.Keys[n-1].Value
	}

	i := sort.Search(n, func(i int) bool { return p.Keys[i].T >= t })
	a, b := p.Keys[i-1], p.Keys[i]
	if b.T == a.T {
		return b.Value
	}
	f := (t - a.T) / (b.T - a.T)
	return a.Value + (b.Value-a.Value)*f
}

// IsZero reports whether the profile is empty or constant zero.
func (p Profile) IsZero() bool {
	for _, k := range p.Keys {
		if k.Value != 0 {
			return false
		}
	}
	return true
}

// EvaluateOr is Evaluate with a fallback for an empty profile.
func (p Profile) EvaluateOr(t, fallback float64) float64 {
	if len(p.Keys) == 0 {
		return fallback
	}
	return p.Evaluate(t)
}
