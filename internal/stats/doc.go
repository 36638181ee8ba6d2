// Package stats implements the statistical toolkit used by the pair analyzer:
// ordinary least squares, a simplified Augmented Dickey-Fuller test, rolling
// z-scores and the half-life of mean reversion.
//
// Every function is pure. Insufficient or degenerate input yields a documented
// neutral value instead of an error or a NaN.
package stats

// epsilon is the threshold under which a variance or denominator counts as zero.
const epsilon = 1e-12
