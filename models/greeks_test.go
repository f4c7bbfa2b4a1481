package models

import (
	"math"
	"testing"
)

func TestAnalyticGreeks_ReferenceCase(t *testing.T) {
	// S=100, K=100, r=0.05, q=0, sigma=0.2, T=1.
	call, err := AnalyticGreeks(true, 100, 100, 1, 0.05, 0, 0.2)
	if err != nil {
		t.Fatalf("call err: %v", err)
	}

	if !almostEqual(call.Delta, 0.636831, 1e-4) {
		t.Fatalf("delta mismatch: got=%v", call.Delta)
	}
	if !almostEqual(call.Gamma, 0.018762, 1e-4) {
		t.Fatalf("gamma mismatch: got=%v", call.Gamma)
	}
	if !almostEqual(call.Vega, 0.375240, 1e-4) {
		t.Fatalf("vega mismatch: got=%v", call.Vega)
	}
	if !almostEqual(call.Theta, -6.414028/365, 1e-4) {
		t.Fatalf("theta mismatch: got=%v", call.Theta)
	}
	if !almostEqual(call.Rho, 0.532325, 1e-4) {
		t.Fatalf("rho mismatch: got=%v", call.Rho)
	}

	put, err := AnalyticGreeks(false, 100, 100, 1, 0.05, 0, 0.2)
	if err != nil {
		t.Fatalf("put err: %v", err)
	}
	if !almostEqual(put.Delta, call.Delta-1, 1e-9) {
		t.Fatalf("put delta should be call delta - 1 with q=0: got=%v", put.Delta)
	}
	if !almostEqual(put.Gamma, call.Gamma, 1e-12) {
		t.Fatalf("gamma differs between call and put: %v vs %v", put.Gamma, call.Gamma)
	}
	if !almostEqual(put.Vega, call.Vega, 1e-12) {
		t.Fatalf("vega differs between call and put: %v vs %v", put.Vega, call.Vega)
	}
	if put.Rho >= 0 {
		t.Fatalf("put rho should be negative: %v", put.Rho)
	}
}

func TestGreeks_ZeroAtExpiration(t *testing.T) {
	g, err := ComputeGreeks(true, true, 100, 100, 0, 0.05, 0, 0.2)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if g != (Greeks{}) {
		t.Fatalf("expected zero Greeks at expiration, got %+v", g)
	}
}

func TestFiniteDifferenceGreeks_AgreesWithAnalytic(t *testing.T) {
	// Bump-and-reprice around the European closed form must land close to
	// the analytic partials; this pins the bump sizes.
	analytic, _ := AnalyticGreeks(true, 100, 105, 0.5, 0.04, 0.01, 0.3)
	fd, err := FiniteDifferenceGreeks(true, false, 100, 105, 0.5, 0.04, 0.01, 0.3)
	if err != nil {
		t.Fatalf("fd err: %v", err)
	}

	if !almostEqual(fd.Delta, analytic.Delta, 1e-3) {
		t.Fatalf("delta: fd=%v analytic=%v", fd.Delta, analytic.Delta)
	}
	if !almostEqual(fd.Gamma, analytic.Gamma, 1e-3) {
		t.Fatalf("gamma: fd=%v analytic=%v", fd.Gamma, analytic.Gamma)
	}
	if !almostEqual(fd.Vega, analytic.Vega, 1e-3) {
		t.Fatalf("vega: fd=%v analytic=%v", fd.Vega, analytic.Vega)
	}
	if !almostEqual(fd.Rho, analytic.Rho, 1e-3) {
		t.Fatalf("rho: fd=%v analytic=%v", fd.Rho, analytic.Rho)
	}
	// FD theta is a one-day decay, the analytic one an instantaneous rate;
	// they agree loosely away from expiration.
	if !almostEqual(fd.Theta, analytic.Theta, 5e-3) {
		t.Fatalf("theta: fd=%v analytic=%v", fd.Theta, analytic.Theta)
	}
}

func TestFiniteDifferenceGreeks_AmericanPutDelta(t *testing.T) {
	g, err := ComputeGreeks(false, true, 100, 100, 0.5, 0.04, 0, 0.3)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if g.Delta >= 0 || g.Delta <= -1 {
		t.Fatalf("put delta out of range: %v", g.Delta)
	}
	if g.Gamma <= 0 {
		t.Fatalf("gamma should be positive: %v", g.Gamma)
	}
	if g.Vega <= 0 {
		t.Fatalf("vega should be positive: %v", g.Vega)
	}
	if math.IsNaN(g.Theta) || math.IsNaN(g.Rho) {
		t.Fatalf("NaN greeks: %+v", g)
	}
}

func TestGreeks_ScaleAndAdd(t *testing.T) {
	g := Greeks{Delta: 0.5, Gamma: 0.01, Theta: -0.02, Vega: 0.3, Rho: 0.1}
	scaled := g.Scale(-200)
	if scaled.Delta != -100 || scaled.Vega != -60 {
		t.Fatalf("scale mismatch: %+v", scaled)
	}
	sum := g.Add(scaled)
	if !almostEqual(sum.Delta, 0.5-100, 1e-12) {
		t.Fatalf("add mismatch: %+v", sum)
	}
}
