// Package mmconfig validates the matcher parameters shared by the
// fmm and stmatch CLIs before any matching work begins: invalid
// parameters abort the program, not a single trajectory.
package mmconfig

import (
	"fmt"

	"github.com/azybler/mapmatch/pkg/mm/fmm"
	"github.com/azybler/mapmatch/pkg/mm/stmatch"
	"github.com/azybler/mapmatch/pkg/mmerrors"
)

// Common holds the parameters shared by both matching strategies.
type Common struct {
	K                int
	Radius           float64
	GPSError         float64
	ReverseTolerance float64
}

// Validate checks the shared parameters, returning an ErrConfig-wrapped
// error naming the first violation found.
func (c Common) Validate() error {
	if c.K <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", mmerrors.ErrConfig, c.K)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("%w: radius must be positive, got %g", mmerrors.ErrConfig, c.Radius)
	}
	if c.GPSError <= 0 {
		return fmt.Errorf("%w: gps_error must be positive, got %g", mmerrors.ErrConfig, c.GPSError)
	}
	if c.ReverseTolerance < 0 || c.ReverseTolerance > 1 {
		return fmt.Errorf("%w: reverse_tolerance must be in [0,1], got %g", mmerrors.ErrConfig, c.ReverseTolerance)
	}
	return nil
}

// ValidateFMM validates a fully-populated FMM config.
func ValidateFMM(cfg fmm.Config) error {
	return Common{
		K: cfg.K, Radius: cfg.Radius, GPSError: cfg.GPSError, ReverseTolerance: cfg.ReverseTolerance,
	}.Validate()
}

// ValidateSTMatch validates a fully-populated STMATCH config, adding
// the vmax/factor checks fmm has no use for.
func ValidateSTMatch(cfg stmatch.Config) error {
	if err := (Common{
		K: cfg.K, Radius: cfg.Radius, GPSError: cfg.GPSError, ReverseTolerance: cfg.ReverseTolerance,
	}).Validate(); err != nil {
		return err
	}
	if cfg.VMax <= 0 {
		return fmt.Errorf("%w: vmax must be positive, got %g", mmerrors.ErrConfig, cfg.VMax)
	}
	if cfg.Factor <= 0 {
		return fmt.Errorf("%w: factor must be positive, got %g", mmerrors.ErrConfig, cfg.Factor)
	}
	return nil
}
