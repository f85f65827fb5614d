package mmconfig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/azybler/mapmatch/pkg/mm/fmm"
	"github.com/azybler/mapmatch/pkg/mm/stmatch"
	"github.com/azybler/mapmatch/pkg/mmerrors"
)

func TestValidateFMMRejectsNonPositiveK(t *testing.T) {
	err := ValidateFMM(fmm.Config{K: 0, Radius: 1, GPSError: 1, ReverseTolerance: 0.5})
	assert.True(t, errors.Is(err, mmerrors.ErrConfig))
}

func TestValidateFMMRejectsOutOfRangeReverseTolerance(t *testing.T) {
	err := ValidateFMM(fmm.Config{K: 4, Radius: 1, GPSError: 1, ReverseTolerance: 1.5})
	assert.True(t, errors.Is(err, mmerrors.ErrConfig))
}

func TestValidateFMMAcceptsGoodConfig(t *testing.T) {
	err := ValidateFMM(fmm.Config{K: 4, Radius: 1, GPSError: 1, ReverseTolerance: 0.5})
	assert.NoError(t, err)
}

func TestValidateSTMatchRejectsNonPositiveVMax(t *testing.T) {
	err := ValidateSTMatch(stmatch.Config{K: 4, Radius: 1, GPSError: 1, ReverseTolerance: 0, VMax: 0, Factor: 1.5})
	assert.True(t, errors.Is(err, mmerrors.ErrConfig))
}

func TestValidateSTMatchAcceptsGoodConfig(t *testing.T) {
	err := ValidateSTMatch(stmatch.Config{K: 4, Radius: 1, GPSError: 1, ReverseTolerance: 0, VMax: 30, Factor: 1.5})
	assert.NoError(t, err)
}
