package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeExtension(t *testing.T) {
	tests := []struct {
		name        string
		ext         LegExtension
		found       bool
		wantFlyOver Value
		wantSpeed   *int64
	}{
		{"no extension", LegExtension{FlyOver: Int(1), SpeedLimit: Int(250)}, false, Null(), nil},
		{"fly-over true inverts", LegExtension{FlyOver: Int(1)}, true, Int(-1), nil},
		{"fly-over real true inverts", LegExtension{FlyOver: Real(1.0)}, true, Int(-1), nil},
		{"fly-over false passes", LegExtension{FlyOver: Int(0)}, true, Int(0), nil},
		{"fly-over null passes", LegExtension{FlyOver: Null()}, true, Null(), nil},
		{"fly-over other value passes", LegExtension{FlyOver: Int(2)}, true, Int(2), nil},
		{"speed limit int", LegExtension{SpeedLimit: Int(210)}, true, Null(), ptr[int64](210)},
		{"speed limit real truncates", LegExtension{SpeedLimit: Real(230.0)}, true, Null(), ptr[int64](230)},
		{"speed limit unreadable dropped", LegExtension{SpeedLimit: Str("n/a")}, true, Null(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg := Leg{FlyOver: Int(9), SpeedLimit: ptr[int64](999)}
			MergeExtension(&leg, tt.ext, tt.found)

			assert.Equal(t, tt.wantFlyOver, leg.FlyOver)
			if tt.wantSpeed == nil {
				assert.Nil(t, leg.SpeedLimit)
				return
			}
			require.NotNil(t, leg.SpeedLimit)
			assert.Equal(t, *tt.wantSpeed, *leg.SpeedLimit)
		})
	}
}
