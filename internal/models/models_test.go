package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSafeguardingRecord_ExpiryStates(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}
	const window = 30 * 24 * time.Hour

	tests := []struct {
		name     string
		expiry   *time.Time
		expired  bool
		expiring bool
		pending  bool
	}{
		{"no expiry date is pending", nil, false, false, true},
		{"past expiry", at(-time.Hour), true, false, false},
		{"expiry exactly now", at(0), false, false, false},
		{"expiry in ten days", at(10 * 24 * time.Hour), false, true, false},
		{"expiry on window boundary", at(window), false, true, false},
		{"expiry beyond window", at(window + time.Second), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := SafeguardingRecord{ExpiryDate: tt.expiry}
			assert.Equal(t, tt.expired, r.IsExpired(now))
			assert.Equal(t, tt.expiring, r.IsExpiringWithin(now, window))
			assert.Equal(t, tt.pending, r.IsPending())
		})
	}
}

func TestEnums_Valid(t *testing.T) {
	assert.True(t, ActivityEmergencyRelief.Valid())
	assert.False(t, ActivityType("tourism").Valid())

	assert.True(t, TransferInKind.Valid())
	assert.False(t, TransferMethod("crypto").Valid())
	assert.True(t, TransferWire.IsBanked())
	assert.False(t, TransferCash.IsBanked())

	assert.True(t, IncomeInvestments.Valid())
	assert.False(t, IncomeUncategorized.Valid())

	assert.True(t, DonorUnknown.Valid())
	assert.False(t, DonorType("alien").Valid())
}

func TestRecord_Kinds(t *testing.T) {
	records := []Record{SafeguardingRecord{}, OverseasActivity{}, IncomeRecord{}}
	var got []Category
	for _, r := range records {
		got = append(got, r.Kind())
	}
	assert.Equal(t, []Category{CategorySafeguarding, CategoryOverseas, CategoryIncome}, got)
}
